package domain

// PreferencesMode selects how per-service preferences are resolved for a
// profile. The set is closed: LEGACY profiles predate explicit preferences
// and rely on the static block list; MANUAL and AUTO consult preference
// records and differ only in the default applied when no record exists.
type PreferencesMode string

const (
	ModeLegacy PreferencesMode = "LEGACY"
	ModeManual PreferencesMode = "MANUAL"
	ModeAuto   PreferencesMode = "AUTO"
)

var validPreferencesModes = map[PreferencesMode]bool{
	ModeLegacy: true,
	ModeManual: true,
	ModeAuto:   true,
}

// IsValid checks if the mode is one of the supported enum values.
func (m PreferencesMode) IsValid() bool {
	return validPreferencesModes[m]
}

func (m PreferencesMode) String() string {
	return string(m)
}

// PreferencesSettings is the preference scheme stored on a profile.
// Version is meaningful only when Mode is MANUAL or AUTO; under LEGACY the
// profile's block list is authoritative and Version is ignored.
type PreferencesSettings struct {
	Mode    PreferencesMode `json:"mode"`
	Version int             `json:"version"`
}
