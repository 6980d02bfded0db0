package permission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"avviso/internal/activation"
	"avviso/internal/permission/metrics"
	"avviso/internal/preference"
	"avviso/internal/profile"
	"avviso/pkg/domain"
	"avviso/pkg/platform/sentinel"
)

// Engine decides, per incoming message, whether the message may be stored in
// the recipient's inbox and which channels are blocked for it. The goal is to
// keep the rules centralized and testable; everything around it is plumbing.
//
// Lookups are issued strictly as the mode state machine requires: LEGACY
// profiles never touch the preference or activation stores, and the
// activation store is only consulted for special senders under MANUAL/AUTO.
type Engine struct {
	profiles    profile.Store
	preferences preference.Store
	activations activation.Store

	// optOutCutover/optInMigrationActive drive the email opt-out override.
	optOutCutover        time.Time
	optInMigrationActive bool

	metrics *metrics.Metrics
}

func NewEngine(
	profiles profile.Store,
	preferences preference.Store,
	activations activation.Store,
	optOutCutover time.Time,
	optInMigrationActive bool,
	m *metrics.Metrics,
) *Engine {
	return &Engine{
		profiles:             profiles,
		preferences:          preferences,
		activations:          activations,
		optOutCutover:        optOutCutover,
		optInMigrationActive: optInMigrationActive,
		metrics:              m,
	}
}

// Evaluate runs the full permission decision for one message.
//
// A denied delivery is a Decision, not an error. An error return means a
// store could not answer; the caller must treat the whole evaluation as
// retryable and must not confuse it with a deny.
func (e *Engine) Evaluate(ctx context.Context, in Input) (*Decision, error) {
	start := time.Now()
	defer func() { e.metrics.ObserveEvaluateLatency(time.Since(start)) }()

	prof, err := e.findProfile(ctx, in.FiscalCode)
	if err != nil {
		return nil, err
	}

	if reason, ok := CheckEligibility(prof); !ok {
		e.metrics.IncrementOutcome(reason.String(), modeLabel(prof))
		return &Decision{Admitted: false, Reason: reason}, nil
	}

	// The legacy block list is read before branching on mode: it is the
	// admission source under LEGACY and costs nothing under MANUAL/AUTO.
	legacyBlocked := LegacyBlockedChannels(prof, in.ServiceID)

	mode := prof.PreferencesSettings.Mode

	var (
		admitted bool
		blocked  []domain.Channel
	)
	if mode == domain.ModeLegacy {
		admitted = !domain.ContainsChannel(legacyBlocked, domain.ChannelInbox)
		blocked = legacyBlocked
	} else {
		admitted, blocked, err = e.resolvePreference(ctx, prof, in)
		if err != nil {
			return nil, err
		}
	}

	if !admitted {
		e.metrics.IncrementOutcome(ReasonSenderBlocked.String(), mode.String())
		return &Decision{Admitted: false, Reason: ReasonSenderBlocked}, nil
	}

	domain.SortChannels(blocked)
	e.metrics.IncrementOutcome("admitted", mode.String())

	return &Decision{
		Admitted:        true,
		BlockedChannels: blocked,
		Profile:         ApplyEmailOptOut(prof, e.optOutCutover, e.optInMigrationActive),
	}, nil
}

// findProfile maps "no profile" to a nil profile; any other failure is
// transient and propagates.
func (e *Engine) findProfile(ctx context.Context, fiscalCode domain.FiscalCode) (*profile.Profile, error) {
	start := time.Now()
	prof, err := e.profiles.FindLast(ctx, fiscalCode)
	e.metrics.ObserveLookupLatency("profile", time.Since(start))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	return prof, nil
}

// resolvePreference implements the MANUAL/AUTO arm of the state machine:
// the per-service preference decides admission (defaulting by mode when no
// record exists) and EMAIL blocking, then the activation gate is applied for
// special senders.
func (e *Engine) resolvePreference(ctx context.Context, prof *profile.Profile, in Input) (bool, []domain.Channel, error) {
	mode := prof.PreferencesSettings.Mode

	start := time.Now()
	pref, err := e.preferences.Find(ctx, in.FiscalCode, in.ServiceID, prof.PreferencesSettings.Version)
	e.metrics.ObserveLookupLatency("preference", time.Since(start))

	var (
		admitted bool
		blocked  []domain.Channel
	)
	switch {
	case err == nil:
		admitted = pref.IsInboxEnabled
		if !pref.IsEmailEnabled {
			blocked = []domain.Channel{domain.ChannelEmail}
		}
	case errors.Is(err, sentinel.ErrNotFound):
		// No explicit choice: AUTO defaults to opt-in, MANUAL to opt-out.
		// Email gating then follows the global profile flag alone.
		admitted = mode == domain.ModeAuto
	default:
		return false, nil, fmt.Errorf("fetch preference: %w", err)
	}

	if in.Special {
		active, err := e.activationActive(ctx, in)
		if err != nil {
			return false, nil, err
		}
		admitted = admitted && active
	}

	return admitted, blocked, nil
}

// activationActive reports whether the citizen holds an ACTIVE activation
// for the special sender. Absence, PENDING, and INACTIVE all deny; only a
// lookup fault is an error.
func (e *Engine) activationActive(ctx context.Context, in Input) (bool, error) {
	start := time.Now()
	act, err := e.activations.FindLast(ctx, in.FiscalCode, in.ServiceID)
	e.metrics.ObserveLookupLatency("activation", time.Since(start))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("fetch activation: %w", err)
	}
	return act.Status == domain.ActivationActive, nil
}

func modeLabel(prof *profile.Profile) string {
	if prof == nil {
		return "unknown"
	}
	return prof.PreferencesSettings.Mode.String()
}
