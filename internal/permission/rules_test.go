package permission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avviso/internal/profile"
	"avviso/pkg/domain"
)

func TestCheckEligibility(t *testing.T) {
	t.Run("nil profile", func(t *testing.T) {
		reason, ok := CheckEligibility(nil)
		assert.False(t, ok)
		assert.Equal(t, ReasonProfileNotFound, reason)
	})

	t.Run("inbox disabled", func(t *testing.T) {
		reason, ok := CheckEligibility(&profile.Profile{IsInboxEnabled: false})
		assert.False(t, ok)
		assert.Equal(t, ReasonMasterInboxDisabled, reason)
	})

	t.Run("eligible", func(t *testing.T) {
		_, ok := CheckEligibility(&profile.Profile{IsInboxEnabled: true})
		assert.True(t, ok)
	})
}

func TestLegacyBlockedChannels(t *testing.T) {
	p := &profile.Profile{
		BlockedInboxOrChannels: map[domain.ServiceID][]domain.Channel{
			"svc-a": {domain.ChannelEmail, domain.ChannelInbox},
		},
	}

	t.Run("listed sender", func(t *testing.T) {
		got := LegacyBlockedChannels(p, "svc-a")
		assert.Equal(t, []domain.Channel{domain.ChannelEmail, domain.ChannelInbox}, got)
	})

	t.Run("unlisted sender", func(t *testing.T) {
		assert.Nil(t, LegacyBlockedChannels(p, "svc-b"))
	})

	t.Run("nil block list", func(t *testing.T) {
		assert.Nil(t, LegacyBlockedChannels(&profile.Profile{}, "svc-a"))
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		got := LegacyBlockedChannels(p, "svc-a")
		got[0] = domain.ChannelWebhook
		assert.Equal(t, domain.ChannelEmail, p.BlockedInboxOrChannels["svc-a"][0])
	})
}

func TestApplyEmailOptOut(t *testing.T) {
	cutover := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mk := func(updatedAt time.Time) *profile.Profile {
		return &profile.Profile{
			IsInboxEnabled: true,
			IsEmailEnabled: true,
			UpdatedAt:      updatedAt.Unix(),
		}
	}

	t.Run("migration inactive returns the profile unchanged", func(t *testing.T) {
		p := mk(cutover.Add(-time.Hour))
		got := ApplyEmailOptOut(p, cutover, false)
		assert.Same(t, p, got)
	})

	t.Run("profile saved at or after cutover is untouched", func(t *testing.T) {
		p := mk(cutover)
		got := ApplyEmailOptOut(p, cutover, true)
		assert.Same(t, p, got)
		assert.True(t, got.IsEmailEnabled)
	})

	t.Run("stale profile gets a copy with email off", func(t *testing.T) {
		p := mk(cutover.Add(-time.Hour))
		got := ApplyEmailOptOut(p, cutover, true)
		require.NotSame(t, p, got)
		assert.False(t, got.IsEmailEnabled)
		assert.True(t, p.IsEmailEnabled, "input must not be mutated")
	})
}
