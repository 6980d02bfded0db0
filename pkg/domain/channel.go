package domain

import "sort"

// Channel is a delivery route a user can block per sender service.
// Invariant: the value must be one of the supported channels.
type Channel string

// Supported channels. INBOX governs message admission, the others govern
// outbound notifications only.
const (
	ChannelInbox   Channel = "INBOX"
	ChannelEmail   Channel = "EMAIL"
	ChannelWebhook Channel = "WEBHOOK"
)

// channelRank fixes the serialization order of blocked-channel sets.
var channelRank = map[Channel]int{
	ChannelInbox:   0,
	ChannelEmail:   1,
	ChannelWebhook: 2,
}

// IsValid checks if the channel is one of the supported enum values.
func (c Channel) IsValid() bool {
	_, ok := channelRank[c]
	return ok
}

func (c Channel) String() string {
	return string(c)
}

// SortChannels orders a blocked-channel slice deterministically (INBOX,
// EMAIL, WEBHOOK) so results serialize identically across evaluations.
func SortChannels(channels []Channel) {
	sort.Slice(channels, func(i, j int) bool {
		return channelRank[channels[i]] < channelRank[channels[j]]
	})
}

// ContainsChannel reports whether ch appears in channels.
func ContainsChannel(channels []Channel, ch Channel) bool {
	for _, c := range channels {
		if c == ch {
			return true
		}
	}
	return false
}
