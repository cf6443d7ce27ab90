package domain

import "strings"

const channelSeparator = "_"

// ChannelID derives the message-log address for an unordered pair of
// identities: the two identity strings sorted lexicographically and joined
// with "_". Both participants compute the same id independently, with no
// allocation or lookup step, and the id is stable across repeated chat
// initiations.
func ChannelID(a, b UserID) string {
	x, y := a.String(), b.String()
	if x > y {
		x, y = y, x
	}
	return x + channelSeparator + y
}

// ChannelMembers parses a channel id back into its two participants.
// It rejects ids that are not two distinct, sorted identity strings.
func ChannelMembers(channelID string) (UserID, UserID, error) {
	parts := strings.Split(channelID, channelSeparator)
	if len(parts) != 2 {
		return UserID{}, UserID{}, ErrInvalidChannel
	}
	a, err := parseUserID(parts[0])
	if err != nil {
		return UserID{}, UserID{}, ErrInvalidChannel
	}
	b, err := parseUserID(parts[1])
	if err != nil {
		return UserID{}, UserID{}, ErrInvalidChannel
	}
	if parts[0] >= parts[1] {
		return UserID{}, UserID{}, ErrInvalidChannel
	}
	return a, b, nil
}

// IsChannelMember reports whether id is one of the two channel participants.
func IsChannelMember(channelID string, id UserID) bool {
	a, b, err := ChannelMembers(channelID)
	if err != nil {
		return false
	}
	return id == a || id == b
}
