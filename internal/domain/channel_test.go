package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelIDOrderIndependent(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	ab := ChannelID(a, b)
	ba := ChannelID(b, a)
	assert.Equal(t, ab, ba, "channel id must not depend on argument order")

	// Deterministic: recomputing yields the same id.
	assert.Equal(t, ab, ChannelID(a, b))

	parts := strings.Split(ab, "_")
	require.Len(t, parts, 2)
	assert.Less(t, parts[0], parts[1], "halves must be sorted")
}

func TestChannelMembersRoundTrip(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	x, y, err := ChannelMembers(ChannelID(a, b))
	require.NoError(t, err)

	got := map[UserID]bool{x: true, y: true}
	assert.True(t, got[a])
	assert.True(t, got[b])
}

func TestChannelMembersRejectsMalformed(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	lo, hi := a.String(), b.String()
	if lo > hi {
		lo, hi = hi, lo
	}

	cases := []struct {
		name string
		id   string
	}{
		{"empty", ""},
		{"one half", lo},
		{"not uuids", "alice_bob"},
		{"unsorted halves", hi + "_" + lo},
		{"same half twice", lo + "_" + lo},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ChannelMembers(tc.id)
			assert.ErrorIs(t, err, ErrInvalidChannel)
		})
	}
}

func TestIsChannelMember(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()
	id := ChannelID(a, b)

	assert.True(t, IsChannelMember(id, a))
	assert.True(t, IsChannelMember(id, b))
	assert.False(t, IsChannelMember(id, c))
	assert.False(t, IsChannelMember("garbage", a))
}

func TestSetNameKeepsSearchKeyInSync(t *testing.T) {
	u := &User{}
	u.SetName("Bob")
	assert.Equal(t, "bob", u.NameLower)

	u.SetName("RoBeRt")
	assert.Equal(t, "robert", u.NameLower)
}
