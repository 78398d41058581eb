package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalPair(t *testing.T) {
	low, high := CanonicalPair(7, 3)
	assert.Equal(t, uint(3), low)
	assert.Equal(t, uint(7), high)

	low, high = CanonicalPair(3, 7)
	assert.Equal(t, uint(3), low)
	assert.Equal(t, uint(7), high)
}

func TestFriendshipBeforeCreate(t *testing.T) {
	f := &Friendship{RequesterID: 9, AddresseeID: 4}
	require.NoError(t, f.BeforeCreate(nil))

	assert.NotEmpty(t, f.ID)
	assert.Equal(t, uint(4), f.UserLowID)
	assert.Equal(t, uint(9), f.UserHighID)

	// An already assigned id is preserved.
	id := f.ID
	require.NoError(t, f.BeforeCreate(nil))
	assert.Equal(t, id, f.ID)
}

func TestFriendshipStatusTerminal(t *testing.T) {
	assert.False(t, FriendshipStatusPending.Terminal())
	assert.True(t, FriendshipStatusAccepted.Terminal())
	assert.True(t, FriendshipStatusRejected.Terminal())
}
