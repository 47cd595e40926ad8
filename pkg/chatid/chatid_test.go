package chatid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThreadIDOrderIndependent(t *testing.T) {
	assert.Equal(t, ThreadID("u1", "u2"), ThreadID("u2", "u1"))
	assert.Equal(t, "u1_u2", ThreadID("u2", "u1"))
}

func TestThreadIDSelfChat(t *testing.T) {
	self := ThreadID("u1", "u1")
	assert.Equal(t, "u1_u1", self)
	assert.NotEqual(t, self, ThreadID("u1", "u2"))
	assert.NotEqual(t, self, ThreadID("u1", "u0"))
}

func TestThreadIDDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		assert.Equal(t, "a_b", ThreadID("b", "a"))
	}
}

func TestParticipants(t *testing.T) {
	assert.Equal(t, []string{"u1", "u2"}, Participants("u2", "u1"))
	assert.Equal(t, []string{"u1", "u1"}, Participants("u1", "u1"))
}

func TestSplit(t *testing.T) {
	parts, ok := Split(ThreadID("u2", "u1"))
	assert.True(t, ok)
	assert.Equal(t, []string{"u1", "u2"}, parts)

	parts, ok = Split("u1_u1")
	assert.True(t, ok)
	assert.Equal(t, []string{"u1", "u1"}, parts)

	for _, bad := range []string{"", "u1", "_u2", "u1_", "u2_u1", "a_b_c"} {
		_, ok := Split(bad)
		assert.False(t, ok, "expected %q to be rejected", bad)
	}
}
