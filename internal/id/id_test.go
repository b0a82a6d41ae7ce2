package id

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tokenPattern = regexp.MustCompile(`^[23456789ABCDEFGHJKMNPQRSTUVWXYZabcdefghjkmnpqrstuvwxyz]{20}$`)

func TestNewTask_Format(t *testing.T) {
	id := NewTask()
	assert.True(t, IsTask(id))
	assert.Len(t, id, 36)
}

func TestNewTask_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewTask()
		assert.False(t, seen[id], "collision: %s", id)
		seen[id] = true
	}
}

func TestSample_Stable(t *testing.T) {
	assert.Equal(t, Sample(1), Sample(1))
	assert.NotEqual(t, Sample(1), Sample(2))
	assert.True(t, IsTask(Sample(3)))
}

func TestNewToken_Format(t *testing.T) {
	tok, err := NewToken()
	require.NoError(t, err)
	assert.Regexp(t, tokenPattern, tok)
}

func TestNewToken_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		tok, err := NewToken()
		require.NoError(t, err)
		assert.False(t, seen[tok], "collision: %s", tok)
		seen[tok] = true
	}
}

func TestIsTask_Invalid(t *testing.T) {
	for _, s := range []string{"", "TASK-ABCDE", "placeholder-idea-0", "-1"} {
		assert.False(t, IsTask(s), "expected %q to be rejected", s)
	}
}
