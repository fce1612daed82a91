package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInviteGeneratesURLSafeToken(t *testing.T) {
	invite := NewInvite(uuid.New(), "guest@example.com", "Guest", time.Hour)

	assert.Len(t, invite.Token, 43)
	assert.True(t, ValidTokenFormat(invite.Token))
}

func TestNewInviteTokensAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		invite := NewInvite(uuid.New(), "", "", time.Hour)
		require.False(t, seen[invite.Token])
		seen[invite.Token] = true
	}
}

func TestNewInviteDefaultTTL(t *testing.T) {
	invite := NewInvite(uuid.New(), "", "", 0)

	expected := time.Now().UTC().Add(DefaultInviteTTL)
	assert.WithinDuration(t, expected, invite.ExpiresAt, time.Minute)
}

func TestValidTokenFormat(t *testing.T) {
	valid := NewInvite(uuid.New(), "", "", time.Hour).Token

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"generated token", valid, true},
		{"empty", "", false},
		{"too short", "abc123", false},
		{"exactly minimum length", "abcdefghijklmnopqrstuvwxyz-_01234", true},
		{"contains plus", "abcdefghijklmnopqrstuvwxyz+1234567890", false},
		{"contains slash", "abcdefghijklmnopqrstuvwxyz/1234567890", false},
		{"contains space", "abcdefghijklmnopqrstuvwxyz 1234567890", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidTokenFormat(tt.token))
		})
	}
}

func TestInviteIsValid(t *testing.T) {
	invite := NewInvite(uuid.New(), "", "", time.Hour)
	assert.True(t, invite.IsValid())

	invite.Consumed = true
	assert.False(t, invite.IsValid())

	invite.Consumed = false
	invite.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	assert.True(t, invite.IsExpired())
	assert.False(t, invite.IsValid())
}
