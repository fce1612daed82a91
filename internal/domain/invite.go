package domain

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/google/uuid"
)

const (
	// TokenLength is the minimum accepted token length. Generated tokens
	// are 43 characters (32 random bytes, base64url without padding).
	TokenLength = 32

	tokenRandomBytes = 32

	DefaultInviteTTL = 24 * time.Hour
)

// Invite is a single-use, expiring credential admitting one participant
// into a session.
type Invite struct {
	ID           uuid.UUID
	Token        string
	SessionID    uuid.UUID
	InviteeEmail string
	InviteeName  string
	Consumed     bool
	ConsumedBy   string
	CreatedAt    time.Time
	ExpiresAt    time.Time
	ConsumedAt   time.Time
}

func NewInvite(sessionID uuid.UUID, inviteeEmail, inviteeName string, ttl time.Duration) *Invite {
	if ttl <= 0 {
		ttl = DefaultInviteTTL
	}
	now := time.Now().UTC()
	return &Invite{
		ID:           uuid.New(),
		Token:        generateToken(),
		SessionID:    sessionID,
		InviteeEmail: inviteeEmail,
		InviteeName:  inviteeName,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}
}

func (i *Invite) IsExpired() bool {
	return time.Now().UTC().After(i.ExpiresAt)
}

// IsValid reports whether the invite can still be consumed.
func (i *Invite) IsValid() bool {
	return !i.Consumed && !i.IsExpired()
}

// ValidTokenFormat checks length and charset without touching the store.
func ValidTokenFormat(token string) bool {
	if len(token) < TokenLength {
		return false
	}
	for _, c := range token {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}

func generateToken() string {
	buf := make([]byte, tokenRandomBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic("invite token generation: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
