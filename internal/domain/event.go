package domain

// Room-scoped broadcast event types delivered by the gateway. Events never
// cross room boundaries.
const (
	EventParticipantJoined = "participant-joined"
	EventParticipantLeft   = "participant-left"
	EventMessageReceived   = "message-received"
)

type RoomEvent struct {
	Type     string         `json:"type"`
	RoomID   string         `json:"room_id"`
	SenderID string         `json:"sender_id,omitempty"`
	Payload  map[string]any `json:"payload,omitempty"`
}
