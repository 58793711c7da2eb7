package wire

import "time"

// Message kinds.
const (
	KindText = "text"
	KindImg  = "img"
)

// MessageInfo is one message as delivered by the server. Sender name and
// avatar are snapshots taken at send time; they are not live-updated when
// the sender's profile changes.
type MessageInfo struct {
	ID      int64     `json:"id"`
	SID     int64     `json:"sid"` // sender user id
	Name    string    `json:"name"`
	Avatar  string    `json:"avatar"`
	Content string    `json:"content"`
	Kind    string    `json:"kind"`
	SendAt  time.Time `json:"send_at"`
}

// InitialResponse is the answer to Initialization: the complete room and
// friend snapshot for the session.
type InitialResponse struct {
	Rooms   []RoomInfo   `json:"rooms"`
	Friends []FriendInfo `json:"friends"`
}

type NewMessageRequest struct {
	RoomID  int64  `json:"room_id" validate:"min=1"`
	Content string `json:"content" validate:"min=1,max=500"`
	Kind    string `json:"kind" validate:"oneof=text img"`
}

// NewMessageResponse delivers a single message to its room.
type NewMessageResponse struct {
	RoomID  int64       `json:"room_id"`
	Message MessageInfo `json:"message"`
}
