package wire

import "time"

// Room categories. A room is exactly one of these; the category decides how
// the UI projects it and who may administer it.
const (
	CategoryPublic   = "public"   // named group chat
	CategoryPrivate  = "private"  // 1:1 room backing an accepted friendship
	CategoryPersonal = "personal" // self-notes
)

// RoomInfo is the full server-side snapshot of one room.
type RoomInfo struct {
	ID       int64         `json:"id"`
	Name     string        `json:"name"`
	Cover    string        `json:"cover"`
	Category string        `json:"category"`
	CreateAt time.Time     `json:"create_at"`
	Members  []MemberInfo  `json:"members"`
	Messages []MessageInfo `json:"messages"`
}

// UserRoomsResponse carries a wholesale room snapshot.
type UserRoomsResponse struct {
	Rooms []RoomInfo `json:"rooms"`
}

// NewRoomRequest creates a public room. The member list must already include
// the creator.
type NewRoomRequest struct {
	Name      string  `json:"name" validate:"min=2,max=50"`
	MemberIDs []int64 `json:"member_ids" validate:"min=3,ids"`
}

// NewRoomResponse announces a room the user just joined or created.
type NewRoomResponse struct {
	Room RoomInfo `json:"room"`
}

type DeleteRoomRequest struct {
	RoomID int64 `json:"room_id" validate:"min=1"`
}

type DeleteRoomResponse struct {
	RoomID int64 `json:"room_id"`
}

type LeaveRoomRequest struct {
	RoomID int64 `json:"room_id" validate:"min=1"`
}

type LeaveRoomResponse struct {
	RoomID int64 `json:"room_id"`
}

type NewRoomNameRequest struct {
	RoomID int64  `json:"room_id" validate:"min=1"`
	Name   string `json:"name" validate:"min=2,max=50"`
}

type NewRoomNameResponse struct {
	RoomID int64  `json:"room_id"`
	Name   string `json:"name"`
}
