package wire

import "time"

// Member ranks, highest first.
const (
	RankOwner   = "owner"
	RankManager = "manager"
	RankMember  = "member"
)

// MemberInfo is one user's membership in one room. Memberships are scoped to
// the room; the same user appears independently in every room they belong to.
type MemberInfo struct {
	ID     int64     `json:"id"`
	Name   string    `json:"name"`
	Avatar string    `json:"avatar"`
	Rank   string    `json:"rank"`
	JoinAt time.Time `json:"join_at"`
}

type AddMembersRequest struct {
	RoomID    int64   `json:"room_id" validate:"min=1"`
	MemberIDs []int64 `json:"member_ids" validate:"min=1,ids"`
}

type AddMembersResponse struct {
	RoomID  int64        `json:"room_id"`
	Members []MemberInfo `json:"members"`
}

type DeleteMembersRequest struct {
	RoomID    int64   `json:"room_id" validate:"min=1"`
	MemberIDs []int64 `json:"member_ids" validate:"min=1,ids"`
}

type DeleteMembersResponse struct {
	RoomID    int64   `json:"room_id"`
	MemberIDs []int64 `json:"member_ids"`
}
