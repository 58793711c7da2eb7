package wire

import "time"

// Friend statuses as stored by the server. Status plus the First flag map to
// the client-side Relation: "accepted" is an established friendship (RoomID
// names the backing private room), "adding" is a pending request: outgoing
// when First is set, incoming otherwise.
const (
	StatusAdding   = "adding"
	StatusAccepted = "accepted"
	StatusDeleted  = "deleted"
)

// FriendInfo is one entry of the user's friend list.
type FriendInfo struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Nickname string    `json:"nickname"`
	Avatar   string    `json:"avatar"`
	Bio      string    `json:"bio"`
	Status   string    `json:"status"`
	RoomID   int64     `json:"room_id"`
	First    bool      `json:"first"`
	CreateAt time.Time `json:"create_at"`
}

type UserFriendsResponse struct {
	Friends []FriendInfo `json:"friends"`
}

type AddFriendRequest struct {
	FriendID int64 `json:"friend_id" validate:"min=1"`
}

type AddFriendResponse struct {
	Friend FriendInfo `json:"friend"`
}

type AcceptFriendRequest struct {
	FriendID int64 `json:"friend_id" validate:"min=1"`
}

type AcceptFriendResponse struct {
	Friend FriendInfo `json:"friend"`
}

type RefuseFriendRequest struct {
	FriendID int64 `json:"friend_id" validate:"min=1"`
}

type RefuseFriendResponse struct {
	FriendID int64 `json:"friend_id"`
}

type DeleteFriendRequest struct {
	FriendID int64 `json:"friend_id" validate:"min=1"`
}

type DeleteFriendResponse struct {
	FriendID int64 `json:"friend_id"`
}
