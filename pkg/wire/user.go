package wire

import "time"

// UserInfo is the authenticated user's profile as returned by the auth
// endpoints.
type UserInfo struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Nickname string    `json:"nickname"`
	Avatar   string    `json:"avatar"`
	Bio      string    `json:"bio"`
	Role     string    `json:"role"`
	Deleted  bool      `json:"deleted"`
	CreateAt time.Time `json:"create_at"`
}

// GetUserByNameRequest looks a user up by exact username, e.g. when sending
// a friend invitation.
type GetUserByNameRequest struct {
	Username string `json:"username" validate:"min=2,max=50"`
}

// GetUserByNameResponse carries the matching user, if any.
type GetUserByNameResponse struct {
	User *UserInfo `json:"user"`
}
