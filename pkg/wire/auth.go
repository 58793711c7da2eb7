package wire

// RegisterRequest creates an account. Registration is invitation-gated; the
// code is checked server-side.
type RegisterRequest struct {
	Username string `json:"username" validate:"min=2,max=50"`
	Password string `json:"password" validate:"min=6,max=50"`
	Code     string `json:"code" validate:"min=1,max=50"`
}

type RegisterResponse struct {
	User UserInfo `json:"user"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"min=2,max=50"`
	Password string `json:"password" validate:"min=6,max=50"`
}

type LoginResponse struct {
	User        UserInfo `json:"user"`
	AccessToken string   `json:"access_token"`
}

// RenewTokenResponse is the answer to the renew-token endpoint. The refresh
// credential itself travels in an HTTP-only cookie, so the request has no
// body.
type RenewTokenResponse struct {
	AccessToken string `json:"access_token"`
}

type LogoutResponse struct {
	Message string `json:"message"`
}
