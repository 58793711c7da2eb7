package api

import "errors"

// ToastError carries a server-provided message meant for the user. 400
// responses produce it.
type ToastError struct {
	Message string
}

func (e *ToastError) Error() string { return e.Message }

// ErrTokenExpired is returned when the server still answers 402 after a
// successful token renewal.
var ErrTokenExpired = errors.New("api: access token expired")
