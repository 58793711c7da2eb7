package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/parley-chat/parley/pkg/session"
	"github.com/parley-chat/parley/pkg/toast"
	"github.com/parley-chat/parley/pkg/wire"
)

func newServer(t *testing.T, mount func(r chi.Router)) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	mount(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestLoginInstallsSession(t *testing.T) {
	srv := newServer(t, func(r chi.Router) {
		r.Post("/api/auth/login", func(w http.ResponseWriter, req *http.Request) {
			var body wire.LoginRequest
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				t.Errorf("decode login body: %v", err)
			}
			if body.Username != "grace" || body.Password != "hunter22" {
				t.Errorf("credentials = %q/%q", body.Username, body.Password)
			}
			writeJSON(t, w, wire.LoginResponse{
				User:        wire.UserInfo{ID: 7, Username: "grace"},
				AccessToken: "tok-1",
			})
		})
	})

	sess := session.New()
	c := New(srv.URL, sess)

	resp, err := c.Login(context.Background(), wire.LoginRequest{Username: "grace", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.User.ID != 7 {
		t.Fatalf("user id = %d, want 7", resp.User.ID)
	}
	if !sess.Active() || sess.Token() != "tok-1" {
		t.Fatalf("session not installed: active=%v token=%q", sess.Active(), sess.Token())
	}
}

func TestBadRequestSurfacesAsToast(t *testing.T) {
	srv := newServer(t, func(r chi.Router) {
		r.Post("/api/auth/register", func(w http.ResponseWriter, req *http.Request) {
			http.Error(w, "username already taken", http.StatusBadRequest)
		})
	})

	toasts := toast.NewCenter()
	c := New(srv.URL, session.New(), WithToasts(toasts))

	_, err := c.Register(context.Background(), wire.RegisterRequest{
		Username: "grace", Password: "hunter22", Code: "invite",
	})

	var te *ToastError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *ToastError", err)
	}
	current, visible := toasts.Current()
	if !visible || current.Level != toast.LevelError {
		t.Fatalf("toast = %+v visible=%v, want visible error", current, visible)
	}
}

func TestGetUserByNameEncodesQuery(t *testing.T) {
	var gotQuery, gotAuth atomic.Value
	srv := newServer(t, func(r chi.Router) {
		r.Get("/api/user/username", func(w http.ResponseWriter, req *http.Request) {
			gotQuery.Store(req.URL.RawQuery)
			gotAuth.Store(req.Header.Get("Authorization"))
			writeJSON(t, w, wire.GetUserByNameResponse{
				User: &wire.UserInfo{ID: 9, Username: req.URL.Query().Get("username")},
			})
		})
	})

	sess := session.New()
	sess.Set(wire.UserInfo{ID: 1}, "tok-1")
	c := New(srv.URL, sess)

	resp, err := c.GetUserByName(context.Background(), "bob")
	if err != nil {
		t.Fatalf("GetUserByName: %v", err)
	}
	if resp.User == nil || resp.User.Username != "bob" {
		t.Fatalf("user = %+v, want bob", resp.User)
	}
	if got := gotQuery.Load(); got != "username=bob" {
		t.Fatalf("query = %q, want username=bob", got)
	}
	if got := gotAuth.Load(); got != "Bearer tok-1" {
		t.Fatalf("authorization = %q, want Bearer tok-1", got)
	}
}

func TestGetUserByNameValidates(t *testing.T) {
	c := New("http://unused", session.New())
	if _, err := c.GetUserByName(context.Background(), "x"); err == nil {
		t.Fatal("one-character username must fail validation")
	}
}

func TestExpiredTokenRenewsAndRetries(t *testing.T) {
	var renews, lookups atomic.Int32
	srv := newServer(t, func(r chi.Router) {
		r.Post("/api/auth/renew-token", func(w http.ResponseWriter, req *http.Request) {
			renews.Add(1)
			writeJSON(t, w, wire.RenewTokenResponse{AccessToken: "tok-2"})
		})
		r.Get("/api/user/username", func(w http.ResponseWriter, req *http.Request) {
			lookups.Add(1)
			if req.Header.Get("Authorization") != "Bearer tok-2" {
				http.Error(w, "token expired", http.StatusPaymentRequired)
				return
			}
			writeJSON(t, w, wire.GetUserByNameResponse{User: &wire.UserInfo{ID: 9, Username: "bob"}})
		})
	})

	sess := session.New()
	sess.Set(wire.UserInfo{ID: 1}, "tok-1")
	c := New(srv.URL, sess)

	resp, err := c.GetUserByName(context.Background(), "bob")
	if err != nil {
		t.Fatalf("GetUserByName: %v", err)
	}
	if resp.User == nil || resp.User.ID != 9 {
		t.Fatalf("user = %+v, want id 9", resp.User)
	}
	if renews.Load() != 1 || lookups.Load() != 2 {
		t.Fatalf("renews=%d lookups=%d, want 1 and 2", renews.Load(), lookups.Load())
	}
	if sess.Token() != "tok-2" {
		t.Fatalf("session token = %q, want tok-2", sess.Token())
	}
}

func TestRenewalFailureClearsSession(t *testing.T) {
	srv := newServer(t, func(r chi.Router) {
		r.Post("/api/auth/renew-token", func(w http.ResponseWriter, req *http.Request) {
			http.Error(w, "refresh expired", http.StatusUnauthorized)
		})
		r.Get("/api/user/username", func(w http.ResponseWriter, req *http.Request) {
			http.Error(w, "token expired", http.StatusPaymentRequired)
		})
	})

	sess := session.New()
	sess.Set(wire.UserInfo{ID: 1}, "tok-1")
	c := New(srv.URL, sess)

	if _, err := c.GetUserByName(context.Background(), "bob"); err == nil {
		t.Fatal("expected error when renewal fails")
	}
	if sess.Active() {
		t.Fatal("session must be cleared when renewal fails")
	}
}

func TestRetryStopsAfterSecond402(t *testing.T) {
	var lookups atomic.Int32
	srv := newServer(t, func(r chi.Router) {
		r.Post("/api/auth/renew-token", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(t, w, wire.RenewTokenResponse{AccessToken: "tok-2"})
		})
		r.Get("/api/user/username", func(w http.ResponseWriter, req *http.Request) {
			lookups.Add(1)
			http.Error(w, "token expired", http.StatusPaymentRequired)
		})
	})

	sess := session.New()
	sess.Set(wire.UserInfo{ID: 1}, "tok-1")
	c := New(srv.URL, sess)

	_, err := c.GetUserByName(context.Background(), "bob")
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
	if got := lookups.Load(); got != 2 {
		t.Fatalf("lookups = %d, want exactly 2", got)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	srv := newServer(t, func(r chi.Router) {
		r.Post("/api/auth/logout", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(t, w, wire.LogoutResponse{Message: "bye"})
		})
	})

	sess := session.New()
	sess.Set(wire.UserInfo{ID: 1}, "tok-1")
	c := New(srv.URL, sess)

	resp, err := c.Logout(context.Background())
	if err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if resp.Message != "bye" {
		t.Fatalf("message = %q", resp.Message)
	}
	if sess.Active() {
		t.Fatal("session still active after logout")
	}
}

func TestEncodeQuery(t *testing.T) {
	for _, tt := range []struct {
		name    string
		payload any
		want    string
		wantErr bool
	}{
		{"strings", wire.GetUserByNameRequest{Username: "bob"}, "username=bob", false},
		{"numbers", struct {
			ID int64 `json:"id"`
		}{42}, "id=42", false},
		{"bools", struct {
			First bool `json:"first"`
		}{true}, "first=true", false},
		{"nested_rejected", struct {
			Inner struct{ X int } `json:"inner"`
		}{}, "", true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := encodeQuery(tt.payload)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("encodeQuery: %v", err)
			}
			if got != tt.want {
				t.Fatalf("query = %q, want %q", got, tt.want)
			}
		})
	}
}
