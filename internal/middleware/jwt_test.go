package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/utils"
)

const testSecret = "test-secret"

type mockSessions struct {
	UserIDByTokenFn func(ctx context.Context, token string) (uint64, error)
}

func (m *mockSessions) UserIDByToken(ctx context.Context, token string) (uint64, error) {
	return m.UserIDByTokenFn(ctx, token)
}

func sessionsFor(tokens map[string]uint64) *mockSessions {
	return &mockSessions{UserIDByTokenFn: func(_ context.Context, token string) (uint64, error) {
		if uid, ok := tokens[token]; ok {
			return uid, nil
		}
		return 0, errors.New("not found")
	}}
}

func TestJWTAuth(t *testing.T) {
	good, err := utils.NewAccessToken(testSecret, 7, 5)
	if err != nil {
		t.Fatal(err)
	}
	orphan, _ := utils.NewAccessToken(testSecret, 7, 5)
	stolen, _ := utils.NewAccessToken(testSecret, 8, 5)
	forged, _ := utils.NewAccessToken("other-secret", 7, 5)

	sessions := sessionsFor(map[string]uint64{
		good.Token:   7,
		stolen.Token: 9,
		forged.Token: 7,
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"wrong signature", "Bearer " + forged.Token, http.StatusUnauthorized},
		{"no session", "Bearer " + orphan.Token, http.StatusUnauthorized},
		{"session of another user", "Bearer " + stolen.Token, http.StatusUnauthorized},
		{"valid", "Bearer " + good.Token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/booking", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var got any
			h := JWTAuth(testSecret, sessions)(func(c echo.Context) error {
				got = c.Get("user_id")
				return c.NoContent(http.StatusOK)
			})
			if err := h(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d (%s)", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantStatus == http.StatusOK {
				if uid, ok := got.(uint64); !ok || uid != 7 {
					t.Fatalf("expected user_id 7, got %#v", got)
				}
			} else if got != nil {
				t.Fatal("next handler must not run")
			}
		})
	}
}

func TestUserID(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if got := userID(c); got != "anon" {
		t.Fatalf("expected anon, got %q", got)
	}
	c.Set("user_id", uint64(12))
	if got := userID(c); got != "12" {
		t.Fatalf("expected 12, got %q", got)
	}
}
