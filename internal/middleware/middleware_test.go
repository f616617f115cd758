package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"patitas-a-casa/internal/platform/logger"
	"patitas-a-casa/internal/ports/auth"
)

type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	if token == "good" {
		return auth.Claims{UserID: "from-token"}, nil
	}
	return auth.Claims{}, errors.New("bad token")
}

func claimsRecorder(got *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, ok := GetClaims(r.Context()); ok {
			*got = c.UserID
		}
	})
}

func TestAuthContext(t *testing.T) {
	cases := []struct {
		name    string
		devAuth bool
		headers map[string]string
		want    string
	}{
		{"bearer ok", false, map[string]string{"Authorization": "Bearer good"}, "from-token"},
		{"bearer bad", false, map[string]string{"Authorization": "Bearer nope"}, ""},
		{"debug header ignored without dev", false, map[string]string{DebugUserHeader: "dev"}, ""},
		{"debug header with dev", true, map[string]string{DebugUserHeader: "dev"}, "dev"},
		{"bearer wins over debug", true, map[string]string{"Authorization": "bearer good", DebugUserHeader: "dev"}, "from-token"},
		{"bad bearer does not fall back to debug", true, map[string]string{"Authorization": "Bearer nope", DebugUserHeader: "dev"}, ""},
		{"no credentials", true, nil, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got string
			h := AuthContext(stubVerifier{}, tc.devAuth)(claimsRecorder(&got))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if got != tc.want {
				t.Fatalf("user = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRecover_Returns500JSON(t *testing.T) {
	h := Recover(logger.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
}
