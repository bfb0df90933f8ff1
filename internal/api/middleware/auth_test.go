package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/callhound/callhound-api/internal/api/shared"
	"github.com/callhound/callhound-api/internal/mocks"
	"github.com/callhound/callhound-api/internal/service/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticateSetsUserID(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	jwtService := &mocks.MockJWTService{
		Claims: &auth.Claims{UserID: userID, TokenType: "access"},
	}
	middleware := NewAuthMiddleware(jwtService)

	var seenUserID uuid.UUID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetUserID(r)
		require.True(t, ok)
		seenUserID = id
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/recordings", nil)
	req.Header.Set("Authorization", "Bearer some-valid-token")
	rec := httptest.NewRecorder()

	middleware.Authenticate(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, seenUserID)
}

func TestAuthenticateRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		authHeader  string
		validateErr error
	}{
		{"missing header", "", nil},
		{"malformed header", "some-valid-token", nil},
		{"wrong scheme", "Basic dXNlcjpwYXNz", nil},
		{"expired token", "Bearer expired", auth.ErrExpiredToken},
		{"invalid token", "Bearer garbage", auth.ErrInvalidToken},
		{"refresh token as access", "Bearer refresh-token", auth.ErrWrongTokenType},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			jwtService := &mocks.MockJWTService{
				ValidateTokenFn: func(ctx context.Context, tokenString string) (*auth.Claims, error) {
					return nil, tc.validateErr
				},
			}
			middleware := NewAuthMiddleware(jwtService)

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("next handler must not run for rejected requests")
			})

			req := httptest.NewRequest(http.MethodGet, "/api/recordings", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rec := httptest.NewRecorder()

			middleware.Authenticate(next).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestGetUserIDAbsent(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := GetUserID(req)
	assert.False(t, ok)

	// A value of the wrong type is also rejected.
	ctx := context.WithValue(req.Context(), shared.UserIDContextKey, "not-a-uuid")
	_, ok = GetUserID(req.WithContext(ctx))
	assert.False(t, ok)
}
