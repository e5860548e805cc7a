package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/akarpenko/todoapi/internal/common"
	"github.com/akarpenko/todoapi/internal/models"
)

// fakeAuthenticator implements TokenAuthenticator for testing.
type fakeAuthenticator struct {
	user *models.User
	err  error
}

func (f *fakeAuthenticator) FindByToken(ctx context.Context, token string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func TestRequireAuth(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Email: "a@example.com"}

	tests := []struct {
		name         string
		header       string
		auth         *fakeAuthenticator
		expectedCode int
		expectNext   bool
	}{
		{
			name:         "missing header",
			header:       "",
			auth:         &fakeAuthenticator{user: user},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "invalid token",
			header:       "bad-token",
			auth:         &fakeAuthenticator{err: common.ErrInvalidToken},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "store failure also reads as unauthorized",
			header:       "some-token",
			auth:         &fakeAuthenticator{err: io.ErrUnexpectedEOF},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "valid token",
			header:       "good-token",
			auth:         &fakeAuthenticator{user: user},
			expectedCode: http.StatusOK,
			expectNext:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true

				got := UserFromContext(r.Context())
				if got != user {
					t.Errorf("UserFromContext = %v; want the resolved user", got)
				}
				if tok := TokenFromContext(r.Context()); tok != tt.header {
					t.Errorf("TokenFromContext = %q; want %q", tok, tt.header)
				}
			})

			rec := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/todos", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeader, tt.header)
			}

			RequireAuth(tt.auth)(next).ServeHTTP(rec, req)
			res := rec.Result()
			defer res.Body.Close()

			if res.StatusCode != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, res.StatusCode)
			}
			if nextCalled != tt.expectNext {
				t.Errorf("next called = %v; want %v", nextCalled, tt.expectNext)
			}

			if !tt.expectNext {
				// Rejections carry an empty body.
				body, err := io.ReadAll(res.Body)
				if err != nil {
					t.Fatalf("failed to read body: %v", err)
				}
				if len(body) != 0 {
					t.Errorf("expected empty body, got %q", body)
				}
			}
		})
	}
}

func TestContextAccessors_Unset(t *testing.T) {
	ctx := context.Background()
	if got := UserFromContext(ctx); got != nil {
		t.Errorf("UserFromContext on empty context = %v; want nil", got)
	}
	if got := TokenFromContext(ctx); got != "" {
		t.Errorf("TokenFromContext on empty context = %q; want empty", got)
	}
}
