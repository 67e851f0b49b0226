package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BeltoAI/Belto-Admin-Updated-sub000/pkg/models"
)

// MockUserStore implements UserStore for testing.
type MockUserStore struct {
	GetUserByEmailFunc func(ctx context.Context, email string) (models.AdminUser, bool, error)
}

func (m *MockUserStore) GetUserByEmail(ctx context.Context, email string) (models.AdminUser, bool, error) {
	if m.GetUserByEmailFunc != nil {
		return m.GetUserByEmailFunc(ctx, email)
	}
	return models.AdminUser{}, false, nil
}

func storedUser(t *testing.T, email, password string) models.AdminUser {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatal(err)
	}
	return models.AdminUser{ID: "u-1", Email: email, PasswordHash: hash}
}

func TestLogin(t *testing.T) {
	InitializeAuth("test-secret", true)
	account := storedUser(t, "admin@belto.example", "hunter22")

	tests := []struct {
		name      string
		store     *MockUserStore
		email     string
		password  string
		expectErr bool
	}{
		{
			name: "valid credentials",
			store: &MockUserStore{
				GetUserByEmailFunc: func(ctx context.Context, email string) (models.AdminUser, bool, error) {
					return account, true, nil
				},
			},
			email:    "admin@belto.example",
			password: "hunter22",
		},
		{
			name: "wrong password",
			store: &MockUserStore{
				GetUserByEmailFunc: func(ctx context.Context, email string) (models.AdminUser, bool, error) {
					return account, true, nil
				},
			},
			email:     "admin@belto.example",
			password:  "wrong",
			expectErr: true,
		},
		{
			name:      "unknown account",
			store:     &MockUserStore{},
			email:     "nobody@belto.example",
			password:  "hunter22",
			expectErr: true,
		},
		{
			name: "store failure",
			store: &MockUserStore{
				GetUserByEmailFunc: func(ctx context.Context, email string) (models.AdminUser, bool, error) {
					return models.AdminUser{}, false, errors.New("db down")
				},
			},
			email:     "admin@belto.example",
			password:  "hunter22",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := Login(context.Background(), tt.store, tt.email, tt.password)
			if tt.expectErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if u.Email != tt.email {
				t.Errorf("email = %q, want %q", u.Email, tt.email)
			}
		})
	}
}

func TestLogin_SameErrorForUnknownAndWrongPassword(t *testing.T) {
	InitializeAuth("test-secret", true)
	account := storedUser(t, "admin@belto.example", "hunter22")

	known := &MockUserStore{
		GetUserByEmailFunc: func(ctx context.Context, email string) (models.AdminUser, bool, error) {
			return account, true, nil
		},
	}
	_, errWrong := Login(context.Background(), known, "admin@belto.example", "nope")
	_, errUnknown := Login(context.Background(), &MockUserStore{}, "ghost@belto.example", "nope")

	if errWrong == nil || errUnknown == nil {
		t.Fatal("expected both logins to fail")
	}
	if errWrong.Error() != errUnknown.Error() {
		t.Errorf("error messages differ: %q vs %q", errWrong, errUnknown)
	}
}

func TestJWTRoundTrip(t *testing.T) {
	InitializeAuth("test-secret", true)

	user := &User{ID: "u-1", Email: "admin@belto.example"}
	token, err := GenerateJWT(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	got, err := ValidateJWT(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got.ID != user.ID || got.Email != user.Email {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestValidateJWT_WrongSecret(t *testing.T) {
	InitializeAuth("secret-one", true)
	token, err := GenerateJWT(&User{ID: "u-1", Email: "a@b.c"})
	if err != nil {
		t.Fatal(err)
	}

	InitializeAuth("secret-two", true)
	if _, err := ValidateJWT(token); err == nil {
		t.Error("expected validation failure with rotated secret")
	}
}

func TestValidateJWT_Garbage(t *testing.T) {
	InitializeAuth("test-secret", true)
	if _, err := ValidateJWT("not.a.token"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}

	t.Run("disabled auth passes through", func(t *testing.T) {
		InitializeAuth("", false)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/retrieve", nil)
		OptionalAuthMiddleware(handler)(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("enabled auth rejects missing token", func(t *testing.T) {
		InitializeAuth("test-secret", true)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/retrieve", nil)
		OptionalAuthMiddleware(handler)(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("enabled auth accepts bearer token and sets context", func(t *testing.T) {
		InitializeAuth("test-secret", true)
		token, err := GenerateJWT(&User{ID: "u-1", Email: "admin@belto.example"})
		if err != nil {
			t.Fatal(err)
		}

		var seen *User
		inner := func(w http.ResponseWriter, r *http.Request) {
			seen = GetUserFromContext(r)
			w.WriteHeader(http.StatusOK)
		}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/retrieve", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		OptionalAuthMiddleware(inner)(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if seen == nil || seen.Email != "admin@belto.example" {
			t.Errorf("context user = %+v", seen)
		}
	})

	t.Run("enabled auth accepts cookie token", func(t *testing.T) {
		InitializeAuth("test-secret", true)
		token, err := GenerateJWT(&User{ID: "u-1", Email: "admin@belto.example"})
		if err != nil {
			t.Fatal(err)
		}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/retrieve", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
		OptionalAuthMiddleware(handler)(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})
}
