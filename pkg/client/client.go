package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/tendant/agroyield/pkg/account"
	apperrors "github.com/tendant/agroyield/pkg/errors"
)

// AuthUser is the caller identity carried by a verified access token.
type AuthUser struct {
	UserId    string `json:"user_id,omitempty"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	IsAdmin   bool   `json:"is_admin,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	// UserUuid is UserId parsed once for direct use
	UserUuid uuid.UUID `json:"-"`
}

func (i AuthUser) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("user", i.UserId),
		slog.String("role", i.Role),
	)
}

// Actor returns the caller in the form services take it.
func (i AuthUser) Actor() account.Actor {
	return account.Actor{ID: i.UserUuid, Admin: i.IsAdmin}
}

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "agroyield context value " + k.name
}

const ACCESS_TOKEN_TYPE = "access"

var (
	AuthUserKey = &contextKey{"AuthUser"}
)

func LoadFromMap[T any](m map[string]interface{}, c *T) error {
	data, err := json.Marshal(m)
	if err == nil {
		err = json.Unmarshal(data, c)
	}
	return err
}

// Verifier reads the bearer token from the Authorization header.
func Verifier(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return jwtauth.Verify(ja, jwtauth.TokenFromHeader)
}

// AuthUserMiddleware turns verified claims into an AuthUser on the request
// context. Refresh and reset tokens are rejected here even though their
// signature is valid.
func AuthUserMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			apperrors.RenderMessage(w, r, http.StatusUnauthorized, "Authentication credentials were not provided or are invalid")
			return
		}

		authUser := new(AuthUser)
		if err := LoadFromMap(claims, authUser); err != nil {
			slog.Error("failed to parse token claims", "error", err)
			apperrors.RenderMessage(w, r, http.StatusUnauthorized, "Invalid token claims")
			return
		}
		if authUser.TokenType != ACCESS_TOKEN_TYPE {
			apperrors.RenderMessage(w, r, http.StatusUnauthorized, "Token has wrong type")
			return
		}

		userUUID, err := uuid.Parse(authUser.UserId)
		if err != nil {
			slog.Warn("failed to parse user ID as UUID", "userId", authUser.UserId, "error", err)
			apperrors.RenderMessage(w, r, http.StatusUnauthorized, "Invalid token claims")
			return
		}
		authUser.UserUuid = userUUID

		slog.Debug("authenticated user", "user", authUser)
		ctx := context.WithValue(r.Context(), AuthUserKey, authUser)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAuthUser returns the caller set by AuthUserMiddleware, or nil.
func GetAuthUser(r *http.Request) *AuthUser {
	return FromContext(r.Context())
}

func FromContext(ctx context.Context) *AuthUser {
	authUser, _ := ctx.Value(AuthUserKey).(*AuthUser)
	return authUser
}

// WithAuthUser stores u on ctx. Used by tests and internal callers.
func WithAuthUser(ctx context.Context, u *AuthUser) context.Context {
	return context.WithValue(ctx, AuthUserKey, u)
}
