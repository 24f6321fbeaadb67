package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Rijass/Spotify-Stats/internal/service"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	AccountIDKey contextKey = "accountID"
)

// Auth resolves the Bearer token into an account and stores its id on the
// request context. Requests without a valid session get a 401.
func Auth(userService *service.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
				return
			}

			account, err := userService.FindAccountBySessionToken(r.Context(), parts[1])
			if err != nil {
				log.Debug().Err(err).Msg("session token rejected")
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), AccountIDKey, account.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetAccountID(ctx context.Context) (uint64, bool) {
	accountID, ok := ctx.Value(AccountIDKey).(uint64)
	return accountID, ok
}
