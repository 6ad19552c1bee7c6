package middleware

//go:generate mockgen -source=auth.go -destination=auth_mock_test.go -package=middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	. "messenger/pkg/common"
	"messenger/pkg/logger"
	"messenger/pkg/sessions"
	"messenger/pkg/user"
)

type (
	IUserRepo interface {
		GetById(context.Context, string) (*user.User, error)
	}
	ISessionManager interface {
		UserFromToken(string) (*sessions.TokenUser, error)
	}
	Auth struct {
		UserRepo       IUserRepo
		SessionManager ISessionManager
	}
)

func NewAuthMiddleware(sm ISessionManager, ur IUserRepo) *Auth {
	return &Auth{
		UserRepo:       ur,
		SessionManager: sm,
	}
}

// token prefers the Authorization header and falls back to the session cookie.
func token(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return sessions.TokenFromHeader(h)
	}
	if c, err := r.Cookie(sessions.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// Middleware rejects requests without a valid session and puts the
// requester's user row into the request context.
func (auth Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		tokenString := token(r)
		if tokenString == "" {
			WriteMsg(w, "unauthorized: no token provided", http.StatusUnauthorized)
			return
		}

		userFromToken, err := auth.SessionManager.UserFromToken(tokenString)
		if err != nil {
			logger.Log(r.Context()).Infof("auth: can't get user from token: %v", err)
			WriteMsg(w, "unauthorized: invalid token", http.StatusUnauthorized)
			return
		}

		repoCtx, repoCtxCancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer repoCtxCancel()
		u, err := auth.UserRepo.GetById(repoCtx, userFromToken.Id)
		if errors.Is(err, ErrNotFound) {
			logger.Log(r.Context()).Infof("auth: token user %s no longer exists", userFromToken.Id)
			WriteMsg(w, "unauthorized: user not found", http.StatusUnauthorized)
			return
		}
		if err != nil {
			logger.Log(r.Context()).Errorf("auth: can't get the user from repo: %v", err)
			WriteMsg(w, "internal server error", http.StatusInternalServerError)
			return
		}

		ctx := sessions.WithAuthUser(r.Context(), u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
