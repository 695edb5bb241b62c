package server

import (
	"context"
	nethttp "net/http"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/middleware"
	khttp "github.com/go-kratos/kratos/v2/transport/http"

	"github.com/optimate/optimate/app/dashboard/internal/conf"
	"github.com/optimate/optimate/app/dashboard/internal/service"
	"github.com/optimate/optimate/app/dashboard/internal/usecase"
)

// 会话 cookie：appSession 保存签名令牌，optimate_session 供前端判断登录状态
const (
	SessionCookie = "appSession"
	FlagCookie    = "optimate_session"
)

// Authenticate 从 appSession cookie 校验会话并放入 ctx
func Authenticate(auth *service.AuthService) middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req any) (any, error) {
			r, ok := khttp.RequestFromServerContext(ctx)
			if !ok {
				return nil, errors.Unauthorized("UNAUTHORIZED", "unauthorized")
			}
			c, err := r.Cookie(SessionCookie)
			if err != nil {
				return nil, errors.Unauthorized("UNAUTHORIZED", "unauthorized")
			}
			sess, err := auth.Authenticate(c.Value)
			if err != nil {
				return nil, err
			}
			return handler(usecase.WithSession(ctx, sess), req)
		}
	}
}

type cookieWriter struct {
	secure bool
}

func newCookieWriter(c *conf.Auth) *cookieWriter {
	return &cookieWriter{secure: c != nil && c.SecureCookies}
}

func (cw *cookieWriter) set(w nethttp.ResponseWriter, token string, exp time.Time) {
	maxAge := int(time.Until(exp).Seconds())
	nethttp.SetCookie(w, &nethttp.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cw.secure,
		SameSite: nethttp.SameSiteLaxMode,
	})
	nethttp.SetCookie(w, &nethttp.Cookie{
		Name:     FlagCookie,
		Value:    "authenticated",
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   cw.secure,
		SameSite: nethttp.SameSiteLaxMode,
	})
}

func (cw *cookieWriter) clear(w nethttp.ResponseWriter) {
	for _, name := range []string{SessionCookie, FlagCookie} {
		nethttp.SetCookie(w, &nethttp.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: name == SessionCookie,
			Secure:   cw.secure,
			SameSite: nethttp.SameSiteLaxMode,
		})
	}
}
