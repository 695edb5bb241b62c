package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/golang-jwt/jwt/v5"

	"github.com/optimate/optimate/app/dashboard/internal/conf"
	"github.com/optimate/optimate/app/dashboard/internal/domain"
)

// SessionTTL 会话有效期
const SessionTTL = 24 * time.Hour

// sessionClaims appSession 令牌中的声明
type sessionClaims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// SessionUseCase 签发和校验会话令牌
type SessionUseCase struct {
	jwtKey []byte
	now    func() time.Time
	log    *log.Helper
}

// NewSessionUseCase 创建会话业务逻辑实例。
// 未配置 jwt_key 时使用进程内随机密钥，重启后已签发的会话全部失效。
func NewSessionUseCase(auth *conf.Auth, logger log.Logger) *SessionUseCase {
	helper := log.NewHelper(logger)
	var jwtKey []byte
	if auth != nil && auth.JwtKey != "" {
		jwtKey = []byte(auth.JwtKey)
	} else {
		jwtKey = make([]byte, 32)
		if _, err := rand.Read(jwtKey); err != nil {
			panic(fmt.Sprintf("generate session key: %v", err))
		}
		helper.Error("auth.jwt_key is not set, using a random key; sessions will not survive a restart")
	}
	return &SessionUseCase{jwtKey: jwtKey, now: time.Now, log: helper}
}

// Issue 为已登录用户签发 HS256 令牌，返回令牌和过期时间
func (uc *SessionUseCase) Issue(s *domain.Session) (string, time.Time, error) {
	now := uc.now()
	exp := now.Add(SessionTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Name:  s.Name,
		Email: s.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.Sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString(uc.jwtKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse 校验令牌并取出会话
func (uc *SessionUseCase) Parse(token string) (*domain.Session, error) {
	if token == "" {
		return nil, errors.Unauthorized("UNAUTHORIZED", "missing session")
	}
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return uc.jwtKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(uc.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		uc.log.Debugf("invalid session token: %v", err)
		return nil, errors.Unauthorized("UNAUTHORIZED", "invalid session")
	}
	if claims.Subject == "" {
		return nil, errors.Unauthorized("UNAUTHORIZED", "invalid session")
	}
	return &domain.Session{Sub: claims.Subject, Name: claims.Name, Email: claims.Email}, nil
}

type sessionKey struct{}

// WithSession 把会话放入 ctx
func WithSession(ctx context.Context, s *domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext 取出当前会话
func SessionFromContext(ctx context.Context) (*domain.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*domain.Session)
	return s, ok && s != nil
}
