package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"github.com/optimate/optimate/app/dashboard/internal/conf"
	"github.com/optimate/optimate/app/dashboard/internal/domain"
	"github.com/optimate/optimate/app/dashboard/internal/usecase"
)

// 默认跳转地址
const (
	DefaultLoginReturn  = "/dashboard"
	DefaultLogoutReturn = "/login"
	CallbackPath        = "/api/auth/callback"
)

// AuthService 身份提供方登录流程
type AuthService struct {
	oauth       *oauth2.Config
	userInfoURL string
	sessions    *usecase.SessionUseCase
	users       *usecase.UserUseCase
	log         *log.Helper
}

// NewAuthService 按身份提供方域名拼出 authorize、token 和 userinfo 地址
func NewAuthService(c *conf.Auth, sessions *usecase.SessionUseCase, users *usecase.UserUseCase, logger log.Logger) *AuthService {
	if c == nil {
		c = &conf.Auth{}
	}
	issuer := strings.TrimRight(c.Domain, "/")
	if issuer != "" && !strings.HasPrefix(issuer, "http://") && !strings.HasPrefix(issuer, "https://") {
		issuer = "https://" + issuer
	}
	baseURL := strings.TrimRight(c.BaseUrl, "/")
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}

	return &AuthService{
		oauth: &oauth2.Config{
			ClientID:     c.ClientId,
			ClientSecret: c.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  issuer + "/authorize",
				TokenURL: issuer + "/oauth/token",
			},
			RedirectURL: baseURL + CallbackPath,
			Scopes:      []string{"openid", "profile", "email"},
		},
		userInfoURL: issuer + "/userinfo",
		sessions:    sessions,
		users:       users,
		log:         log.NewHelper(logger),
	}
}

// LoginURL 身份提供方的授权地址，state 携带登录后的跳转路径
func (s *AuthService) LoginURL(returnTo string) string {
	return s.oauth.AuthCodeURL(SafeReturnTo(returnTo, DefaultLoginReturn))
}

// Callback 用授权码换取令牌并签发会话，返回会话令牌、过期时间和跳转路径
func (s *AuthService) Callback(ctx context.Context, code, state string) (string, time.Time, string, error) {
	if code == "" {
		return "", time.Time{}, "", errors.BadRequest("INVALID_ARGUMENT", "missing code")
	}
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		s.log.Errorf("token exchange failed: %v", err)
		return "", time.Time{}, "", errors.Unauthorized("UNAUTHORIZED", "token exchange failed")
	}

	sess, err := s.userInfo(ctx, tok)
	if err != nil {
		s.log.Errorf("userinfo failed: %v", err)
		return "", time.Time{}, "", errors.Unauthorized("UNAUTHORIZED", "userinfo failed")
	}
	if _, err := s.users.Ensure(ctx, sess, "", "", nil); err != nil {
		// 档案可以在首次访问 /api/user/profile 时再创建
		s.log.Warnf("failed to ensure profile for %s: %v", sess.Sub, err)
	}

	token, exp, err := s.sessions.Issue(sess)
	if err != nil {
		return "", time.Time{}, "", err
	}
	s.log.Infof("user %s signed in", sess.Sub)
	return token, exp, SafeReturnTo(state, DefaultLoginReturn), nil
}

func (s *AuthService) userInfo(ctx context.Context, tok *oauth2.Token) (*domain.Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var sess domain.Session
	if err := json.Unmarshal(body, &sess); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if sess.Sub == "" {
		return nil, fmt.Errorf("userinfo without sub")
	}
	return &sess, nil
}

// Authenticate 校验会话令牌
func (s *AuthService) Authenticate(token string) (*domain.Session, error) {
	return s.sessions.Parse(token)
}

// SafeReturnTo 只接受站内相对路径，防止开放重定向
func SafeReturnTo(returnTo, def string) string {
	if !strings.HasPrefix(returnTo, "/") || strings.HasPrefix(returnTo, "//") || strings.HasPrefix(returnTo, "/\\") {
		return def
	}
	return returnTo
}
