package server

import (
	"context"
	"embed"
	nethttp "net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/middleware/selector"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/optimate/optimate/app/common/pkg/assistant"
	"github.com/optimate/optimate/app/common/pkg/policy"
	"github.com/optimate/optimate/app/common/pkg/query"
	"github.com/optimate/optimate/app/dashboard/internal/conf"
	"github.com/optimate/optimate/app/dashboard/internal/service"
)

//go:embed assets/*
var assets embed.FS

// operationPrefix 需要登录的接口的 operation 前缀
const operationPrefix = "/optimate.dashboard.v1.Dashboard/"

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func NewHTTPServer(c *conf.Server, ac *conf.Auth, s *service.DashboardService, auth *service.AuthService, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
			selector.Server(Authenticate(auth)).
				Match(func(ctx context.Context, operation string) bool {
					return strings.HasPrefix(operation, operationPrefix)
				}).
				Build(),
		),
	}
	if c != nil && c.Http != nil {
		if c.Http.Addr != "" {
			opts = append(opts, http.Address(c.Http.Addr))
		}
		if c.Http.Timeout != "" {
			if d, err := time.ParseDuration(c.Http.Timeout); err == nil {
				opts = append(opts, http.Timeout(d))
			}
		}
	}

	srv := http.NewServer(opts...)
	registerDashboardHTTPServer(srv, s)

	cookies := newCookieWriter(ac)
	srv.HandleFunc("/api/auth/login", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		nethttp.Redirect(w, r, auth.LoginURL(r.URL.Query().Get("returnTo")), nethttp.StatusFound)
	})

	srv.HandleFunc("/api/auth/callback", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		q := r.URL.Query()
		token, exp, redirect, err := auth.Callback(r.Context(), q.Get("code"), q.Get("state"))
		if err != nil {
			nethttp.Redirect(w, r, service.DefaultLogoutReturn, nethttp.StatusFound)
			return
		}
		cookies.set(w, token, exp)
		nethttp.Redirect(w, r, redirect, nethttp.StatusFound)
	})

	srv.HandleFunc("/api/auth/logout", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		cookies.clear(w)
		nethttp.Redirect(w, r, service.SafeReturnTo(r.URL.Query().Get("returnTo"), service.DefaultLogoutReturn), nethttp.StatusFound)
	})

	srv.HandleFunc("/dashboard", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		c, err := r.Cookie(SessionCookie)
		if err != nil {
			redirectToLogin(w, r)
			return
		}
		if _, err := auth.Authenticate(c.Value); err != nil {
			redirectToLogin(w, r)
			return
		}
		content, _ := assets.ReadFile("assets/dashboard.html")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(content)
	})

	srv.HandleFunc("/login", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		content, _ := assets.ReadFile("assets/login.html")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(content)
	})

	srv.HandleFunc("/", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Path != "/" {
			nethttp.NotFound(w, r)
			return
		}
		nethttp.Redirect(w, r, service.DefaultLoginReturn, nethttp.StatusFound)
	})

	return srv
}

func redirectToLogin(w nethttp.ResponseWriter, r *nethttp.Request) {
	nethttp.Redirect(w, r, "/api/auth/login?returnTo="+url.QueryEscape(r.URL.RequestURI()), nethttp.StatusFound)
}

func registerDashboardHTTPServer(srv *http.Server, s *service.DashboardService) {
	r := srv.Route("/")
	r.GET("/api/user/profile", handle(operationPrefix+"GetProfile", bindNone[service.ProfileRequest], s.GetProfile))
	r.POST("/api/user/profile", handle(operationPrefix+"CreateProfile", bindBody[service.ProfileRequest], s.CreateProfile))
	r.PUT("/api/user/profile", handle(operationPrefix+"UpdateProfile", bindBody[service.ProfileRequest], s.UpdateProfile))

	r.GET("/api/user/recent-searches", handle(operationPrefix+"ListRecentSearches", bindNone[service.RecentSearchRequest], s.ListRecentSearches))
	r.POST("/api/user/recent-searches", handle(operationPrefix+"PushRecentSearch", bindBody[service.RecentSearchRequest], s.PushRecentSearch))
	r.DELETE("/api/user/recent-searches", handle(operationPrefix+"DeleteRecentSearch", bindQuery[service.RecentSearchRequest], s.DeleteRecentSearch))

	r.GET("/api/submissions", handle(operationPrefix+"ListSubmissions", bindNone[service.SubmissionRequest], s.ListSubmissions))
	r.POST("/api/submissions", handle(operationPrefix+"CreateSubmission", bindBody[policy.Submission], s.CreateSubmission))
	r.GET("/api/submissions/{id}", handle(operationPrefix+"GetSubmission", bindVars[service.SubmissionRequest], s.GetSubmission))
	r.PUT("/api/submissions/{id}", handle(operationPrefix+"UpdateSubmission", bindBodyVars[service.UpdateSubmissionRequest], s.UpdateSubmission))

	r.GET("/api/portfolio/submissions", handle(operationPrefix+"QueryPortfolio", bindQuery[query.Query], s.QueryPortfolio))
	r.POST("/api/portfolio/submissions", handle(operationPrefix+"ReducePortfolio", bindBody[service.ReduceRequest], s.ReducePortfolio))
	r.GET("/api/portfolio/suggestions", handle(operationPrefix+"Suggest", bindQuery[service.SuggestRequest], s.Suggest))
	r.GET("/api/portfolio/export", exportHandler(s))
	r.GET("/api/portfolio/plot", handle(operationPrefix+"Plot", bindNone[query.Query], s.Plot))
	r.POST("/api/portfolio/reload", handle(operationPrefix+"ReloadPortfolio", bindNone[query.Query], s.ReloadPortfolio))
	r.GET("/api/heatmap", handle(operationPrefix+"Heatmap", bindQuery[service.HeatmapRequest], s.Heatmap))

	r.GET("/api/guidelines", handle(operationPrefix+"ListGuidelines", bindNone[service.GuidelineRequest], s.ListGuidelines))
	r.POST("/api/guidelines", handle(operationPrefix+"CreateGuideline", bindBody[service.GuidelineRequest], s.CreateGuideline))
	r.POST("/api/guidelines/import", handle(operationPrefix+"ImportGuideline", bindBody[service.ImportGuidelineRequest], s.ImportGuideline))

	r.POST("/api/chatbot", handle(operationPrefix+"Chat", bindBody[assistant.Request], s.Chat))
}

func bindNone[T any](http.Context, *T) error { return nil }

func bindQuery[T any](ctx http.Context, in *T) error { return ctx.BindQuery(in) }

func bindBody[T any](ctx http.Context, in *T) error { return ctx.Bind(in) }

func bindVars[T any](ctx http.Context, in *T) error { return ctx.BindVars(in) }

func bindBodyVars[T any](ctx http.Context, in *T) error {
	if err := ctx.Bind(in); err != nil {
		return err
	}
	return ctx.BindVars(in)
}

// handle 按生成代码的方式绑定请求、设置 operation 并经过中间件调用服务方法
func handle[Req, Reply any](operation string, bind func(http.Context, *Req) error, fn func(context.Context, *Req) (Reply, error)) http.HandlerFunc {
	return func(ctx http.Context) error {
		var in Req
		if err := bind(ctx, &in); err != nil {
			return err
		}
		http.SetOperation(ctx, operation)
		h := ctx.Middleware(func(ctx context.Context, req any) (any, error) {
			return fn(ctx, req.(*Req))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}

func exportHandler(s *service.DashboardService) http.HandlerFunc {
	return func(ctx http.Context) error {
		var in query.Query
		if err := ctx.BindQuery(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, operationPrefix+"ExportPortfolio")
		h := ctx.Middleware(func(ctx context.Context, req any) (any, error) {
			return s.ExportPortfolio(ctx, req.(*query.Query))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		ctx.Response().Header().Set("Content-Disposition", `attachment; filename="submissions.xlsx"`)
		return ctx.Blob(200, xlsxContentType, out.([]byte))
	}
}
