package main

import (
	"flag"
	"os"

	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/env"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/joho/godotenv"

	"github.com/optimate/optimate/app/common/pkg/logger"
	"github.com/optimate/optimate/app/dashboard/internal/conf"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name 是服务的名称
	Name string = "optimate.dashboard"
	// Version 是服务的版本号
	Version string
	// flagconf 是配置文件的路径命令行参数
	flagconf string

	id, _ = os.Hostname()
)

func init() {
	flag.StringVar(&flagconf, "conf", "app/dashboard/configs/config.yaml", "config path, eg: -conf config.yaml")
}

func main() {
	flag.Parse()
	// .env 不存在时忽略，环境变量仍然生效
	_ = godotenv.Load()

	kl := log.With(log.NewStdLogger(os.Stdout),
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.id", id,
		"service.name", Name,
		"service.version", Version,
	)

	// 文件配置中的 ${KEY:default} 由 OPTIMATE_ 前缀的环境变量填充
	c := config.New(
		config.WithSource(
			file.NewSource(flagconf),
			env.NewSource("OPTIMATE_"),
		),
	)
	defer c.Close()

	if err := c.Load(); err != nil {
		panic(err)
	}

	var bc conf.Bootstrap
	if err := c.Scan(&bc); err != nil {
		panic(err)
	}

	if bc.Log != nil {
		if err := logger.InitLogger(bc.Log.Level, bc.Log.File); err != nil {
			log.NewHelper(kl).Errorf("Failed to init logger: %v", err)
			_ = logger.InitLogger("info", "")
		}
	}

	app, cleanup, err := initApp(bc.Server, bc.Data, bc.Auth, bc.Feed, bc.Assistant, kl)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	if err := app.Run(); err != nil {
		panic(err)
	}
}
