package data

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/optimate/optimate/app/dashboard/internal/conf"
)

// 支持的数据库驱动
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// tsLayout 固定宽度的 UTC 时间格式，保证按字符串排序即按时间排序
const tsLayout = "2006-01-02T15:04:05.000000Z"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		preferences TEXT NOT NULL DEFAULT '{}',
		recent_searches TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS submissions (
		user_id TEXT NOT NULL,
		submission_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (user_id, submission_id)
	)`,
	`CREATE TABLE IF NOT EXISTS guidelines (
		user_id TEXT NOT NULL,
		guideline_id TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		rules TEXT NOT NULL DEFAULT '[]',
		preferences TEXT NOT NULL DEFAULT '{}',
		source TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (user_id, guideline_id)
	)`,
}

type Data struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	if c == nil || c.Database == nil {
		return nil, nil, fmt.Errorf("database not configured")
	}
	db, err := sql.Open(c.Database.Driver, c.Database.Source)
	if err != nil {
		return nil, nil, err
	}
	if c.Database.Driver == DriverSQLite {
		// 内存库在每个连接上都是独立的
		db.SetMaxOpenConns(1)
	}

	d, err := newData(db, c.Database.Driver)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	cleanup := func() {
		log.NewHelper(logger).Info("closing the data resources")
		db.Close()
	}
	return d, cleanup, nil
}

func newData(db *sql.DB, driver string) (*Data, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to init schema: %w", err)
		}
	}
	return &Data{db: db, driver: driver, now: time.Now}, nil
}

// rebind 将 ? 占位符转换为 postgres 的 $n
func (d *Data) rebind(query string) string {
	if d.driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (d *Data) timestamp() string {
	return formatTime(d.now())
}

func formatTime(t time.Time) string {
	return t.UTC().Format(tsLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(tsLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
