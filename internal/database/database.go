// Package database 提供数据库连接和管理
package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"

	"github.com/paiban/gashift/internal/config"
	"github.com/paiban/gashift/pkg/errors"
	"github.com/paiban/gashift/pkg/logger"

	_ "github.com/lib/pq" // PostgreSQL 驱动
)

// SlowQueryThreshold 超过该耗时的语句记录警告
const SlowQueryThreshold = 100 * time.Millisecond

// DB 数据库连接封装
type DB struct {
	*sql.DB
	log zerolog.Logger
}

// New 创建新的数据库连接
func New(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "打开数据库连接失败")
	}

	// 配置连接池
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, errors.New(errors.CodeDatabaseError, "数据库连接测试失败").
			WithCause(err).
			WithField("host", cfg.Host)
	}

	l := logger.Get().With().Str("component", "database").Logger()
	l.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Name).
		Msg("数据库连接成功")

	return Wrap(db, l), nil
}

// Wrap 包装已有连接
func Wrap(db *sql.DB, l zerolog.Logger) *DB {
	return &DB{DB: db, log: l}
}

// Close 关闭数据库连接
func (db *DB) Close() error {
	if db.DB != nil {
		db.log.Info().Msg("关闭数据库连接")
		return db.DB.Close()
	}
	return nil
}

// ExecContext 执行SQL语句
func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := db.DB.ExecContext(ctx, query, args...)
	db.logSlow(query, time.Since(start))
	return result, err
}

// QueryContext 执行查询
func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := db.DB.QueryContext(ctx, query, args...)
	db.logSlow(query, time.Since(start))
	return rows, err
}

// QueryRowContext 执行单行查询
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := db.DB.QueryRowContext(ctx, query, args...)
	db.logSlow(query, time.Since(start))
	return row
}

func (db *DB) logSlow(query string, d time.Duration) {
	if d > SlowQueryThreshold {
		db.log.Warn().
			Str("query", truncateQuery(query)).
			Dur("duration", d).
			Msg("慢SQL查询")
	}
}

// truncateQuery 截断长查询
func truncateQuery(query string) string {
	if len(query) > 200 {
		return query[:200] + "..."
	}
	return query
}
