// Package database 负责 PostgreSQL 连接池的初始化与生命周期管理。
// 包括：连接池配置、启动健康检查、查询错误日志转发、优雅关闭。
package database

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	loader "github.com/khosokawa0716/family-album-sub000/internal/infrastructure/config_loader"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPgxPool 创建并配置 pgxpool.Pool。
//
// 流程：
//  1. 解析 DSN 并应用连接池参数
//  2. 将 pgx 查询错误转发到 Kratos Logger
//  3. 启动时健康检查（Ping + 版本查询）
//  4. 返回 cleanup 函数（Wire 自动调用，关闭连接池）
func NewPgxPool(ctx context.Context, cfg loader.DatabaseConfig, logger log.Logger) (*pgxpool.Pool, func(), error) {
	helper := log.NewHelper(logger)

	if cfg.DSN == "" {
		return nil, nil, fmt.Errorf("postgres DSN is required (set DATABASE_URL)")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse postgres DSN: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns >= 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	poolConfig.ConnConfig.Tracer = &pgxLogger{helper: helper}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := healthCheck(ctx, pool, helper); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres health check failed: %w", err)
	}

	helper.Infof(
		"postgres pool created: dsn=%s max_conns=%d min_conns=%d",
		sanitizeDSN(cfg.DSN), poolConfig.MaxConns, poolConfig.MinConns,
	)

	cleanup := func() {
		helper.Info("closing postgres pool")
		pool.Close()
	}
	return pool, cleanup, nil
}

// healthCheck 执行数据库健康检查：Ping + 版本查询。
func healthCheck(ctx context.Context, pool *pgxpool.Pool, helper *log.Helper) error {
	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(healthCtx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	var version string
	if err := pool.QueryRow(healthCtx, "SELECT version()").Scan(&version); err != nil {
		return fmt.Errorf("version query failed: %w", err)
	}

	helper.Infof("database health check passed: version=%s", truncateVersion(version))
	return nil
}

// sanitizeDSN 对 DSN 脱敏，隐藏密码后用于日志输出。
func sanitizeDSN(dsn string) string {
	parsed, err := url.Parse(dsn)
	if err != nil {
		return dsn
	}
	if parsed.User != nil {
		username := parsed.User.Username()
		if _, hasPassword := parsed.User.Password(); hasPassword {
			parsed.User = url.UserPassword(username, "***")
		}
	}
	return parsed.String()
}

// truncateVersion 截断 PostgreSQL 版本字符串，避免日志过长。
func truncateVersion(version string) string {
	if idx := strings.Index(version, "("); idx != -1 {
		return strings.TrimSpace(version[:idx])
	}
	if len(version) > 100 {
		return version[:100] + "..."
	}
	return version
}

// pgxLogger 实现 pgx.QueryTracer，仅在查询失败时转发错误日志。
type pgxLogger struct {
	helper *log.Helper
}

func (l *pgxLogger) TraceQueryStart(ctx context.Context, _ *pgx.Conn, _ pgx.TraceQueryStartData) context.Context {
	return ctx
}

func (l *pgxLogger) TraceQueryEnd(_ context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	if data.Err != nil {
		// 不记录 SQL 正文，避免敏感数据进入日志
		l.helper.Errorf("postgres query failed: error=%v command_tag=%s", data.Err, data.CommandTag.String())
	}
}
