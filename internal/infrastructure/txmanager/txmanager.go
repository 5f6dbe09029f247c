// Package txmanager 提供基于 pgx 的数据库事务编排。
// Service 层通过 WithinTx 将多条仓储操作合并为单个事务提交；
// 回调返回错误或 panic 时事务回滚。
package txmanager

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Session 是仓储方法在事务内执行时持有的会话句柄。
type Session interface {
	// Tx 返回底层 pgx 事务。
	Tx() pgx.Tx
}

// TxOptions 描述事务属性；零值使用数据库默认隔离级别。
type TxOptions struct {
	IsoLevel pgx.TxIsoLevel
}

// Manager 定义事务编排能力，便于在测试中以桩替换。
type Manager interface {
	WithinTx(ctx context.Context, opts TxOptions, fn func(txCtx context.Context, sess Session) error) error
}

type manager struct {
	pool *pgxpool.Pool
	log  *log.Helper
}

// NewManager 构造基于 pgxpool 的事务管理器。
func NewManager(pool *pgxpool.Pool, logger log.Logger) Manager {
	return &manager{pool: pool, log: log.NewHelper(logger)}
}

type session struct {
	tx pgx.Tx
}

func (s *session) Tx() pgx.Tx { return s.tx }

// WithinTx 在单个事务中执行回调。
//
// 流程：
//  1. Begin（应用可选事务属性）
//  2. 执行回调；回调内的仓储操作通过 Session 绑定到同一事务
//  3. 回调成功 → Commit；失败或 panic → Rollback 后传播
func (m *manager) WithinTx(ctx context.Context, opts TxOptions, fn func(txCtx context.Context, sess Session) error) (err error) {
	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: opts.IsoLevel})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err = fn(ctx, &session{tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			m.log.WithContext(ctx).Errorf("tx rollback failed: %v (original err: %v)", rbErr, err)
		}
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
