package database

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations 将内嵌的 schema 迁移应用到目标库
// 部分唯一索引（uniq_pending_pair / uniq_mentor_accepted）承载并发不变量，
// 服务启动前必须就位，因此迁移失败视为致命错误由调用方终止启动
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("读取内嵌迁移脚本失败: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("初始化 postgres 迁移驱动失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("构建迁移实例失败: %w", err)
	}

	before, _, _ := m.Version()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("应用迁移失败: %w", err)
	}

	after, dirty, _ := m.Version()
	if dirty {
		logger.Warn("迁移处于 dirty 状态，需要人工介入",
			zap.Uint("schema_version", after))
		return nil
	}
	if after == before {
		logger.Info("schema 已是最新", zap.Uint("schema_version", after))
	} else {
		logger.Info("schema 迁移完成",
			zap.Uint("from_version", before),
			zap.Uint("schema_version", after))
	}

	return nil
}
