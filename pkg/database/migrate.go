package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// RunMigrations 把内嵌的 SQL 迁移应用到目标库
// 幂等：结构已是最新时 migrate 返回 ErrNoChange，按成功处理
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("读取内嵌迁移: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("初始化迁移驱动: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("构建迁移实例: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("应用迁移: %w", err)
	}

	version, dirty, _ := m.Version()
	if dirty {
		logger.Warn("迁移版本处于 dirty 状态，需人工处理", zap.Uint("version", version))
		return nil
	}
	logger.Info("数据库结构已就绪", zap.Uint("version", version))
	return nil
}
