// Package database 负责打开 GORM 连接并执行表结构迁移。
// 默认驱动是 SQLite（与建模流水线产出的 survey_analysis.db 对应），也支持 MySQL。
package database

import (
	"fmt"
	"strings"
	"time"

	"survey_insight_go/internal/model"
	"survey_insight_go/pkg/log"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"moul.io/zapgorm2"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Options 是连接池与 SQL 日志设置。
type Options struct {
	MaxOpenConns int
	MaxIdleConns int
	// SQLLevel: silent / error / warn / info
	SQLLevel string
}

// Open 根据驱动名和 DSN 建立连接，SQL 日志通过 zapgorm2 写入全局 zap logger。
func Open(driver, dsn string, opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case DriverSQLite, "":
		dialector = sqlite.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	gormLogger := zapgorm2.New(log.GetLogger())
	gormLogger.LogLevel = parseLogLevel(opts.SQLLevel)
	gormLogger.IgnoreRecordNotFoundError = true

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	// 获取底层 *sql.DB 以配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	if strings.ToLower(driver) == DriverMySQL {
		if opts.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		}
		if opts.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
		}
		sqlDB.SetConnMaxLifetime(time.Hour)
	} else {
		// SQLite 只允许单写者，单连接避免 database is locked
		sqlDB.SetMaxOpenConns(1)
	}

	log.Infof("Connected to %s database", driver)
	return db, nil
}

// Migrate 创建或补齐本服务用到的全部表。
// 维度表和事实表由外部流水线写入，这里迁移它们只是为了让空库也能启动。
func Migrate(db *gorm.DB) error {
	log.Info("Running migrations...")

	if err := db.AutoMigrate(
		&model.Tag{},
		&model.Question{},
		&model.Role{},
		&model.Response{},
		&model.AlgorithmicTagLink{},
		&model.QuestionTagMapping{},
		&model.ManualOverride{},
		&model.Curator{},
	); err != nil {
		log.Errorf("Failed to run migrations: %v", err)
		return err
	}

	log.Info("Migrations completed successfully")
	return nil
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
