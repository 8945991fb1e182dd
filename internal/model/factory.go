package model

import (
	"blog/internal/config"
	"blog/internal/entity"
	"blog/internal/model/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

const (
	DBTypeMySQL    = "mysql"
	DBTypeSQLite   = "sqlite"
	DBTypePostgres = "postgres"

	// SQLiteInMemory 内存数据库，只允许单连接
	SQLiteInMemory = ":memory:"

	defaultSQLitePath = "datas/blog.db"
)

// 建表顺序即迁移顺序
var schemaModels = []any{
	&entity.DbRole{},
	&entity.DbUser{},
	&entity.DbUserRole{},
	&entity.DbRefreshToken{},
	&entity.DbCategory{},
	&entity.DbPost{},
}

// RepositoryFactory 打开数据库、迁移表结构并返回 gorm 仓库
type RepositoryFactory struct {
	SlowThreshold time.Duration
}

// NewRepositoryFactory 创建新的仓库工厂
func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{SlowThreshold: 5 * time.Second}
}

// InitRepository 按配置初始化仓库，DBType 不能为空
func InitRepository(cfg *config.Config) (Repository, error) {
	if cfg == nil || cfg.DBType == "" {
		return nil, errors.New("database type is not configured")
	}
	return NewRepositoryFactory().CreateRepository(cfg)
}

// CreateRepository 根据配置创建对应的仓库实现
func (f *RepositoryFactory) CreateRepository(cfg *config.Config) (Repository, error) {
	dialector, singleConn, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(logrus.StandardLogger(), logger.Config{
			SlowThreshold:             f.SlowThreshold,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NamingStrategy:                           schema.NamingStrategy{SingularTable: true},
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.DBType, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if singleConn {
		// 每个连接都是独立的内存库
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := db.SetupJoinTable(&entity.DbUser{}, "Roles", &entity.DbUserRole{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("setup user roles join table: %w", err)
	}
	if err := db.AutoMigrate(schemaModels...); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	logrus.WithField("db_type", cfg.DBType).Debug("repository ready")
	return sql.NewGormRepository(db), nil
}

// dialectorFor 返回驱动以及是否必须限制为单连接
func dialectorFor(cfg *config.Config) (gorm.Dialector, bool, error) {
	switch cfg.DBType {
	case DBTypeMySQL:
		dsn := cfg.DSNURL
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
				cfg.DBUser, cfg.DBPassword, cfg.DBAddr, cfg.DBPort, cfg.DBName)
		}
		return mysql.Open(dsn), false, nil
	case DBTypePostgres:
		dsn := cfg.DSNURL
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
				cfg.DBAddr, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)
		}
		return postgres.Open(dsn), false, nil
	case DBTypeSQLite:
		path := cfg.DBPath
		if path == "" {
			path = defaultSQLitePath
		}
		if path == SQLiteInMemory {
			return sqlite.Open(path), true, nil
		}
		// sqlite 只会创建文件，目录需要提前存在
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, false, fmt.Errorf("create sqlite directory %q: %w", dir, err)
			}
		}
		return sqlite.Open(path), false, nil
	default:
		return nil, false, fmt.Errorf("unsupported database type: %s", cfg.DBType)
	}
}
