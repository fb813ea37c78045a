// Package dao 实现数据访问层
package dao

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/idea-inbox-service/internal/model"
	"github.com/haierkeys/idea-inbox-service/pkg/fileurl"
	"github.com/haierkeys/idea-inbox-service/pkg/util"
	"github.com/haierkeys/idea-inbox-service/pkg/writequeue"

	"github.com/glebarez/sqlite"
	"github.com/haierkeys/gormTracing"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type sqlite / mysql / postgres
	Type            string
	Path            string
	UserName        string
	Password        string
	Host            string
	Name            string
	TablePrefix     string
	AutoMigrate     bool
	Charset         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime string
	ConnMaxIdleTime string
	RunMode         string
}

// Dao 数据访问对象
type Dao struct {
	Db     *gorm.DB
	ctx    context.Context
	config *DatabaseConfig
	logger *zap.Logger
	wq     *writequeue.Queue
}

// Option Dao 配置选项
type Option func(*Dao)

// WithConfig 设置数据库配置
func WithConfig(cfg *DatabaseConfig) Option {
	return func(d *Dao) { d.config = cfg }
}

// WithLogger 设置日志器
func WithLogger(l *zap.Logger) Option {
	return func(d *Dao) { d.logger = l }
}

// WithWriteQueue 设置写队列
func WithWriteQueue(q *writequeue.Queue) Option {
	return func(d *Dao) { d.wq = q }
}

// New 创建 Dao 实例
func New(db *gorm.DB, ctx context.Context, opts ...Option) *Dao {
	d := &Dao{Db: db, ctx: ctx}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	if d.config == nil {
		d.config = &DatabaseConfig{Type: "sqlite", AutoMigrate: true}
	}
	return d
}

// DB 返回数据库连接
func (d *Dao) DB() *gorm.DB {
	return d.Db
}

// Migrate 执行表结构迁移
func (d *Dao) Migrate() error {
	if !d.config.AutoMigrate {
		return nil
	}
	if err := model.AutoMigrateAll(d.Db); err != nil {
		return errors.Wrap(err, "auto migrate")
	}
	return nil
}

// write 在写队列中执行写操作，未配置写队列时直接执行
func (d *Dao) write(ctx context.Context, fn func() error) error {
	if d.wq == nil {
		return fn()
	}
	return d.wq.Execute(ctx, fn)
}

// NewDBEngine 根据配置创建数据库连接
func NewDBEngine(c DatabaseConfig) (*gorm.DB, error) {
	dialector, err := useDialector(c)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix, // 表名前缀，`Note` 的表名应该是 `t_note`
			SingularTable: true,          // 使用单数表名
		},
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if c.RunMode == "debug" {
		db.Config.Logger = logger.Default.LogMode(logger.Info)
	}

	// 获取通用数据库对象 sql.DB ，然后使用其提供的功能
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if c.Type == "sqlite" {
		// SQLite 只允许单写连接
		sqlDB.SetMaxOpenConns(1)
	} else {
		if c.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(c.MaxIdleConns)
		}
		if c.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(c.MaxOpenConns)
		}
	}

	if d, err := util.ParseDuration(c.ConnMaxLifetime); err == nil && d > 0 {
		sqlDB.SetConnMaxLifetime(d)
	} else {
		sqlDB.SetConnMaxLifetime(time.Minute * 30)
	}
	if d, err := util.ParseDuration(c.ConnMaxIdleTime); err == nil && d > 0 {
		sqlDB.SetConnMaxIdleTime(d)
	}

	_ = db.Use(&gormTracing.OpentracingPlugin{})

	return db, nil
}

func useDialector(c DatabaseConfig) (gorm.Dialector, error) {
	switch c.Type {
	case "mysql":
		charset := c.Charset
		if charset == "" {
			charset = "utf8mb4"
		}
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=true&loc=UTC",
			c.UserName,
			c.Password,
			c.Host,
			c.Name,
			charset,
		)), nil
	case "postgres":
		return postgres.Open(fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			c.Host,
			c.UserName,
			c.Password,
			c.Name,
		)), nil
	case "sqlite", "":
		if c.Path == "" {
			return nil, errors.New("sqlite path is empty")
		}
		if !fileurl.IsExist(filepath.Dir(c.Path)) {
			if err := fileurl.CreatePath(c.Path, os.ModePerm); err != nil {
				return nil, errors.Wrap(err, "create database directory")
			}
		}
		return sqlite.Open(c.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"), nil
	}
	return nil, errors.Errorf("unsupported database type: %s", c.Type)
}
