// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/idea-inbox-service/internal/dao"
	"github.com/haierkeys/idea-inbox-service/internal/extractor"
	"github.com/haierkeys/idea-inbox-service/pkg/logger"
	"github.com/haierkeys/idea-inbox-service/pkg/storage"
	"github.com/haierkeys/idea-inbox-service/pkg/util"
	"github.com/haierkeys/idea-inbox-service/pkg/writequeue"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvAPIKey overrides extractor.api-key when set
const EnvAPIKey = "IDEA_INBOX_API_KEY"

// AppConfig 应用配置
type AppConfig struct {
	File      string          `yaml:"-"` // 配置文件路径，不序列化
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	App       AppSettings     `yaml:"app"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Tracer    TracerConfig    `yaml:"tracer"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别
	Level string `yaml:"level" default:"info"`
	// File 日志文件路径，为空时仅输出到控制台
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production 生产模式（JSON 输出）
	Production bool `yaml:"production" default:"true"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// RunMode 运行模式 debug / release
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort HTTP 监听地址
	HttpPort string `yaml:"http-port" default:":9000"`
	// ReadTimeout 读超时（秒）
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout 写超时（秒）
	WriteTimeout int `yaml:"write-timeout" default:"60"`
	// PrivateHttpListen 私有监听地址（metrics / pprof），为空时不启动
	PrivateHttpListen string `yaml:"private-http-listen" default:"127.0.0.1:9001"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type sqlite / mysql / postgres
	Type string `yaml:"type" default:"sqlite"`
	// Path SQLite 文件路径
	Path string `yaml:"path" default:"storage/database/inbox.sqlite3"`
	// UserName 用户名
	UserName string `yaml:"username"`
	// Password 密码
	Password string `yaml:"password"`
	// Host 主机地址
	Host string `yaml:"host"`
	// Name 数据库名
	Name string `yaml:"name"`
	// TablePrefix 表前缀
	TablePrefix string `yaml:"table-prefix"`
	// AutoMigrate 自动迁移
	AutoMigrate bool `yaml:"auto-migrate" default:"true"`
	// Charset 字符集（MySQL）
	Charset string `yaml:"charset" default:"utf8mb4"`
	// MaxIdleConns 最大空闲连接数
	MaxIdleConns int `yaml:"max-idle-conns" default:"10"`
	// MaxOpenConns 最大打开连接数
	MaxOpenConns int `yaml:"max-open-conns" default:"100"`
	// ConnMaxLifetime 连接最大存活时间
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"30m"`
	// ConnMaxIdleTime 连接最大空闲时间
	ConnMaxIdleTime string `yaml:"conn-max-idle-time" default:"10m"`
}

// AppSettings 应用设置
type AppSettings struct {
	// DefaultContextTimeout 请求上下文超时（秒）
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"60"`
	// MaxContentLength 笔记内容最大字节数，0 表示不限制
	MaxContentLength int `yaml:"max-content-length" default:"65536"`
	// CaptureRateCapacity capture 接口令牌桶容量，0 表示不限流
	CaptureRateCapacity int64 `yaml:"capture-rate-capacity" default:"30"`
	// CaptureRateInterval capture 接口令牌填充间隔
	CaptureRateInterval string `yaml:"capture-rate-interval" default:"2s"`

	// Write Queue 配置
	WriteQueueCapacity int    `yaml:"write-queue-capacity" default:"100"`
	WriteQueueTimeout  string `yaml:"write-queue-timeout" default:"30s"`

	// BackupDir 定时导出归档的目录，为空时不启用
	BackupDir string `yaml:"backup-dir"`
	// BackupInterval 定时导出间隔
	BackupInterval string `yaml:"backup-interval" default:"24h"`
	// BackupCron 定时导出策略：daily / weekly / monthly 或 5 段 cron 表达式，设置后优先于 BackupInterval
	BackupCron string `yaml:"backup-cron"`
	// BackupKeep 本地保留的归档数量，0 表示全部保留
	BackupKeep int `yaml:"backup-keep" default:"7"`
	// BackupStorage 归档额外上传的存储，type 为空时不上传
	BackupStorage storage.Config `yaml:"backup-storage"`
}

// ExtractorConfig 标题与标签提取配置
type ExtractorConfig struct {
	// Enabled 未启用时所有捕获都走降级路径
	Enabled bool `yaml:"enabled" default:"true"`
	// BaseURL OpenAI 兼容接口地址
	BaseURL string `yaml:"base-url" default:"https://api.openai.com/v1"`
	// APIKey 接口密钥，可被环境变量 IDEA_INBOX_API_KEY 覆盖
	APIKey string `yaml:"api-key"`
	// Model 模型名称
	Model string `yaml:"model" default:"gpt-4o-mini"`
	// Timeout 单次调用超时
	Timeout string `yaml:"timeout" default:"15s"`
	// Provider 指标中的提供方标签
	Provider string `yaml:"provider" default:"openai"`
}

// TracerConfig 请求追踪配置
type TracerConfig struct {
	// Enabled 是否启用 TraceID
	Enabled bool `yaml:"enabled" default:"true"`
	// Header TraceID 请求头名称
	Header string `yaml:"header" default:"X-Trace-ID"`
}

// LoadConfig 从文件加载配置
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	c, err := ParseConfig(file)
	if err != nil {
		return nil, realpath, err
	}
	c.File = realpath
	return c, realpath, nil
}

// ParseConfig 解析 YAML 配置内容并填充默认值
func ParseConfig(data []byte) (*AppConfig, error) {
	c := new(AppConfig)

	// 设置默认值
	if err := defaults.Set(c); err != nil {
		return nil, errors.Wrap(err, "set default config failed")
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(err, "parse config file failed")
	}

	// YAML 中未出现的字段保留默认值；不再二次填充，否则显式的 false 会被覆盖
	if key := os.Getenv(EnvAPIKey); key != "" {
		c.Extractor.APIKey = key
	}

	return c, nil
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}

	err = os.WriteFile(c.File, data, 0644)
	if err != nil {
		return errors.Wrap(err, "write config file failed")
	}

	return nil
}

// GetLoggerConfig 获取日志配置
func (c *AppConfig) GetLoggerConfig() logger.Config {
	return logger.Config{
		Level:      c.Log.Level,
		File:       c.Log.File,
		Production: c.Log.Production,
	}
}

// GetDatabaseConfig 获取 DAO 使用的数据库配置
func (c *AppConfig) GetDatabaseConfig() dao.DatabaseConfig {
	return dao.DatabaseConfig{
		Type:            c.Database.Type,
		Path:            c.Database.Path,
		UserName:        c.Database.UserName,
		Password:        c.Database.Password,
		Host:            c.Database.Host,
		Name:            c.Database.Name,
		TablePrefix:     c.Database.TablePrefix,
		AutoMigrate:     c.Database.AutoMigrate,
		Charset:         c.Database.Charset,
		MaxIdleConns:    c.Database.MaxIdleConns,
		MaxOpenConns:    c.Database.MaxOpenConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		ConnMaxIdleTime: c.Database.ConnMaxIdleTime,
		RunMode:         c.Server.RunMode,
	}
}

// GetWriteQueueConfig 获取 Write Queue 配置
func (c *AppConfig) GetWriteQueueConfig() writequeue.Config {
	cfg := writequeue.DefaultConfig()

	if c.App.WriteQueueCapacity > 0 {
		cfg.QueueCapacity = c.App.WriteQueueCapacity
	}
	if c.App.WriteQueueTimeout != "" {
		if timeout, err := util.ParseDuration(c.App.WriteQueueTimeout); err == nil {
			cfg.WriteTimeout = timeout
		}
	}

	return cfg
}

// GetExtractorConfig 获取提取器配置
func (c *AppConfig) GetExtractorConfig() extractor.Config {
	timeout, err := util.ParseDuration(c.Extractor.Timeout)
	if err != nil || timeout <= 0 {
		timeout = extractor.DefaultTimeout
	}
	return extractor.Config{
		APIKey:   c.Extractor.APIKey,
		BaseURL:  c.Extractor.BaseURL,
		Model:    c.Extractor.Model,
		Timeout:  timeout,
		Provider: c.Extractor.Provider,
	}
}

// GetCaptureRateInterval 获取 capture 令牌填充间隔
func (c *AppConfig) GetCaptureRateInterval() time.Duration {
	if d, err := util.ParseDuration(c.App.CaptureRateInterval); err == nil && d > 0 {
		return d
	}
	return 2 * time.Second
}

// GetBackupInterval 获取定时导出间隔
func (c *AppConfig) GetBackupInterval() time.Duration {
	if d, err := util.ParseDuration(c.App.BackupInterval); err == nil && d > 0 {
		return d
	}
	return 24 * time.Hour
}

// GetContextTimeout 获取请求上下文超时
func (c *AppConfig) GetContextTimeout() time.Duration {
	if c.App.DefaultContextTimeout <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.App.DefaultContextTimeout) * time.Second
}
