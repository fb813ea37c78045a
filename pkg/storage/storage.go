// Package storage uploads export archives to local or remote storage.
package storage

import (
	"context"
	"errors"

	"github.com/haierkeys/idea-inbox-service/pkg/storage/aliyun_oss"
	"github.com/haierkeys/idea-inbox-service/pkg/storage/aws_s3"
	"github.com/haierkeys/idea-inbox-service/pkg/storage/local_fs"
	"github.com/haierkeys/idea-inbox-service/pkg/storage/webdav"
)

type Type = string

const (
	LOCAL  Type = "localfs"
	OSS    Type = "oss"
	R2     Type = "r2"
	S3     Type = "s3"
	MinIO  Type = "minio"
	WebDAV Type = "webdav"
)

// StorageTypeMap 支持的存储类型
var StorageTypeMap = map[Type]bool{
	LOCAL:  true,
	OSS:    true,
	R2:     true,
	S3:     true,
	MinIO:  true,
	WebDAV: true,
}

// ErrInvalidStorageType unknown or empty storage type
var ErrInvalidStorageType = errors.New("storage: invalid storage type")

// Config Unified storage configuration
// Config 统一存储配置
type Config struct {
	// Type 为空时不启用
	Type       Type   `yaml:"type"`
	CustomPath string `yaml:"custom-path"`

	// Cloud Storage (S3/OSS/MinIO/R2)
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	AccountID       string `yaml:"account-id"` // Cloudflare R2 specific

	// WebDAV
	User     string `yaml:"user"`
	Password string `yaml:"password"`

	// Local FS
	SavePath string `yaml:"save-path"`
}

// Enabled reports whether a storage type is configured.
func (c *Config) Enabled() bool {
	return c != nil && c.Type != ""
}

// Storager 存储接口
type Storager interface {
	// SendContent stores content under key and returns the full stored key.
	SendContent(ctx context.Context, key string, content []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// NewClient 根据配置创建存储客户端
func NewClient(config *Config) (Storager, error) {
	if !config.Enabled() || !StorageTypeMap[config.Type] {
		return nil, ErrInvalidStorageType
	}

	switch config.Type {
	case LOCAL:
		return local_fs.NewClient(&local_fs.Config{
			SavePath:   config.SavePath,
			CustomPath: config.CustomPath,
		})
	case OSS:
		return aliyun_oss.NewClient(&aliyun_oss.Config{
			Endpoint:        config.Endpoint,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
		})
	case WebDAV:
		return webdav.NewClient(&webdav.Config{
			Endpoint:   config.Endpoint,
			User:       config.User,
			Password:   config.Password,
			CustomPath: config.CustomPath,
		})
	}

	s3Config := &aws_s3.Config{
		Endpoint:        config.Endpoint,
		Region:          config.Region,
		BucketName:      config.BucketName,
		AccessKeyID:     config.AccessKeyID,
		AccessKeySecret: config.AccessKeySecret,
		CustomPath:      config.CustomPath,
	}
	switch config.Type {
	case R2:
		return aws_s3.NewR2Client(config.AccountID, s3Config)
	case MinIO:
		return aws_s3.NewMinIOClient(s3Config)
	default:
		return aws_s3.NewClient(s3Config)
	}
}
