package aws_s3

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/transfermanager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

type Config struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	CustomPath      string `yaml:"custom-path"`
}

// S3 S3 兼容存储（AWS S3 / Cloudflare R2 / MinIO）
type S3 struct {
	S3Client        *s3.Client
	TransferManager *transfermanager.Client
	Config          *Config
}

// NewClient 创建 AWS S3 存储实例
func NewClient(conf *Config) (*S3, error) {
	return newClient("aws_s3", conf, conf.Region, func(o *s3.Options) {
		if conf.Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.Endpoint)
		}
	})
}

// NewR2Client 创建 Cloudflare R2 存储实例
func NewR2Client(accountID string, conf *Config) (*S3, error) {
	if accountID == "" {
		return nil, errors.New("cloudflare_r2: account-id is required")
	}
	return newClient("cloudflare_r2", conf, "auto", func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID))
	})
}

// NewMinIOClient 创建 MinIO 存储实例，使用 path-style 寻址
func NewMinIOClient(conf *Config) (*S3, error) {
	if conf.Endpoint == "" {
		return nil, errors.New("minio: endpoint is required")
	}
	region := conf.Region
	if region == "" {
		region = "us-east-1"
	}
	return newClient("minio", conf, region, func(o *s3.Options) {
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String(conf.Endpoint)
	})
}

func newClient(name string, conf *Config, region string, optFn func(*s3.Options)) (*S3, error) {
	if conf.BucketName == "" {
		return nil, errors.New(name + ": bucket-name is required")
	}

	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(conf.AccessKeyID, conf.AccessKeySecret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}

	client := s3.NewFromConfig(cfg, optFn)

	return &S3{
		S3Client:        client,
		TransferManager: transfermanager.New(client),
		Config:          conf,
	}, nil
}
