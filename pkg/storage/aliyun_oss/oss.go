package aliyun_oss

import (
	"bytes"
	"context"

	"github.com/haierkeys/idea-inbox-service/pkg/fileurl"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"
)

type Config struct {
	Endpoint        string `yaml:"endpoint"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	CustomPath      string `yaml:"custom-path"`
}

// OSS 阿里云对象存储
type OSS struct {
	Client *oss.Client
	Bucket *oss.Bucket
	Config *Config
}

// NewClient 创建阿里云 OSS 存储实例
func NewClient(conf *Config) (*OSS, error) {
	if conf.Endpoint == "" || conf.BucketName == "" {
		return nil, errors.New("aliyun_oss: endpoint and bucket-name are required")
	}

	client, err := oss.New(conf.Endpoint, conf.AccessKeyID, conf.AccessKeySecret)
	if err != nil {
		return nil, errors.Wrap(err, "aliyun_oss")
	}
	bucket, err := client.Bucket(conf.BucketName)
	if err != nil {
		return nil, errors.Wrap(err, "aliyun_oss")
	}

	return &OSS{Client: client, Bucket: bucket, Config: conf}, nil
}

// SendContent 上传内容
func (p *OSS) SendContent(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	key = fileurl.ObjectKey(p.Config.CustomPath, key)

	options := []oss.Option{oss.WithContext(ctx)}
	if contentType != "" {
		options = append(options, oss.ContentType(contentType))
	}
	if err := p.Bucket.PutObject(key, bytes.NewReader(content), options...); err != nil {
		return "", errors.Wrap(err, "aliyun_oss")
	}
	return key, nil
}

func (p *OSS) Delete(ctx context.Context, key string) error {
	err := p.Bucket.DeleteObject(fileurl.ObjectKey(p.Config.CustomPath, key), oss.WithContext(ctx))
	return errors.Wrap(err, "aliyun_oss")
}
