package webdav

import (
	"context"
	"os"

	"github.com/haierkeys/idea-inbox-service/pkg/fileurl"

	"github.com/pkg/errors"
	"github.com/studio-b12/gowebdav"
)

// Config 结构体用于存储 WebDAV 连接信息。
type Config struct {
	Endpoint   string `yaml:"endpoint"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	CustomPath string `yaml:"custom-path"`
}

// WebDAV 结构体表示 WebDAV 客户端。
type WebDAV struct {
	Client *gowebdav.Client
	Config *Config
}

// NewClient 创建一个新的 WebDAV 客户端实例，不会立即连接服务器。
func NewClient(conf *Config) (*WebDAV, error) {
	if conf.Endpoint == "" {
		return nil, errors.New("webdav: endpoint is required")
	}
	return &WebDAV{
		Client: gowebdav.NewClient(conf.Endpoint, conf.User, conf.Password),
		Config: conf,
	}, nil
}

// SendContent 将内容上传到 WebDAV 服务器，父目录不存在时自动创建。
func (w *WebDAV) SendContent(_ context.Context, key string, content []byte, _ string) (string, error) {
	key = fileurl.ObjectKey(w.Config.CustomPath, key)
	if err := w.Client.Write(key, content, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "webdav")
	}
	return key, nil
}

// Delete 从 WebDAV 服务器删除文件。
func (w *WebDAV) Delete(_ context.Context, key string) error {
	err := w.Client.Remove(fileurl.ObjectKey(w.Config.CustomPath, key))
	return errors.Wrap(err, "webdav")
}
