package local_fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/haierkeys/idea-inbox-service/pkg/fileurl"

	"github.com/pkg/errors"
)

type Config struct {
	SavePath   string `yaml:"save-path" default:"storage/backups"`
	CustomPath string `yaml:"custom-path"`
}

type LocalFS struct {
	Config *Config
}

// NewClient 创建本地存储实例
func NewClient(conf *Config) (*LocalFS, error) {
	if conf.SavePath == "" {
		return nil, errors.New("local_fs: save-path is required")
	}
	return &LocalFS{Config: conf}, nil
}

func (p *LocalFS) path(key string) string {
	return filepath.Join(p.Config.SavePath, filepath.FromSlash(fileurl.ObjectKey(p.Config.CustomPath, key)))
}

// SendContent writes content atomically through a temp file.
func (p *LocalFS) SendContent(_ context.Context, key string, content []byte, _ string) (string, error) {
	dst := p.path(key)
	if err := fileurl.CreatePath(dst, 0754); err != nil {
		return "", errors.Wrap(err, "local_fs")
	}

	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, content, 0644); err != nil {
		return "", errors.Wrap(err, "local_fs")
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return "", errors.Wrap(err, "local_fs")
	}
	return fileurl.ObjectKey(p.Config.CustomPath, key), nil
}

func (p *LocalFS) Delete(_ context.Context, key string) error {
	dst := p.path(key)
	if fileurl.IsExist(dst) {
		return os.Remove(dst)
	}
	return nil
}
