package cmd

import (
	"os"

	"github.com/haierkeys/idea-inbox-service/pkg/fileurl"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultConfigPath where the embedded default config is written on first run
const DefaultConfigPath = "config/config.yaml"

// configCandidates lookup order when -c is not given
var configCandidates = []string{
	"config/config-dev.yaml",
	"config.yaml",
	DefaultConfigPath,
}

// resolveConfig returns the config path to load.
// An explicit path is returned as is; otherwise the first existing candidate,
// or DefaultConfigPath after writing the embedded default there.
// resolveConfig 查找配置文件，不存在时写出内置默认配置
func resolveConfig(explicit string) (string, error) {
	if len(explicit) > 0 {
		return explicit, nil
	}

	for _, p := range configCandidates {
		if fileurl.IsExist(p) {
			return p, nil
		}
	}

	bootstrapLogger.Warn("config file not found, creating default config")

	if err := fileurl.CreatePath(DefaultConfigPath, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "config file auto create")
	}
	if err := os.WriteFile(DefaultConfigPath, []byte(configDefault), 0644); err != nil {
		return "", errors.Wrap(err, "config file auto create writing")
	}

	bootstrapLogger.Info("config file auto create successfully", zap.String("path", DefaultConfigPath))
	return DefaultConfigPath, nil
}
