package fileurl

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// IsExist determines if the file or directory exists
// IsExist 判断文件或目录是否存在
func IsExist(dst string) bool {
	_, err := os.Stat(dst)
	if err != nil {
		return os.IsExist(err)
	}
	return true
}

// CreatePath creates the parent directory of dst
// CreatePath 创建 dst 的父目录
func CreatePath(dst string, perm os.FileMode) error {
	return os.MkdirAll(filepath.Dir(dst), perm)
}

// GetExePath gets path of current execution file
// GetExePath 获取当前执行文件的路径
func GetExePath() string {
	file, _ := exec.LookPath(os.Args[0])
	path, _ := filepath.Abs(file)
	index := strings.LastIndex(path, string(os.PathSeparator))
	if index < 0 {
		return path
	}
	return path[:index]
}

// PathSuffixCheckAdd checks path suffix, adds it if not exists
// PathSuffixCheckAdd 检查路径后缀，如果没有则添加
func PathSuffixCheckAdd(path string, suffix string) string {
	if !strings.HasSuffix(path, suffix) {
		path = path + suffix
	}
	return path
}

// ObjectKey prefixes key with customPath using "/" separators; an empty customPath returns key unchanged.
// ObjectKey 为对象键加上自定义路径前缀
func ObjectKey(customPath, key string) string {
	customPath = strings.Trim(customPath, "/")
	if customPath == "" {
		return key
	}
	return PathSuffixCheckAdd(customPath, "/") + strings.TrimPrefix(key, "/")
}
