package file

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// WriteFileKeepMode 写入文件,已存在时保留原有权限,否则使用 perm 并创建缺失的父目录
func WriteFileKeepMode(filePath string, content []byte, perm os.FileMode) error {
	if info, err := os.Stat(filePath); err == nil {
		perm = info.Mode().Perm()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
