package sftp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/pkg/sftp"
)

const (
	tmpSuffix    = ".nij-tmp"
	backupSuffix = ".nij-old"
)

// ReadFile 读取远程文件的全部内容, 文件不存在时返回的错误满足 errors.Is(err, fs.ErrNotExist)
func (c *Client) ReadFile(ctx context.Context, remotePath string) ([]byte, error) {
	f, err := c.sftpClient.Open(remotePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := copyWithContext(ctx, &buf, f); err != nil {
		return nil, fmt.Errorf("read %s: %w", remotePath, err)
	}
	return buf.Bytes(), nil
}

// WriteFile 先写入同目录下的临时文件再 rename 覆盖目标,保留目标原有权限
func (c *Client) WriteFile(ctx context.Context, remotePath string, data []byte) error {
	mode := os.FileMode(0o644)
	exists := false
	if info, err := c.sftpClient.Stat(remotePath); err == nil {
		mode = info.Mode().Perm()
		exists = true
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", remotePath, err)
	}

	tmp := path.Join(path.Dir(remotePath), "."+path.Base(remotePath)+tmpSuffix)
	f, err := c.sftpClient.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	if _, err := copyWithContext(ctx, f, bytes.NewReader(data)); err != nil {
		f.Close()
		c.sftpClient.Remove(tmp)
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		c.sftpClient.Remove(tmp)
		return err
	}
	if err := c.sftpClient.Chmod(tmp, mode); err != nil {
		c.sftpClient.Remove(tmp)
		return fmt.Errorf("chmod %s: %w", tmp, err)
	}
	return replaceFile(c.sftpClient, tmp, remotePath, exists)
}

// renamer 是 replaceFile 用到的 sftp.Client 方法
type renamer interface {
	PosixRename(oldname, newname string) error
	Rename(oldname, newname string) error
	Remove(path string) error
}

// replaceFile 用 tmp 覆盖 target, 失败时 target 保持原有内容
func replaceFile(r renamer, tmp, target string, exists bool) error {
	err := r.PosixRename(tmp, target)
	if err == nil {
		return nil
	}
	var status *sftp.StatusError
	if !errors.As(err, &status) || status.FxCode() != sftp.ErrSSHFxOpUnsupported {
		r.Remove(tmp)
		return fmt.Errorf("rename %s: %w", target, err)
	}

	// 服务端不支持 posix-rename, 普通 rename 不能覆盖目标: 先把旧文件移开, 失败时移回
	backup := ""
	if exists {
		backup = path.Join(path.Dir(target), "."+path.Base(target)+backupSuffix)
		if err := r.Rename(target, backup); err != nil {
			r.Remove(tmp)
			return fmt.Errorf("move aside %s: %w", target, err)
		}
	}
	if err := r.Rename(tmp, target); err != nil {
		if backup != "" {
			if rerr := r.Rename(backup, target); rerr != nil {
				return fmt.Errorf("rename %s: %w; original left at %s, new content at %s", target, err, backup, tmp)
			}
		}
		r.Remove(tmp)
		return fmt.Errorf("rename %s: %w", target, err)
	}
	if backup != "" {
		r.Remove(backup)
	}
	return nil
}

// copyWithContext 按块复制, 每块之间检查取消
func copyWithContext(ctx context.Context, w io.Writer, r io.Reader) (int64, error) {
	buf := make([]byte, 32*1024)
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return total, werr
			}
			total += int64(n)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}
