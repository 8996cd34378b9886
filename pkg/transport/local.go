package transport

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/wentf9/nij/pkg/location"
	"github.com/wentf9/nij/pkg/utils/file"
)

// Local 读写本机文件
type Local struct{}

func (Local) Read(ctx context.Context, loc location.Location) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(loc.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

func (Local) Write(ctx context.Context, loc location.Location, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return file.WriteFileKeepMode(loc.Path, data, 0o644)
}
