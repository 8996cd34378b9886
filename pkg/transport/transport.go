// Package transport 按位置的 scheme 读写 node info 文件
package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/wentf9/nij/pkg/location"
)

var (
	ErrNotFound          = errors.New("file not found")
	ErrUnsupportedScheme = errors.New("unsupported location scheme")
)

// Transport 读取和写入完整的文件内容
type Transport interface {
	Read(ctx context.Context, loc location.Location) ([]byte, error)
	Write(ctx context.Context, loc location.Location, data []byte) error
}

// Error 记录失败的操作和位置
type Error struct {
	Op       string
	Location location.Location
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Location, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(op string, loc location.Location, err error) error {
	if err == nil {
		return nil
	}
	var te *Error
	if errors.As(err, &te) {
		return err
	}
	return &Error{Op: op, Location: loc, Err: err}
}

// Mux 根据 scheme 选择后端
type Mux struct {
	backends map[string]Transport
}

func NewMux() *Mux {
	return &Mux{backends: make(map[string]Transport)}
}

// Register 为一个或多个 scheme 注册后端, 本地文件的 scheme 为空串
func (m *Mux) Register(t Transport, schemes ...string) {
	for _, s := range schemes {
		m.backends[s] = t
	}
}

func (m *Mux) backend(loc location.Location) (Transport, error) {
	t, ok := m.backends[loc.Scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, loc.Scheme)
	}
	return t, nil
}

func (m *Mux) Read(ctx context.Context, loc location.Location) ([]byte, error) {
	t, err := m.backend(loc)
	if err != nil {
		return nil, wrap("read", loc, err)
	}
	data, err := t.Read(ctx, loc)
	return data, wrap("read", loc, err)
}

func (m *Mux) Write(ctx context.Context, loc location.Location, data []byte) error {
	t, err := m.backend(loc)
	if err != nil {
		return wrap("write", loc, err)
	}
	return wrap("write", loc, t.Write(ctx, loc, data))
}
