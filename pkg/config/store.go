package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

type Store interface {
	Load() (*Registry, error)
	Save(reg *Registry) error
}

type defaultStore struct {
	Path string
}

func NewDefaultStore(path string) Store {
	return &defaultStore{Path: path}
}

// Load 读取注册表,文件不存在时返回空注册表
func (s *defaultStore) Load() (*Registry, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewRegistry(), nil
	}
	if err != nil {
		return nil, err
	}
	return decodeRegistry(data)
}

// Save 整体重写注册表文件,通过临时文件 + rename 保证原子性
func (s *defaultStore) Save(reg *Registry) error {
	data, err := encodeRegistry(reg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}
	return renameio.WriteFile(s.Path, data, 0o644)
}

func decodeRegistry(data []byte) (*Registry, error) {
	reg := NewRegistry()
	if len(bytes.TrimSpace(data)) == 0 {
		return reg, nil
	}
	if !gjson.ValidBytes(data) {
		return nil, errors.New("registry file is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, errors.New("registry file must contain a JSON object")
	}
	reg.raw = bytes.Clone(data)
	var decodeErr error
	// ForEach 按文件中的顺序遍历,保留插入顺序
	root.Get("infos").ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if _, dup := reg.index[name]; dup {
			return true
		}
		path := value.Get("path")
		if path.Type != gjson.String {
			decodeErr = fmt.Errorf("remote %s: missing path", name)
			return false
		}
		reg.append(name, path.String())
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return reg, nil
}

func encodeRegistry(reg *Registry) ([]byte, error) {
	var infos bytes.Buffer
	infos.WriteByte('{')
	for i, e := range reg.List() {
		if i > 0 {
			infos.WriteByte(',')
		}
		name, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		entry, err := json.Marshal(e)
		if err != nil {
			return nil, err
		}
		infos.Write(name)
		infos.WriteByte(':')
		infos.Write(entry)
	}
	infos.WriteByte('}')

	base := reg.raw
	if len(base) == 0 {
		base = []byte("{}")
	}
	out, err := sjson.SetRawBytes(bytes.Clone(base), "infos", infos.Bytes())
	if err != nil {
		return nil, fmt.Errorf("encode registry: %w", err)
	}
	return pretty.PrettyOptions(out, &pretty.Options{Width: 80, Indent: "   "}), nil
}
