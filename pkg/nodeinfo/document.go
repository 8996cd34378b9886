// Package nodeinfo 实现 node info 描述文档
//
// 文档是一个开放的 JSON 对象,内部保留原始字节,读取字段时按需解析,
// 修改字段时原地改写,因此键的顺序始终与读入时一致。
package nodeinfo

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
	"gopkg.in/yaml.v3"
)

// TimeLayout 与 JavaScript Date.toISOString 的格式一致
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// AutoUpdatedSuffix 附加在编辑缓冲区的 last_modified 之后,提示该字段保存时会被覆盖
const AutoUpdatedSuffix = " (auto-updated)"

// Indent 与原有 nodeinfo.json 文件的缩进保持一致
const Indent = "   "

var ErrParse = errors.New("invalid node info document")

// ParseError 表示编辑后的内容无法解析为文档
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string { return "invalid node info document: " + e.Reason }

func (e *ParseError) Unwrap() error { return ErrParse }

type Document struct {
	raw []byte
}

// New 创建一个空文档
func New() *Document {
	return &Document{raw: []byte("{}")}
}

// Parse 解析字节为文档,顶层必须是 JSON 对象
func Parse(data []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &ParseError{Reason: "empty input"}
	}
	if !gjson.ValidBytes(trimmed) {
		return nil, &ParseError{Reason: "not valid JSON"}
	}
	if !gjson.ParseBytes(trimmed).IsObject() {
		return nil, &ParseError{Reason: "top level value is not an object"}
	}
	return &Document{raw: bytes.Clone(trimmed)}, nil
}

// Bytes 返回文档的原始字节
func (d *Document) Bytes() []byte {
	return d.raw
}

// Pretty 返回缩进格式化后的文档,保持键的原始顺序
func (d *Document) Pretty() []byte {
	return pretty.PrettyOptions(d.raw, &pretty.Options{
		Width:    80,
		Indent:   Indent,
		SortKeys: false,
	})
}

// Clone 返回文档的独立副本
func (d *Document) Clone() *Document {
	return &Document{raw: bytes.Clone(d.raw)}
}

// Get 按 gjson 路径读取字段,例如 "contact.email"、"services.0.name"
func (d *Document) Get(path string) gjson.Result {
	return gjson.GetBytes(d.raw, path)
}

// String 读取字符串字段,不存在时返回空串
func (d *Document) String(path string) string {
	return d.Get(path).String()
}

// Has 判断字段是否存在
func (d *Document) Has(path string) bool {
	return d.Get(path).Exists()
}

// Field 读取任意顶层键,键名中的特殊字符会被转义
func (d *Document) Field(key string) gjson.Result {
	return d.Get(EscapeKey(key))
}

// Set 按路径写入字段,不存在的键追加到对象末尾
func (d *Document) Set(path string, value any) error {
	raw, err := sjson.SetBytes(d.raw, path, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	d.raw = raw
	return nil
}

// Delete 删除字段
func (d *Document) Delete(path string) error {
	raw, err := sjson.DeleteBytes(d.raw, path)
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	d.raw = raw
	return nil
}

func (d *Document) Hostname() string { return d.String("hostname") }
func (d *Document) IP() string       { return d.String("ip") }
func (d *Document) Key() string      { return d.String("key") }

func (d *Document) Contact() gjson.Result  { return d.Get("contact") }
func (d *Document) Location() gjson.Result { return d.Get("location") }
func (d *Document) Services() gjson.Result { return d.Get("services") }

// PGP 优先返回 contact.pgp,其次是顶层的 pgp
func (d *Document) PGP() gjson.Result {
	if r := d.Get("contact.pgp"); r.Exists() && truthy(r) {
		return r
	}
	return d.Get("pgp")
}

// LastModified 解析 last_modified 字段, 编辑缓冲区中的 (auto-updated) 后缀会被忽略
func (d *Document) LastModified() (time.Time, bool) {
	v := strings.TrimSuffix(d.String("last_modified"), AutoUpdatedSuffix)
	if v == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Touch 将 last_modified 刷新为 now,保证严格晚于原有值
func (d *Document) Touch(now time.Time) error {
	return d.TouchAfter(now, time.Time{})
}

// TouchAfter 与 Touch 相同, 但结果还要严格晚于 prev
// 编辑后的文档可能改坏了 last_modified, prev 应取自远端读到的原始文档
func (d *Document) TouchAfter(now, prev time.Time) error {
	floor := prev
	if own, ok := d.LastModified(); ok && own.After(floor) {
		floor = own
	}
	ts := now.UTC().Truncate(time.Millisecond)
	if !floor.IsZero() && !ts.After(floor) {
		ts = floor.UTC().Truncate(time.Millisecond).Add(time.Millisecond)
	}
	return d.Set("last_modified", ts.Format(TimeLayout))
}

// EditBuffer 返回写入编辑器临时文件的内容
func (d *Document) EditBuffer() []byte {
	c := d.Clone()
	if r := c.Get("last_modified"); r.Type == gjson.String && r.String() != "" {
		_ = c.Set("last_modified", r.String()+AutoUpdatedSuffix)
	}
	return c.Pretty()
}

// YAML 将文档转换为块风格的 YAML,键顺序不变
func (d *Document) YAML() ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(d.raw, &node); err != nil {
		return nil, err
	}
	resetStyle(&node)
	return yaml.Marshal(&node)
}

func resetStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		resetStyle(c)
	}
}

// EscapeKey 转义 gjson/sjson 路径中的特殊字符,使其作为单个键使用
func EscapeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		if strings.ContainsRune(`\.*?|#@!=<>%:"`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// truthy 按 JavaScript 的语义判断字段值是否为真
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null:
		return false
	case gjson.False:
		return false
	case gjson.String:
		return r.Str != ""
	case gjson.Number:
		return r.Num != 0
	case gjson.True:
		return true
	case gjson.JSON:
		return true
	}
	return false
}

// Truthy 导出给校验规则使用
func Truthy(r gjson.Result) bool {
	return r.Exists() && truthy(r)
}
