// Package location 解析和格式化 node info 文件的位置描述符
//
// 位置字符串语法: [scheme://][user@]host[:port]/path
// 没有 scheme 时表示本地文件路径。
package location

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	SchemeLocal = ""
	SchemeFile  = "file"
	SchemeSCP   = "scp"  // 通过 ssh 命令在远端执行 cat 读写
	SchemeSSH   = "ssh"  // SchemeSCP 的别名
	SchemeSFTP  = "sftp" // 通过原生 ssh 连接的 sftp 子系统读写
)

var (
	ErrEmpty       = errors.New("empty location")
	ErrMissingHost = errors.New("remote location requires a host")
	ErrMissingPath = errors.New("location requires a path")
)

// Location 描述一个 node info 文件所在的位置
type Location struct {
	Scheme string
	User   string
	Host   string
	Port   uint16
	Path   string
}

// Parse 解析位置字符串
func Parse(s string) (Location, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Location{}, ErrEmpty
	}
	if !strings.Contains(s, "://") {
		return Location{Scheme: SchemeLocal, Path: s}, nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return Location{}, fmt.Errorf("parse location %q: %w", s, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme == SchemeFile {
		loc := Location{Scheme: SchemeLocal, Path: u.Path}
		return loc, loc.Validate()
	}

	loc := Location{
		Scheme: scheme,
		Host:   u.Hostname(),
		// 与 scp 的习惯一致: 去掉第一个 '/' 后是相对远端 home 的路径, '//abs' 表示绝对路径
		Path: strings.TrimPrefix(u.Path, "/"),
	}
	if u.User != nil {
		loc.User = u.User.Username()
	}
	if p := u.Port(); p != "" {
		port, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return Location{}, fmt.Errorf("parse location %q: invalid port %q", s, p)
		}
		loc.Port = uint16(port)
	}
	if err := loc.Validate(); err != nil {
		return Location{}, fmt.Errorf("parse location %q: %w", s, err)
	}
	return loc, nil
}

// MustParse 用于测试和常量初始化
func MustParse(s string) Location {
	loc, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return loc
}

// IsLocal 判断是否为本地文件
func (l Location) IsLocal() bool {
	return l.Scheme == SchemeLocal
}

// Validate 检查不变式: 本地位置不能带 host/user, 远程位置必须有 host 和 path
func (l Location) Validate() error {
	if l.IsLocal() {
		if l.Host != "" || l.User != "" || l.Port != 0 {
			return errors.New("local location cannot carry host, user or port")
		}
		if l.Path == "" {
			return ErrMissingPath
		}
		return nil
	}
	if l.Host == "" {
		return ErrMissingHost
	}
	if l.Path == "" {
		return ErrMissingPath
	}
	return nil
}

// Target 返回 ssh 命令使用的 [user@]host
func (l Location) Target() string {
	if l.User != "" {
		return l.User + "@" + l.Host
	}
	return l.Host
}

func (l Location) String() string {
	if l.IsLocal() {
		return l.Path
	}
	var b strings.Builder
	b.WriteString(l.Scheme)
	b.WriteString("://")
	if l.User != "" {
		b.WriteString(url.User(l.User).String())
		b.WriteByte('@')
	}
	if strings.Contains(l.Host, ":") {
		b.WriteString("[" + l.Host + "]")
	} else {
		b.WriteString(l.Host)
	}
	if l.Port != 0 {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(int(l.Port)))
	}
	b.WriteByte('/')
	b.WriteString(escapePath(l.Path))
	return b.String()
}

// escapePath 逐段转义, 保留 '/' 分隔符, 使 '%' '?' '#' 等字符能被 Parse 还原
func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.Join(segs, "/")
}
