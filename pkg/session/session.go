// Package session 实现基于外部编辑器的 node info 编辑流程
//
// 一批会话共享一次编辑器调用。编辑器退出后逐个比较临时文件:
// 内容未变或为空的会话结束, 无法解析的会话可以重新编辑, 解析成功的会话
// 在全部编辑结束后校验、刷新 last_modified 并写回。
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/wentf9/nij/pkg/location"
	"github.com/wentf9/nij/pkg/logger"
	"github.com/wentf9/nij/pkg/nodeinfo"
	"github.com/wentf9/nij/pkg/prompt"
	"github.com/wentf9/nij/pkg/transport"
	"github.com/wentf9/nij/pkg/validator"
)

var ErrTooManyAttempts = errors.New("too many edit attempts")

// Session 是单个远程的编辑状态
type Session struct {
	Remote   string
	Location location.Location
	Original *nodeinfo.Document // 远程文件不存在时为 nil
	TempPath string
	State    State
	Doc      *nodeinfo.Document // 解析成功后的文档
	Err      error

	baseline []byte // 写入临时文件的内容, 用于判断是否修改
}

func New(remote string, loc location.Location, original *nodeinfo.Document) *Session {
	return &Session{Remote: remote, Location: loc, Original: original, State: Created}
}

// FetchDocument 读取并解析文档, 文件不存在或为空时返回 nil
func FetchDocument(ctx context.Context, t transport.Transport, loc location.Location) (*nodeinfo.Document, error) {
	data, err := t.Read(ctx, loc)
	if errors.Is(err, transport.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return nodeinfo.Parse(data)
}

// Fetch 读取远程文档并创建会话, 文件不存在时文档为空
func Fetch(ctx context.Context, t transport.Transport, remote string, loc location.Location) (*Session, error) {
	doc, err := FetchDocument(ctx, t, loc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", remote, err)
	}
	return New(remote, loc, doc), nil
}

// Prompter 询问是否重新编辑, ctx 结束时应返回 prompt.ErrInterrupted
type Prompter interface {
	YesNo(ctx context.Context, question string, def bool) (bool, error)
}

// Batch 驱动一组会话完成编辑
type Batch struct {
	Editor    Editor
	Prompter  Prompter
	Transport transport.Transport
	Validator *validator.Validator
	Out       io.Writer // 校验警告
	ErrOut    io.Writer // JSON 错误提示
	TempDir   string
	// MaxAttempts 限制编辑器调用轮数, 0 表示只由用户决定何时放弃
	MaxAttempts int
	Now         func() time.Time
}

// Run 执行编辑流程, 返回时所有会话都处于终止状态, 临时文件已删除
// 重新编辑的询问被中断时返回 prompt.ErrInterrupted, 此时不写入任何文件;
// 编辑器失败时返回 ErrEditorFailed
func (b *Batch) Run(ctx context.Context, sessions []*Session) error {
	defer b.cleanup(sessions)

	var pending []*Session
	for _, s := range sessions {
		if err := b.materialize(s); err != nil {
			s.fail(err)
			continue
		}
		pending = append(pending, s)
	}

	editErr := b.editLoop(ctx, pending)
	if editErr != nil {
		if errors.Is(editErr, prompt.ErrInterrupted) {
			for _, s := range sessions {
				if !s.State.Terminal() {
					s.State = Abandoned
					s.Err = editErr
				}
			}
			return editErr
		}
		// 编辑器失败只影响本轮待编辑的会话, 之前轮次已解析的会话照常保存
		logger.Logger.Warn("editor failed", "error", editErr)
	}

	for _, s := range sessions {
		if s.State == Parsed {
			b.save(ctx, s)
		}
	}
	return editErr
}

func (b *Batch) editLoop(ctx context.Context, pending []*Session) error {
	for attempt := 1; len(pending) > 0; attempt++ {
		paths := make([]string, len(pending))
		for i, s := range pending {
			s.State = EditorRunning
			paths[i] = s.TempPath
		}
		if err := b.Editor.Edit(ctx, paths); err != nil {
			for _, s := range pending {
				s.fail(err)
			}
			return err
		}

		var invalid []*Session
		for _, s := range pending {
			b.collect(s)
			if s.State == ParseFailed {
				invalid = append(invalid, s)
			}
		}
		if len(invalid) == 0 {
			return nil
		}

		if len(invalid) == 1 {
			fmt.Fprintln(b.ErrOut, "Data is not valid JSON.")
		} else {
			names := make([]string, len(invalid))
			for i, s := range invalid {
				names[i] = s.Remote
			}
			fmt.Fprintln(b.ErrOut, "Invalid JSON in:", strings.Join(names, ", "))
		}

		if b.MaxAttempts > 0 && attempt >= b.MaxAttempts {
			abandon(invalid, ErrTooManyAttempts)
			return nil
		}
		again, err := b.Prompter.YesNo(ctx, "Re-edit?", true)
		if err != nil {
			return err
		}
		if !again {
			abandon(invalid, nil)
			return nil
		}
		pending = invalid
	}
	return nil
}

func (b *Batch) materialize(s *Session) error {
	name := strings.ReplaceAll(s.Remote, "/", "-")
	f, err := os.CreateTemp(b.TempDir, "nodeinfo-"+name+"-*.json")
	if err != nil {
		return err
	}
	s.TempPath = f.Name()
	if s.Original != nil {
		s.baseline = s.Original.EditBuffer()
	}
	if _, err := f.Write(s.baseline); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	s.State = Materialized
	return nil
}

// collect 读取编辑后的临时文件并判定会话状态
func (b *Batch) collect(s *Session) {
	data, err := os.ReadFile(s.TempPath)
	if err != nil {
		s.fail(err)
		return
	}
	if bytes.Equal(data, s.baseline) || len(bytes.TrimSpace(data)) == 0 {
		s.State = Unchanged
		s.Doc = nil
		return
	}
	doc, err := nodeinfo.Parse(data)
	if err != nil {
		s.State = ParseFailed
		s.Err = err
		return
	}
	s.State = Parsed
	s.Doc = doc
	s.Err = nil
}

func (b *Batch) save(ctx context.Context, s *Session) {
	v := b.Validator
	if v == nil {
		v = validator.Default()
	}
	for _, w := range v.Check(s.Doc) {
		fmt.Fprintf(b.Out, "%s: %s\n", s.Remote, w)
	}
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	var prev time.Time
	if s.Original != nil {
		prev, _ = s.Original.LastModified()
	}
	if err := s.Doc.TouchAfter(now(), prev); err != nil {
		s.fail(err)
		return
	}
	if err := b.Transport.Write(ctx, s.Location, s.Doc.Pretty()); err != nil {
		s.fail(err)
		return
	}
	logger.Logger.Info("saved node info", "remote", s.Remote, "location", s.Location.String())
	s.State = Saved
}

func (b *Batch) cleanup(sessions []*Session) {
	for _, s := range sessions {
		if s.TempPath == "" {
			continue
		}
		if err := os.Remove(s.TempPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Logger.Warn("remove temp file", "path", s.TempPath, "error", err)
		}
	}
}

func (s *Session) fail(err error) {
	s.State = Failed
	s.Err = err
}

func abandon(sessions []*Session, err error) {
	for _, s := range sessions {
		s.State = Abandoned
		if err != nil {
			s.Err = err
		}
	}
}

// Summary 按状态统计会话
func Summary(sessions []*Session) map[State]int {
	counts := make(map[State]int)
	for _, s := range sessions {
		counts[s.State]++
	}
	return counts
}
