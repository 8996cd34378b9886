// Package prompt 提供基于行的交互式问答
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInterrupted 表示输入在得到回答前结束(EOF、Ctrl-D 或 ctx 被取消)
var ErrInterrupted = errors.New("interrupted")

type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	// stuck 在读取被 ctx 打断后置为 true, 此时仍有协程阻塞在 in 上
	stuck bool
}

func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

type line struct {
	text string
	err  error
}

// readLine 读取一行, ctx 结束时立即返回 ErrInterrupted
// 读取在单独的协程中进行, 只在被询问时才读, 不会抢先消费编辑器的输入
func (p *Prompter) readLine(ctx context.Context) (string, error) {
	if p.stuck || ctx.Err() != nil {
		return "", ErrInterrupted
	}
	ch := make(chan line, 1)
	go func() {
		text, err := p.in.ReadString('\n')
		ch <- line{text, err}
	}()
	var l line
	select {
	case l = <-ch:
	case <-ctx.Done():
		p.stuck = true
		return "", ErrInterrupted
	}
	if l.err != nil {
		// 没有换行但读到了内容时也算一次回答
		if errors.Is(l.err, io.EOF) && l.text != "" {
			return strings.TrimSpace(l.text), nil
		}
		if errors.Is(l.err, io.EOF) {
			return "", ErrInterrupted
		}
		return "", l.err
	}
	return strings.TrimSpace(l.text), nil
}

// Ask 打印 "question: [def] ", 空回答返回 def
func (p *Prompter) Ask(ctx context.Context, question, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s: [%s] ", question, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", question)
	}
	answer, err := p.readLine(ctx)
	if err != nil {
		fmt.Fprintln(p.out)
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// YesNo 询问是否,直到回答以 y 或 n 开头或为空(返回 def)为止
func (p *Prompter) YesNo(ctx context.Context, question string, def bool) (bool, error) {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	for {
		fmt.Fprintf(p.out, "%s %s ", question, hint)
		answer, err := p.readLine(ctx)
		if err != nil {
			fmt.Fprintln(p.out)
			return false, err
		}
		switch {
		case answer == "":
			return def, nil
		case strings.HasPrefix(strings.ToLower(answer), "y"):
			return true, nil
		case strings.HasPrefix(strings.ToLower(answer), "n"):
			return false, nil
		}
	}
}
