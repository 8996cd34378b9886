package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/wentf9/nij/pkg/config"
	"github.com/wentf9/nij/pkg/executor"
	"github.com/wentf9/nij/pkg/location"
)

type recordingTransport struct {
	name  string
	reads []string
	data  []byte
	err   error
}

func (r *recordingTransport) Read(ctx context.Context, loc location.Location) ([]byte, error) {
	r.reads = append(r.reads, loc.String())
	return r.data, r.err
}

func (r *recordingTransport) Write(ctx context.Context, loc location.Location, data []byte) error {
	r.data = data
	return r.err
}

func TestMuxRouting(t *testing.T) {
	local := &recordingTransport{name: "local"}
	remote := &recordingTransport{name: "remote"}
	m := NewMux()
	m.Register(local, location.SchemeLocal)
	m.Register(remote, location.SchemeSCP, location.SchemeSSH)
	ctx := context.Background()

	for _, raw := range []string{"/etc/nodeinfo.json", "scp://h/a.json", "ssh://u@h:22/b.json"} {
		if _, err := m.Read(ctx, location.MustParse(raw)); err != nil {
			t.Fatalf("Read(%s): %v", raw, err)
		}
	}
	if len(local.reads) != 1 || local.reads[0] != "/etc/nodeinfo.json" {
		t.Errorf("local reads = %v", local.reads)
	}
	if len(remote.reads) != 2 {
		t.Errorf("remote reads = %v", remote.reads)
	}

	_, err := m.Read(ctx, location.MustParse("sftp://h/c.json"))
	if !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("unregistered scheme: err = %v", err)
	}
}

func TestMuxWrapsErrors(t *testing.T) {
	m := NewMux()
	m.Register(&recordingTransport{err: ErrNotFound}, location.SchemeSCP)
	loc := location.MustParse("scp://host/x.json")

	_, err := m.Read(context.Background(), loc)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	var te *Error
	if !errors.As(err, &te) || te.Op != "read" || te.Location != loc {
		t.Errorf("err = %#v, want *Error{Op: read}", err)
	}
}

func TestLocal(t *testing.T) {
	ctx := context.Background()
	loc := location.MustParse(filepath.Join(t.TempDir(), "info.json"))

	if _, err := (Local{}).Read(ctx, loc); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Read missing: err = %v", err)
	}
	if err := (Local{}).Write(ctx, loc, []byte("{}\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := (Local{}).Read(ctx, loc)
	if err != nil || string(data) != "{}\n" {
		t.Errorf("Read = %q, %v", data, err)
	}
}

func TestShellRead(t *testing.T) {
	mock := executor.NewMockExecutor()
	var stderr bytes.Buffer
	sh := &Shell{Exec: mock, Command: "ssh", Args: []string{"-qT"}, Stderr: &stderr}
	ctx := context.Background()

	mock.Set("ssh -qT -- root@node1 "+ReadCommand("nodeinfo.json"), executor.MockResult{
		Stdout: `{"hostname":"node1"}`,
		Stderr: "Warning: Permanently added\n",
	})
	data, err := sh.Read(ctx, location.MustParse("scp://root@node1/nodeinfo.json"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != `{"hostname":"node1"}` {
		t.Errorf("Read = %s", data)
	}
	// 成功的读取也要展示远端的错误输出, 与日志级别无关
	if got := stderr.String(); got != "scp://root@node1/nodeinfo.json: Warning: Permanently added\n" {
		t.Errorf("stderr = %q", got)
	}

	mock.Set("ssh -qT -p 2222 -- node2 "+ReadCommand("my info.json"), executor.MockResult{ExitCode: 44})
	_, err = sh.Read(ctx, location.MustParse("scp://node2:2222/my%20info.json"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing remote file: err = %v", err)
	}

	mock.Set("ssh -qT -- node3 "+ReadCommand("x.json"), executor.MockResult{ExitCode: 255, Stderr: "connection refused"})
	_, err = sh.Read(ctx, location.MustParse("scp://node3/x.json"))
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("ssh failure: err = %v", err)
	}
}

func TestShellWrite(t *testing.T) {
	mock := executor.NewMockExecutor()
	var stderr bytes.Buffer
	sh := &Shell{Exec: mock, Stderr: &stderr}
	var got []byte
	mock.Set("ssh -- node1 cat > /etc/nodeinfo.json", executor.MockResult{
		Func: func(cmd executor.Command) (executor.Result, error) {
			got = cmd.Stdin
			return executor.Result{Stderr: []byte("warning: disk almost full\nquota 95%\n")}, nil
		},
	})
	err := sh.Write(context.Background(), location.MustParse("scp://node1//etc/nodeinfo.json"), []byte("{}"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if string(got) != "{}" {
		t.Errorf("stdin = %q", got)
	}
	want := "scp://node1//etc/nodeinfo.json: warning: disk almost full\nscp://node1//etc/nodeinfo.json: quota 95%\n"
	if stderr.String() != want {
		t.Errorf("stderr = %q, want %q", stderr.String(), want)
	}
}

func TestShellTargetAfterDoubleDash(t *testing.T) {
	mock := executor.NewMockExecutor()
	sh := &Shell{Exec: mock, Stderr: io.Discard}
	mock.Set("ssh -- -oProxyCommand=x "+ReadCommand("a.json"), executor.MockResult{Stdout: "{}"})
	if _, err := sh.Read(context.Background(), location.Location{Scheme: location.SchemeSCP, Host: "-oProxyCommand=x", Path: "a.json"}); err != nil {
		t.Fatalf("Read: %v", err)
	}
	calls := mock.Calls()
	if len(calls) != 1 || calls[0].Args[0] != "--" {
		t.Fatalf("calls = %+v", calls)
	}
}

func TestCommandQuoting(t *testing.T) {
	if got := ReadCommand("nodeinfo.json"); got != "[ -e nodeinfo.json ] || exit 44; cat -- nodeinfo.json" {
		t.Errorf("ReadCommand = %s", got)
	}
	if got := WriteCommand("a b;rm -rf x"); got != "cat > 'a b;rm -rf x'" {
		t.Errorf("WriteCommand = %s", got)
	}
}

func TestNewDefault(t *testing.T) {
	m := NewDefault(executor.NewMockExecutor(), config.DefaultSettings(), nil)
	for _, scheme := range []string{location.SchemeLocal, location.SchemeSCP, location.SchemeSSH} {
		if _, ok := m.backends[scheme]; !ok {
			t.Errorf("scheme %q not registered", scheme)
		}
	}
	if _, ok := m.backends[location.SchemeSFTP]; ok {
		t.Error("sftp registered without connector")
	}
}
