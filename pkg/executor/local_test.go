package executor

import (
	"context"
	"os/exec"
	"testing"
)

func TestLocalExecutorRun(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	e := NewLocalExecutor()
	res, err := e.Run(context.Background(), Command{
		Name:  "sh",
		Args:  []string{"-c", "cat; echo oops >&2; exit 3"},
		Stdin: []byte("hello"),
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if string(res.Stdout) != "hello" {
		t.Fatalf("stdout = %q, want %q", res.Stdout, "hello")
	}
	if string(res.Stderr) != "oops\n" {
		t.Fatalf("stderr = %q", res.Stderr)
	}
	if res.ExitCode != 3 {
		t.Fatalf("exit code = %d, want 3", res.ExitCode)
	}
}

func TestLocalExecutorRunMissingBinary(t *testing.T) {
	e := NewLocalExecutor()
	if _, err := e.Run(context.Background(), Command{Name: "definitely-not-a-real-binary-nij"}); err == nil {
		t.Fatal("expected error for missing binary")
	}
}
