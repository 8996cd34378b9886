package prompt

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestYesNo(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		def     bool
		want    bool
		wantErr error
		asked   int
	}{
		{"default yes", "\n", true, true, nil, 1},
		{"default no", "\n", false, false, nil, 1},
		{"explicit no", "n\n", true, false, nil, 1},
		{"upper yes", "YES\n", false, true, nil, 1},
		{"prefix", "nope\n", true, false, nil, 1},
		{"retry on garbage", "maybe\nwhat\ny\n", false, true, nil, 3},
		{"no trailing newline", "n", true, false, nil, 1},
		{"eof", "", true, false, ErrInterrupted, 1},
		{"eof after garbage", "maybe\n", true, false, ErrInterrupted, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			p := New(strings.NewReader(tt.input), &out)
			got, err := p.YesNo(context.Background(), "Re-edit?", tt.def)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if n := strings.Count(out.String(), "Re-edit?"); n != tt.asked {
				t.Errorf("asked %d times, want %d; output %q", n, tt.asked, out.String())
			}
		})
	}
}

func TestAsk(t *testing.T) {
	ctx := context.Background()
	var out strings.Builder
	p := New(strings.NewReader("\n  bob  \n"), &out)

	got, err := p.Ask(ctx, "Name", "alice")
	if err != nil || got != "alice" {
		t.Errorf("Ask default = %q, %v", got, err)
	}
	got, err = p.Ask(ctx, "Email", "")
	if err != nil || got != "bob" {
		t.Errorf("Ask = %q, %v", got, err)
	}
	if _, err := p.Ask(ctx, "More", "x"); !errors.Is(err, ErrInterrupted) {
		t.Errorf("Ask at EOF: err = %v", err)
	}
	if !strings.HasPrefix(out.String(), "Name: [alice] Email: ") {
		t.Errorf("output = %q", out.String())
	}
}

func TestCancelWhileWaiting(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	var out strings.Builder
	p := New(r, &out)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := p.YesNo(ctx, "Re-edit?", true)
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, ErrInterrupted) {
			t.Fatalf("err = %v, want ErrInterrupted", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("YesNo still blocked after cancel")
	}
	// 之后的询问不再读取输入
	if _, err := p.Ask(context.Background(), "Name", ""); !errors.Is(err, ErrInterrupted) {
		t.Fatalf("Ask after cancel: err = %v", err)
	}
}

func TestCancelledBeforeAsking(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := New(strings.NewReader("y\n"), io.Discard)
	if _, err := p.YesNo(ctx, "Is this ok?", true); !errors.Is(err, ErrInterrupted) {
		t.Fatalf("err = %v, want ErrInterrupted", err)
	}
}
