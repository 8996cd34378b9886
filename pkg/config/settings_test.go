package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestLoadSettingsDefaults(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.SSHCommand != "ssh" || !slices.Equal(s.SSHArgs, []string{"-qT"}) || s.Editor != "vi" {
		t.Errorf("defaults = %+v", s)
	}
	if s.SSHKeepAlive != 30*time.Second {
		t.Errorf("default keepalive = %v", s.SSHKeepAlive)
	}
}

func TestLoadSettingsKeepAlive(t *testing.T) {
	tests := []struct {
		content string
		want    time.Duration
	}{
		{"editor: nano\n", 30 * time.Second},
		{"ssh_keepalive: 15s\n", 15 * time.Second},
		{"ssh_keepalive: -1s\n", 0},
	}
	for _, tt := range tests {
		path := filepath.Join(t.TempDir(), "nij.yaml")
		if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
			t.Fatal(err)
		}
		s, err := LoadSettings(path)
		if err != nil {
			t.Fatalf("LoadSettings(%q): %v", tt.content, err)
		}
		if s.SSHKeepAlive != tt.want {
			t.Errorf("%q: keepalive = %v, want %v", tt.content, s.SSHKeepAlive, tt.want)
		}
	}
}

func TestLoadSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nij.yaml")
	content := `editor: nano
ssh_args: ["-q", "-o", "BatchMode=yes"]
concurrency: 4
log_level: debug
max_edit_attempts: -1
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.Editor != "nano" || s.SSHCommand != "ssh" || s.Concurrency != 4 || s.LogLevel != "debug" {
		t.Errorf("settings = %+v", s)
	}
	if !slices.Equal(s.SSHArgs, []string{"-q", "-o", "BatchMode=yes"}) {
		t.Errorf("ssh args = %v", s.SSHArgs)
	}
	if s.MaxEditAttempts != 0 {
		t.Errorf("negative attempts should clamp to 0, got %d", s.MaxEditAttempts)
	}
}

func TestEditorCommandPrecedence(t *testing.T) {
	s := Settings{Editor: "nano"}

	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "")
	if got := s.EditorCommand(); got != "nano" {
		t.Errorf("settings editor: got %q", got)
	}
	t.Setenv("EDITOR", "emacs -nw")
	if got := s.EditorCommand(); got != "emacs -nw" {
		t.Errorf("EDITOR: got %q", got)
	}
	t.Setenv("VISUAL", "code --wait")
	if got := s.EditorCommand(); got != "code --wait" {
		t.Errorf("VISUAL: got %q", got)
	}
	if got := (Settings{}).EditorCommand(); got != "code --wait" {
		t.Errorf("empty settings with VISUAL: got %q", got)
	}
}

func TestDefaultRegistryPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NIJ_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", dir)
	if got := DefaultRegistryPath(); got != filepath.Join(dir, "nij.json") {
		t.Errorf("DefaultRegistryPath = %s", got)
	}
	t.Setenv("NIJ_CONFIG", "/tmp/custom.json")
	if got := DefaultRegistryPath(); got != "/tmp/custom.json" {
		t.Errorf("NIJ_CONFIG override: %s", got)
	}
}
