package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger 全局日志实例,输出到 stderr,避免污染 cat 等命令的标准输出
var Logger *slog.Logger
var LogLevel *slog.LevelVar

func init() {
	LogLevel = &slog.LevelVar{}
	Logger = newLogger(os.Stderr)
	LogLevel.Set(slog.LevelError) // 默认只输出 Error
}

func newLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: LogLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "time" {
				return slog.Attr{Key: "timestamp", Value: slog.TimeValue(a.Value.Time())}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// SetOutput 替换日志输出目标(测试中用于捕获日志)
func SetOutput(w io.Writer) {
	Logger = newLogger(w)
}

// SetLogLevel 按名称设置日志级别,无法识别的名称会被忽略并返回 false
func SetLogLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		LogLevel.Set(slog.LevelDebug)
	case "info":
		LogLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		LogLevel.Set(slog.LevelWarn)
	case "error":
		LogLevel.Set(slog.LevelError)
	default:
		return false
	}
	return true
}
