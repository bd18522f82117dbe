package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
		warn bool
	}{
		{"debug", log.DebugLevel, false},
		{"warn", log.WarnLevel, false},
		{"", log.InfoLevel, false},
		{"loud", log.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(&buf, tt.in)
			if got := logger.GetLevel(); got != tt.want {
				t.Errorf("level = %v, want %v", got, tt.want)
			}
			if warned := strings.Contains(buf.String(), "unknown log level"); warned != tt.warn {
				t.Errorf("warned = %v, output %q", warned, buf.String())
			}
		})
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "sprout.log")
	logger, closer, err := OpenFile(path, "info")
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	logger.Info("store opened", "backend", "sqlite")
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "backend=sqlite") {
		t.Errorf("log file = %q", data)
	}
}
