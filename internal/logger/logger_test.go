package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func fileLogger(t *testing.T, lvl string) string {
	t.Helper()
	logFile := filepath.Join(t.TempDir(), "footsteps.log")

	cfg := FileConfig{
		Path:       logFile,
		MaxSizeMB:  10,
		MaxBackups: 1,
		MaxAgeDays: 1,
		Compress:   false,
	}
	if err := InitWithFileConfig(lvl, cfg, false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	t.Cleanup(InitNop)
	return logFile
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	Sync()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	return string(content)
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{
			level:    "error",
			expected: []string{"ERROR"},
			excluded: []string{"WARN", "INFO", "DEBUG"},
		},
		{
			level:    "warn",
			expected: []string{"ERROR", "WARN"},
			excluded: []string{"INFO", "DEBUG"},
		},
		{
			level:    "info",
			expected: []string{"ERROR", "WARN", "INFO"},
			excluded: []string{"DEBUG"},
		},
		{
			level:    "debug",
			expected: []string{"ERROR", "WARN", "INFO", "DEBUG"},
			excluded: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logFile := fileLogger(t, tt.level)

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")

			logContent := readLog(t, logFile)

			for _, exp := range tt.expected {
				if !strings.Contains(logContent, exp) {
					t.Errorf("expected %s in log output", exp)
				}
			}
			for _, exc := range tt.excluded {
				if strings.Contains(logContent, exc) {
					t.Errorf("unexpected %s in log output for level %s", exc, tt.level)
				}
			}
		})
	}
}

func TestSetLevel(t *testing.T) {
	logFile := fileLogger(t, "error")

	Info("hidden footstep")
	SetLevel("info")
	Info("visible footstep")

	content := readLog(t, logFile)
	if strings.Contains(content, "hidden footstep") {
		t.Error("info line logged before SetLevel")
	}
	if !strings.Contains(content, "visible footstep") {
		t.Error("info line missing after SetLevel")
	}
}

func TestNamedAndFields(t *testing.T) {
	logFile := fileLogger(t, "debug")

	Named("footstep").Info("spawned", zap.String("surface", "PM_Concrete"))

	content := readLog(t, logFile)
	for _, want := range []string{"footstep", "spawned", "PM_Concrete"} {
		if !strings.Contains(content, want) {
			t.Errorf("expected %q in log output, got %q", want, content)
		}
	}
}

func TestNopByDefault(t *testing.T) {
	InitNop()
	// Must not panic without Init.
	Debug("debug")
	Warn("warn")
	Named("quiet").Error("error")
	Sync()
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/footsteps.log")

	if cfg.Path != "/tmp/footsteps.log" {
		t.Errorf("expected path /tmp/footsteps.log, got %s", cfg.Path)
	}
	if cfg.MaxSizeMB != 20 {
		t.Errorf("expected MaxSizeMB 20, got %d", cfg.MaxSizeMB)
	}
	if cfg.MaxBackups != 3 {
		t.Errorf("expected MaxBackups 3, got %d", cfg.MaxBackups)
	}
	if cfg.MaxAgeDays != 7 {
		t.Errorf("expected MaxAgeDays 7, got %d", cfg.MaxAgeDays)
	}
	if !cfg.Compress {
		t.Error("expected Compress to be true")
	}
}
