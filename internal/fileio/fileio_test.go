package fileio

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestResolvePath(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name     string
		jobName  string
		fileName string
		expected string
	}{
		{
			name:     "default name",
			jobName:  "test",
			expected: filepath.Join(dir, "bw-test-20240102T030405Z.txt"),
		},
		{
			name:     "default name without job",
			expected: filepath.Join(dir, "bw-output-20240102T030405Z.txt"),
		},
		{
			name:     "job name with separators",
			jobName:  "go test/all",
			expected: filepath.Join(dir, "bw-go_test_all-20240102T030405Z.txt"),
		},
		{
			name:     "relative",
			fileName: "out",
			expected: filepath.Join(dir, "out.txt"),
		},
		{
			name:     "relative with extension",
			fileName: filepath.Join("logs", "out.log"),
			expected: filepath.Join(dir, "logs", "out.log"),
		},
		{
			name:     "absolute",
			fileName: filepath.Join(dir, "elsewhere", "out"),
			expected: filepath.Join(dir, "elsewhere", "out.txt"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, err := resolvePath(dir, tt.jobName, tt.fileName, "20240102T030405Z")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if actual != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, actual)
			}
		})
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	first, err := save(dir, "test", filepath.Join("nested", "out"), []string{"a", "b"}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != filepath.Join(dir, "nested", "out.txt") {
		t.Errorf("unexpected path %q", first)
	}
	content, err := os.ReadFile(first)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "a\nb\n" {
		t.Errorf("expected %q, got %q", "a\nb\n", string(content))
	}

	second, err := save(dir, "test", filepath.Join("nested", "out"), []string{"c"}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second != filepath.Join(dir, "nested", "out_20240102T030405Z.txt") {
		t.Errorf("expected a timestamped path, got %q", second)
	}
	content, err = os.ReadFile(first)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "a\nb\n" {
		t.Errorf("first file overwritten: %q", string(content))
	}
}

func TestSaveCmd(t *testing.T) {
	dir := t.TempDir()
	msg, ok := SaveCmd(dir, "test", "", []string{"x"})().(SaveCompleteMsg)
	if !ok {
		t.Fatal("expected SaveCompleteMsg")
	}
	if msg.ErrMessage != "" {
		t.Fatalf("unexpected error: %s", msg.ErrMessage)
	}
	if filepath.Dir(msg.FullPath) != dir {
		t.Errorf("expected file in %s, got %s", dir, msg.FullPath)
	}
	if msg.SuccessMessage != "Saved to "+msg.FullPath {
		t.Errorf("unexpected message %q", msg.SuccessMessage)
	}
}
