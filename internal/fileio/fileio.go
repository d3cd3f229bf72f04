package fileio

import (
	"errors"
	"fmt"
	tea "github.com/charmbracelet/bubbletea"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"
)

const timestampFormat = "20060102T150405Z"

type SaveCompleteMsg struct {
	FullPath, SuccessMessage, ErrMessage string
}

// SaveCmd writes content to fileName, one line per element. A relative fileName is relative to dir, and an empty
// one becomes bw-<jobName>-<timestamp>.txt in dir
func SaveCmd(dir, jobName, fileName string, content []string) tea.Cmd {
	return func() tea.Msg {
		fullPath, err := save(dir, jobName, fileName, content, time.Now())
		if err != nil {
			return SaveCompleteMsg{ErrMessage: err.Error()}
		}
		return SaveCompleteMsg{
			FullPath:       fullPath,
			SuccessMessage: fmt.Sprintf("Saved to %s", fullPath),
		}
	}
}

func save(dir, jobName, fileName string, content []string, now time.Time) (string, error) {
	stamp := now.UTC().Format(timestampFormat)
	path, err := resolvePath(dir, jobName, fileName, stamp)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("error creating %s: %w", filepath.Dir(path), err)
	}

	// never overwrite, e.g. two saves in the same second
	exists, err := fileOrDirectoryExists(path)
	if err != nil {
		return "", err
	}
	if exists {
		ext := filepath.Ext(path)
		path = strings.TrimSuffix(path, ext) + "_" + stamp + ext
	}

	var sb strings.Builder
	for _, line := range content {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return "", fmt.Errorf("error writing %s: %w", path, err)
	}
	return path, nil
}

// resolvePath is the absolute path to save to, with a .txt extension unless one was given
func resolvePath(dir, jobName, fileName, stamp string) (string, error) {
	if fileName == "" {
		fileName = fmt.Sprintf("bw-%s-%s", sanitize(jobName), stamp)
	}
	if strings.HasPrefix(fileName, "~") {
		currUser, err := user.Current()
		if err != nil {
			return "", err
		}
		fileName = currUser.HomeDir + fileName[1:]
	}
	if !filepath.IsAbs(fileName) {
		fileName = filepath.Join(dir, fileName)
	}
	if filepath.Ext(fileName) == "" {
		fileName += ".txt"
	}
	return filepath.Abs(fileName)
}

// sanitize keeps a job name usable as part of a file name
func sanitize(name string) string {
	if name == "" {
		return "output"
	}
	return strings.Map(func(r rune) rune {
		if r == os.PathSeparator || r == '/' || r == ' ' {
			return '_'
		}
		return r
	}, name)
}

func fileOrDirectoryExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
