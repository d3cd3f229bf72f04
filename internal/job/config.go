package job

import (
	_ "embed"
	"errors"
	"fmt"
	"github.com/pelletier/go-toml/v2"
	"os"
	"path/filepath"
	"sort"
)

// DefaultConfigFileName is looked for in the watched directory when no job file is given
const DefaultConfigFileName = "bw.toml"

//go:embed default.toml
var DefaultConfigText string

var ErrNoCommand = errors.New("job has no command")

type Job struct {
	Name string `toml:"-"`
	// Command is the program and its arguments, not run through a shell
	Command []string `toml:"command"`
	// NeedStdout keeps the stdout of the command, otherwise only stderr is shown
	NeedStdout bool `toml:"need_stdout"`
	// Watch lists directories watched in addition to the job directory, relative to it
	Watch []string `toml:"watch"`
}

type Config struct {
	DefaultJob string         `toml:"default_job"`
	Jobs       map[string]Job `toml:"jobs"`
}

// ParseConfig reads a job file. source names the file in errors
func ParseConfig(source string, data []byte) (Config, error) {
	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return Config{}, fmt.Errorf("parsing %s at %d:%d: %w", source, row, col, err)
		}
		return Config{}, fmt.Errorf("parsing %s: %w", source, err)
	}
	for name, j := range c.Jobs {
		j.Name = name
		c.Jobs[name] = j
	}
	return c, nil
}

// DefaultConfig is the configuration used when no job file exists
func DefaultConfig() Config {
	c, err := ParseConfig("default job file", []byte(DefaultConfigText))
	if err != nil {
		panic(err)
	}
	return c
}

// LoadConfig reads the job file at path, falling back to DefaultConfig when there's no file there
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("reading job file %s: %w", path, err)
	}
	return ParseConfig(path, data)
}

// WriteDefaultConfig writes the default job file to path, refusing to replace an existing file
func WriteDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%s already exists", path)
		}
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(DefaultConfigText); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Job finds a job by name. An empty name selects the default job
func (c Config) Job(name string) (Job, error) {
	if name == "" {
		name = c.DefaultJob
	}
	if name == "" {
		return Job{}, fmt.Errorf("no job given and no default_job set")
	}
	j, ok := c.Jobs[name]
	if !ok {
		return Job{}, fmt.Errorf("unknown job %q, known jobs: %v", name, c.JobNames())
	}
	if len(j.Command) == 0 || j.Command[0] == "" {
		return Job{}, fmt.Errorf("job %q: %w", name, ErrNoCommand)
	}
	return j, nil
}

// JobNames is the sorted list of configured jobs
func (c Config) JobNames() []string {
	names := make([]string, 0, len(c.Jobs))
	for name := range c.Jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
