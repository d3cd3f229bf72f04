package cmd

import (
	"fmt"
	"github.com/carlmjohnson/versioninfo"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/robinovitch61/bw/internal"
	"github.com/robinovitch61/bw/internal/constants"
	"github.com/robinovitch61/bw/internal/job"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	// Version is public so users can optionally specify or override the version
	// at build time by passing in ldflags, e.g.
	//   go build -ldflags "-X github.com/robinovitch61/bw/cmd.Version=vX.Y.Z"
	Version = ""
)

type arg struct {
	cliShort, cfgFileEnvVar, description, defaultString string
	isBool, defaultIfBool                               bool
}

var (
	rootNameToArg = map[string]arg{
		"config": {
			cliShort:      "c",
			cfgFileEnvVar: "config",
			description:   fmt.Sprintf(`Job file. Defaults to %s in the watched directory, or built in go jobs if there is none`, job.DefaultConfigFileName),
		},
		"debounce": {
			cliShort:      "",
			cfgFileEnvVar: "debounce",
			description:   `How long to wait for file changes to settle before running the job again. E.g. 50ms, 1s`,
			defaultString: constants.DefaultDebounce.String(),
		},
		"help": {
			description: `Print usage`,
		},
		"job": {
			cliShort:      "j",
			cfgFileEnvVar: "job",
			description:   `Job to run. Defaults to the default_job of the job file`,
		},
		"path": {
			cliShort:      "p",
			cfgFileEnvVar: "path",
			description:   `Directory to run the job in and watch. Defaults to the current directory`,
			defaultString: ".",
		},
		"wrap": {
			cliShort:      "w",
			cfgFileEnvVar: "wrap",
			description:   `If present, start with output lines wrapped. Default false`,
			isBool:        true,
		},
	}

	description = fmt.Sprintf(`bw %s
Leo Robinovitch <leorobinovitch@gmail.com>

bw runs a build or test job every time a file changes and shows its colored output

Home page: https://github.com/robinovitch61/bw`,
		getVersion(),
	)

	rootCmd = &cobra.Command{
		Use:   "bw",
		Short: "bw: build watcher",
		Long:  description,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd, rootNameToArg)
		},
		RunE:    mainEntrypoint,
		Version: getVersion(),
	}

	initCmd = &cobra.Command{
		Use:   "init",
		Short: fmt.Sprintf("Write the default job file to %s in the watched directory", job.DefaultConfigFileName),
		RunE:  initEntrypoint,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

// init is called once when the cmd package is loaded
// https://golangdocs.com/init-function-in-golang
func init() {
	cliLong := "help"
	rootCmd.PersistentFlags().BoolP(cliLong, rootNameToArg[cliLong].cliShort, rootNameToArg[cliLong].defaultIfBool, rootNameToArg[cliLong].description)

	for _, cliLong = range []string{
		"config",
		"debounce",
		"job",
		"path",
		"wrap",
	} {
		c := rootNameToArg[cliLong]
		if c.isBool {
			rootCmd.PersistentFlags().BoolP(cliLong, c.cliShort, c.defaultIfBool, c.description)
		} else {
			rootCmd.PersistentFlags().StringP(cliLong, c.cliShort, c.defaultString, c.description)
		}
		_ = viper.BindPFlag(c.cfgFileEnvVar, rootCmd.PersistentFlags().Lookup(cliLong))
	}
	rootCmd.SetVersionTemplate(`{{printf "bw %s\n" .Version}}`)
	rootCmd.Flags().BoolP("version", "v", false, "Show bw version")
	rootCmd.AddCommand(initCmd)
}

func initConfig(cmd *cobra.Command, nameToArg map[string]arg) error {
	// bind viper to env vars, e.g. BW_JOB
	viper.SetEnvPrefix("bw")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	return bindFlags(cmd, nameToArg)
}

func bindFlags(cmd *cobra.Command, nameToArg map[string]arg) error {
	v := viper.GetViper()
	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Determine the naming convention of the flags when represented in the config file
		cliLong := f.Name
		viperName := nameToArg[cliLong].cfgFileEnvVar
		if viperName == "" || err != nil {
			return
		}

		// Apply the viper config value to the flag when the flag is not manually specified
		// and viper has a value from the config file or env var
		if !f.Changed && v.IsSet(viperName) {
			val := v.Get(viperName)
			if setErr := cmd.Flags().Set(cliLong, fmt.Sprintf("%v", val)); setErr != nil {
				err = fmt.Errorf("error setting flag %s: %w", cliLong, setErr)
			}
		}
	})
	return err
}

func mainEntrypoint(cmd *cobra.Command, _ []string) error {
	config, err := getConfig(cmd)
	if err != nil {
		return err
	}
	initialModel, options := setup(config)
	program := tea.NewProgram(initialModel, options...)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("error on bw startup: %w", err)
	}
	return nil
}

func initEntrypoint(cmd *cobra.Command, _ []string) error {
	dir, err := getPath(cmd)
	if err != nil {
		return err
	}
	path := getConfigPath(cmd, dir)
	if err := job.WriteDefaultConfig(path); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func getVersion() string {
	if Version != "" {
		return Version
	}
	return versioninfo.Short()
}

func getPath(cmd *cobra.Command) (string, error) {
	path := cmd.Flags().Lookup("path").Value.String()
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("error resolving path %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("error reading path %s: %w", path, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path %s is not a directory", path)
	}
	return abs, nil
}

func getConfigPath(cmd *cobra.Command, dir string) string {
	configPath := cmd.Flags().Lookup("config").Value.String()
	if configPath == "" {
		return filepath.Join(dir, job.DefaultConfigFileName)
	}
	return configPath
}

func getDebounce(cmd *cobra.Command) (time.Duration, error) {
	debounce := cmd.Flags().Lookup("debounce").Value.String()
	if debounce == "" {
		return constants.DefaultDebounce, nil
	}
	d, err := time.ParseDuration(debounce)
	if err != nil {
		return 0, fmt.Errorf("error parsing debounce: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("error: debounce must be non-negative")
	}
	return d, nil
}

func getWrap(cmd *cobra.Command) bool {
	return cmd.Flags().Lookup("wrap").Value.String() == "true"
}

func getJob(cmd *cobra.Command, configPath string) (job.Job, error) {
	jobConfig, err := job.LoadConfig(configPath)
	if err != nil {
		return job.Job{}, err
	}
	return jobConfig.Job(cmd.Flags().Lookup("job").Value.String())
}

func getConfig(cmd *cobra.Command) (internal.Config, error) {
	dir, err := getPath(cmd)
	if err != nil {
		return internal.Config{}, err
	}
	j, err := getJob(cmd, getConfigPath(cmd, dir))
	if err != nil {
		return internal.Config{}, err
	}
	debounce, err := getDebounce(cmd)
	if err != nil {
		return internal.Config{}, err
	}
	return internal.Config{
		Dir:      dir,
		Job:      j,
		Debounce: debounce,
		Wrap:     getWrap(cmd),
		Version:  getVersion(),
	}, nil
}

func setup(config internal.Config) (internal.Model, []tea.ProgramOption) {
	initialModel := internal.InitialModel(config)
	return initialModel, []tea.ProgramOption{tea.WithAltScreen()}
}
