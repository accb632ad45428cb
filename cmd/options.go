package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"testwright/internal/config"
	"testwright/internal/formatting"
	"testwright/pkg/logging"
)

// commonOptions holds the flags shared by the suite commands.
type commonOptions struct {
	configPath string
	output     string
	debug      bool
	quiet      bool
	noColor    bool
}

func (o *commonOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.configPath, "config-path", "", "Configuration directory (default ~/.config/testwright)")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Output format (console, table, json, yaml)")
	cmd.Flags().BoolVar(&o.debug, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVarP(&o.quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.Flags().BoolVar(&o.noColor, "no-color", false, "Disable colored output")
}

// settings is the effective configuration of one command invocation.
type settings struct {
	config    config.Config
	configDir string
	format    formatting.OutputFormat
	quiet     bool
	color     bool
	out       io.Writer
	errOut    io.Writer
}

// load resolves the configuration directory, loads config.yaml, applies the
// flag overrides and initializes logging.
func (o *commonOptions) load(cmd *cobra.Command) (*settings, error) {
	dir := o.configPath
	if dir == "" {
		d, err := config.GetUserConfigDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	cfg, err := config.LoadConfig(dir)
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	if o.debug {
		level = logging.LevelDebug
	}
	logging.InitForCLI(level, cmd.ErrOrStderr())

	output := cfg.Output
	if o.output != "" {
		output = o.output
	}
	format, err := formatting.ParseFormat(output)
	if err != nil {
		return nil, err
	}

	return &settings{
		config:    cfg,
		configDir: dir,
		format:    format,
		quiet:     o.quiet,
		color:     !o.noColor,
		out:       cmd.OutOrStdout(),
		errOut:    cmd.ErrOrStderr(),
	}, nil
}

func (s *settings) formatter() formatting.Formatter {
	return formatting.NewFactory().CreateFormatter(formatting.Options{
		Format: s.format,
		Quiet:  s.quiet,
		Color:  s.color,
		Writer: s.out,
	})
}

func (s *settings) storage() *config.Storage {
	return config.NewStorageWithPath(s.configDir)
}
