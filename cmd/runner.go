package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/musicmeta/internal/services"
	"github.com/desertthunder/musicmeta/internal/shared"
	"github.com/desertthunder/musicmeta/internal/ui"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	palette    *ui.Palette
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A non-nil Config is used as-is unless a command is given an explicit --config.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		palette:    ui.Styles,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, setupCommand, apiCommand, cacheCommand, healthCommand, playlistCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// settings resolves the effective configuration for a command and applies its log level.
//
// Resolution order is defaults, config file, environment. The result is memoized on the runner.
func (r *Runner) settings(cmd *cli.Command) (*shared.Config, error) {
	if r.config != nil && !cmd.IsSet("config") {
		return r.config, nil
	}

	path := r.configPath
	if cmd.IsSet("config") || path == "" {
		path = cmd.String("config")
	}

	config, err := shared.ResolveConfig(path)
	if err != nil {
		return nil, err
	}

	level := config.Log.Level
	if cmd.IsSet("log-level") {
		level = cmd.String("log-level")
	}
	if err := shared.ApplyLogLevel(r.logger, level); err != nil {
		return nil, err
	}

	r.config = config
	return config, nil
}

// catalogAPI returns a raw client for the catalog service, honoring --catalog-url.
func (r *Runner) catalogAPI(cmd *cli.Command, config *shared.Config) *services.APIService {
	return services.NewAPIService(r.catalogURL(cmd, config), r.httpClient)
}

func (r *Runner) catalogURL(cmd *cli.Command, config *shared.Config) string {
	if u := cmd.String("catalog-url"); u != "" {
		return u
	}
	return config.Metadata.URL
}

func (r *Runner) libraryURL(cmd *cli.Command, config *shared.Config) string {
	if u := cmd.String("library-url"); u != "" {
		return u
	}
	return fmt.Sprintf("http://localhost:%d", config.Library.Port)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("%s\n", r.palette.Title(title))
}
