package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jcreekmore/rustache/internal/cli/config"
	"github.com/jcreekmore/rustache/internal/cli/output"
	"github.com/jcreekmore/rustache/internal/workspace"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded
// configuration and the command's context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Workspace assembles a render workspace for templateFile from the
// loaded configuration.
func (c *CommandContext) Workspace(templateFile string) (*workspace.Workspace, error) {
	if c.Cfg.PartialsDir != "" {
		if err := c.Cfg.ValidatePartialsDir(); err != nil {
			return nil, err
		}
	}

	wcfg := workspace.Config{
		TemplateFile: templateFile,
		DataFile:     c.Cfg.DataFile,
		ScriptFile:   c.Cfg.ScriptFile,
		PartialsDir:  c.Cfg.PartialsDir,
		PartialExt:   c.Cfg.PartialExt,
		MaxDepth:     c.Cfg.MaxDepth,
	}
	if c.Cfg.Delimiters != "" {
		delims, err := config.ParseDelimiters(c.Cfg.Delimiters)
		if err != nil {
			return nil, err
		}
		wcfg.Delimiters = delims
	}

	return workspace.New(wcfg, c.Logger), nil
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to
// environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	partialExt := getEnvOrDefault("RUSTACHE_PARTIAL_EXT", config.DefaultPartialExt)
	delimiters := getEnvOrDefault("RUSTACHE_DELIMITERS", config.DefaultDelimiters)
	verbose := os.Getenv("RUSTACHE_VERBOSE") == "true"
	outputFormat := os.Getenv("RUSTACHE_OUTPUT")

	return &config.Config{
		PartialsDir:  os.Getenv("RUSTACHE_PARTIALS_DIR"),
		PartialExt:   partialExt,
		DataFile:     os.Getenv("RUSTACHE_DATA_FILE"),
		ScriptFile:   os.Getenv("RUSTACHE_SCRIPT_FILE"),
		Delimiters:   delimiters,
		MaxDepth:     config.DefaultMaxDepth,
		Verbose:      verbose,
		OutputFormat: outputFormat,
		Serve: config.ServeConfig{
			Addr:  config.DefaultServeAddr,
			Watch: true,
		},
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
