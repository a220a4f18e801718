package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/jcreekmore/rustache"
	"github.com/jcreekmore/rustache/internal/cli/config"
	"github.com/jcreekmore/rustache/internal/data"
	"github.com/jcreekmore/rustache/internal/script"
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Render templates interactively",
		Long: `Start an interactive session that renders each line as a template.

The scope starts from the data file (--data) and script file (--script)
when configured, and can be changed from inside the session with
dot-commands. A render error prints whatever output was produced before
the error, then the error itself.`,
		Example: `  # Start with an empty scope
  rustache repl

  # Start with data and partials
  rustache repl --data site.yaml --partials-dir partials`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd)
		},
	}
}

// replSession holds the mutable state of an interactive session.
type replSession struct {
	scope       *rustache.Scope
	partialsDir string
	partialExt  string
	delims      rustache.Delimiters
	maxDepth    int
	logger      *slog.Logger
	out         io.Writer
	errOut      io.Writer
}

func runREPL(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg

	if cfg.PartialsDir != "" {
		if err := cfg.ValidatePartialsDir(); err != nil {
			return err
		}
	}

	delims := rustache.DefaultDelimiters()
	if cfg.Delimiters != "" {
		var err error
		delims, err = config.ParseDelimiters(cfg.Delimiters)
		if err != nil {
			return err
		}
	}

	s := &replSession{
		scope:       rustache.NewScope(),
		partialsDir: cfg.PartialsDir,
		partialExt:  cfg.PartialExt,
		delims:      delims,
		maxDepth:    cfg.MaxDepth,
		logger:      cmdCtx.Logger,
		out:         cmd.OutOrStdout(),
		errOut:      cmd.ErrOrStderr(),
	}

	// Seed the scope from the configured files before the prompt shows,
	// so mistakes fail the command instead of a dot-command.
	if cfg.DataFile != "" {
		loaded, err := data.Load(cfg.DataFile)
		if err != nil {
			return err
		}
		mergeScope(s.scope, loaded)
	}
	if cfg.ScriptFile != "" {
		mod, err := script.Load(cfg.ScriptFile)
		if err != nil {
			return err
		}
		if err := mod.Bind(s.scope, s.logger); err != nil {
			return err
		}
	}

	// History file (project-local when a config file was found)
	historyFile := filepath.Join(os.TempDir(), "rustache_history")
	if cfg.ProjectRoot != "" {
		historyFile = filepath.Join(cfg.ProjectRoot, ".rustache_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "rustache> ",
		HistoryFile:     historyFile,
		AutoComplete:    newREPLCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	// Print welcome message
	_, _ = fmt.Fprintln(s.out, "Rustache Template REPL")
	_, _ = fmt.Fprintln(s.out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(s.out)

	// REPL loop
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Handle dot-commands
		if strings.HasPrefix(line, ".") {
			s.handleCommand(line)
			if line == ".quit" || line == ".exit" {
				break
			}
			continue
		}

		s.render(line)
	}

	return nil
}

// render renders one input line as a template against the current scope.
// On failure the output produced before the error is printed first.
func (s *replSession) render(line string) {
	out, err := rustache.RenderString(line, s.scope, s.options()...)
	if out != "" {
		_, _ = fmt.Fprintln(s.out, out)
	}
	if err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
	}
}

// options builds the render options for the session's current state.
func (s *replSession) options() []rustache.Option {
	opts := []rustache.Option{
		rustache.WithMaxDepth(s.maxDepth),
		rustache.WithDelimiters(s.delims.Open, s.delims.Close),
	}
	if s.partialsDir != "" {
		opts = append(opts, rustache.WithPartials(
			rustache.NewDirPartials(os.DirFS(s.partialsDir), s.partialExt)))
	}
	return opts
}

func (s *replSession) handleCommand(line string) {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		// Handled by the loop.

	case ".help":
		printREPLHelp(s.out)

	case ".set":
		rest := strings.TrimSpace(strings.TrimPrefix(line, parts[0]))
		name, value, ok := strings.Cut(rest, " ")
		if !ok {
			_, _ = fmt.Fprintln(s.errOut, "Usage: .set <name> <yaml-value>")
			return
		}
		// Reuse the data file parser so .set accepts anything a data
		// file would: scalars, flow sequences, flow mappings.
		loaded, err := data.Parse([]byte(name + ": " + strings.TrimSpace(value)))
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return
		}
		mergeScope(s.scope, loaded)

	case ".vars":
		if s.scope.Len() == 0 {
			_, _ = fmt.Fprintln(s.out, "(empty scope)")
			return
		}
		for _, name := range s.scope.Names() {
			v, _ := s.scope.Get(name)
			_, _ = fmt.Fprintf(s.out, "  %-16s %s\n", name, describeValue(v))
		}

	case ".data":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(s.errOut, "Usage: .data <file>")
			return
		}
		loaded, err := data.Load(parts[1])
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return
		}
		n := mergeScope(s.scope, loaded)
		_, _ = fmt.Fprintf(s.out, "merged %d names from %s\n", n, parts[1])

	case ".script":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(s.errOut, "Usage: .script <file>")
			return
		}
		mod, err := script.Load(parts[1])
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return
		}
		if err := mod.Bind(s.scope, s.logger); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return
		}
		_, _ = fmt.Fprintf(s.out, "loaded %d exports from %s\n", len(mod.Exports), parts[1])

	case ".partials":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(s.errOut, "Usage: .partials <dir>")
			return
		}
		if _, err := os.Stat(parts[1]); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return
		}
		s.partialsDir = parts[1]

	case ".delims":
		if len(parts) != 3 {
			_, _ = fmt.Fprintln(s.errOut, "Usage: .delims <open> <close>")
			return
		}
		delims, err := config.ParseDelimiters(parts[1] + " " + parts[2])
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return
		}
		s.delims = delims

	case ".reset":
		s.scope = rustache.NewScope()
		_, _ = fmt.Fprintln(s.out, "scope cleared")

	case ".clear":
		fmt.Print("\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help                   Show this help message
  .set <name> <value>     Set a scope name; the value is parsed as YAML
  .vars                   List scope names
  .data <file>            Merge a YAML data file into the scope
  .script <file>          Load Starlark helpers into the scope
  .partials <dir>         Resolve partials from a directory
  .delims <open> <close>  Change tag delimiters
  .reset                  Clear the scope
  .clear                  Clear the screen
  .quit / .exit           Exit the REPL

Tips:
  - Any other line renders immediately as a template
  - On a render error, output produced before the error still prints
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}

// mergeScope copies every name from src into dst and reports how many.
func mergeScope(dst, src *rustache.Scope) int {
	for _, name := range src.Names() {
		if v, ok := src.Get(name); ok {
			dst.Set(name, v)
		}
	}
	return src.Len()
}

// describeValue renders a one-line summary of a scope value for .vars.
func describeValue(v rustache.Value) string {
	switch v := v.(type) {
	case rustache.Static:
		return fmt.Sprintf("%q", string(v))
	case rustache.Bool:
		return fmt.Sprintf("%t", bool(v))
	case rustache.Sequence:
		return fmt.Sprintf("sequence (%d items)", len(v))
	case *rustache.Scope:
		return fmt.Sprintf("scope (%d names)", v.Len())
	case rustache.Lambda:
		return "lambda"
	default:
		return "?"
	}
}

// newREPLCompleter creates a readline completer for dot-commands.
func newREPLCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".set"),
		readline.PcItem(".vars"),
		readline.PcItem(".data"),
		readline.PcItem(".script"),
		readline.PcItem(".partials"),
		readline.PcItem(".delims"),
		readline.PcItem(".reset"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
