package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jcreekmore/rustache/internal/cli/output"
	"github.com/jcreekmore/rustache/internal/preview"
	"github.com/jcreekmore/rustache/internal/workspace"
)

// RenderOptions holds options for the render command.
type RenderOptions struct {
	Out   string // Write output to a file instead of stdout
	Watch bool   // Re-render on file changes
}

// RenderOutput is the JSON output for the render command.
type RenderOutput struct {
	Template string `json:"template"`
	Output   string `json:"output"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	opts := &RenderOptions{}
	cmd := &cobra.Command{
		Use:   "render <template>",
		Short: "Render a template with data, partials, and script helpers",
		Long: `Render a template to its final output.

The root scope comes from the data file (--data), with Starlark helpers
from the script file (--script) layered on top. Partials resolve against
the partials directory (--partials-dir).

Output adapts to environment:
  - Terminal: the raw render
  - Piped/Scripted: Markdown with code block
  - JSON: Machine-readable format`,
		Example: `  # Render a template
  rustache render page.mustache

  # Render with data and partials
  rustache render page.mustache --data site.yaml --partials-dir partials

  # Write to a file and keep it fresh while editing
  rustache render page.mustache --out page.html --watch

  # Render as JSON
  rustache render page.mustache --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Out, "out", "", "Write output to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Re-render whenever an input changes (requires --out)")

	return cmd
}

func runRender(cmd *cobra.Command, templateFile string, opts *RenderOptions) error {
	cmdCtx := NewCommandContext(cmd)

	ws, err := cmdCtx.Workspace(templateFile)
	if err != nil {
		return err
	}

	if opts.Watch {
		if opts.Out == "" {
			return fmt.Errorf("--watch requires --out")
		}
		return watchAndRender(cmd, cmdCtx, ws, opts.Out)
	}

	if opts.Out != "" {
		return renderToFile(cmdCtx, ws, opts.Out)
	}

	return renderOnce(cmdCtx, ws, templateFile)
}

func renderOnce(cmdCtx *CommandContext, ws *workspace.Workspace, templateFile string) error {
	r := cmdCtx.Renderer

	switch r.EffectiveMode() {
	case output.ModeJSON:
		rendered, err := ws.RenderString()
		if err != nil {
			return fmt.Errorf("failed to render template: %w", err)
		}
		return r.JSON(RenderOutput{Template: templateFile, Output: rendered})

	case output.ModeMarkdown:
		rendered, err := ws.RenderString()
		if err != nil {
			return fmt.Errorf("failed to render template: %w", err)
		}
		r.Println(output.FormatHeader(1, fmt.Sprintf("Rendered: %s", templateFile)))
		r.Println("")
		r.Println(output.FormatCodeBlock("", rendered))

	default:
		// Text mode: stream the render; on failure the output produced
		// before the error has already been written.
		if err := ws.Render(r.Writer()); err != nil {
			return fmt.Errorf("failed to render template: %w", err)
		}
	}

	return nil
}

func renderToFile(cmdCtx *CommandContext, ws *workspace.Workspace, outFile string) error {
	rendered, err := ws.RenderString()
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}
	if err := os.WriteFile(outFile, []byte(rendered), 0o644); err != nil { //nolint:gosec // G306: rendered output is a public artifact
		return fmt.Errorf("writing output: %w", err)
	}

	cmdCtx.Renderer.Success(fmt.Sprintf("rendered to %s", outFile))
	return nil
}

func watchAndRender(cmd *cobra.Command, cmdCtx *CommandContext, ws *workspace.Workspace, outFile string) error {
	r := cmdCtx.Renderer

	render := func() {
		if err := renderToFile(cmdCtx, ws, outFile); err != nil {
			r.Warning(err.Error())
		}
	}

	// Render up front so mistakes surface immediately; failures must not
	// end the watch.
	render()
	r.Muted("watching for changes, press Ctrl+C to stop")

	return preview.Watch(cmd.Context(), ws, cmdCtx.Logger, render)
}
