package commands

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/jcreekmore/rustache/internal/preview"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Addr      string
	NoBrowser bool
	Watch     bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve <template>",
		Short: "Preview a template in the browser",
		Long: `Start a local web server that renders the template on every request.

With watching enabled (the default) the page reloads itself whenever the
template, data file, script file, or a partial changes on disk. A render
error shows in the page along with the output produced before the error.

Endpoints:
  /         the rendered template
  /source   the raw template text
  /version  reload counter for the live-reload script`,
		Example: `  # Preview a template
  rustache serve page.mustache

  # Serve on a custom address
  rustache serve page.mustache --addr localhost:3000

  # Serve without opening a browser or watching
  rustache serve page.mustache --no-browser --watch=false`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Address to serve on (default: localhost:8537)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Reload the page on file changes")

	return cmd
}

func runServe(cmd *cobra.Command, templateFile string, opts *ServeOptions) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg

	ws, err := cmdCtx.Workspace(templateFile)
	if err != nil {
		return err
	}

	// Fail before the server starts when the template cannot be read.
	if _, err := ws.TemplateSource(); err != nil {
		return err
	}

	// CLI flags override config file
	addr := cfg.Serve.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}

	watch := cfg.Serve.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}

	server := preview.NewServer(preview.Config{
		Workspace: ws,
		Addr:      addr,
		Watch:     watch,
		Logger:    cmdCtx.Logger,
	})

	// Open browser if configured
	if !opts.NoBrowser {
		go openBrowser(fmt.Sprintf("http://%s", addr))
	}

	r := cmdCtx.Renderer
	r.Printf("Serving %s on http://%s\n", templateFile, addr)
	r.Println("Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	return server.Serve(ctx)
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
