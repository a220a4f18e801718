package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jcreekmore/rustache"
	"github.com/jcreekmore/rustache/internal/cli/config"
	"github.com/jcreekmore/rustache/internal/cli/output"
)

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Format string // Output format: text, markdown, json
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}
	cmd := &cobra.Command{
		Use:   "check [templates...]",
		Short: "Check templates for parse errors and unresolved partials",
		Long: `Parse templates without rendering them and report problems.

Every template named on the command line is checked, along with every
partial in the partials directory (--partials-dir). A template fails the
check when it does not parse, or when it references a partial that the
partials directory cannot resolve.

Output adapts to environment:
  - Terminal: Issue table with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Check one template plus the partials directory
  rustache check page.mustache

  # Check only the partials directory
  rustache check

  # Output as JSON
  rustache check page.mustache --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")

	return cmd
}

// CheckOutput is the JSON output for the check command.
type CheckOutput struct {
	Summary CheckSummary      `json:"summary"`
	Files   []CheckFileResult `json:"files,omitempty"`
}

// CheckSummary contains aggregate counts across all checked templates.
type CheckSummary struct {
	FilesChecked       int `json:"files_checked"`
	TotalIssues        int `json:"total_issues"`
	ParseErrors        int `json:"parse_errors"`
	UnresolvedPartials int `json:"unresolved_partials"`
}

// CheckFileResult holds the issues found in a single template file.
type CheckFileResult struct {
	Path   string       `json:"path"`
	Issues []CheckIssue `json:"issues"`
}

// CheckIssue is a single problem found in a template.
type CheckIssue struct {
	Kind    string `json:"kind"` // "parse", "partial", or "read"
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

func runCheck(cmd *cobra.Command, args []string, opts *CheckOptions) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	// Override renderer if format flag is set
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	if cfg.PartialsDir != "" {
		if err := cfg.ValidatePartialsDir(); err != nil {
			return err
		}
	}

	files, err := collectCheckFiles(args, cfg.PartialsDir, cfg.PartialExt)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("nothing to check: name template files or configure a partials directory")
	}

	delims := rustache.DefaultDelimiters()
	if cfg.Delimiters != "" {
		delims, err = config.ParseDelimiters(cfg.Delimiters)
		if err != nil {
			return err
		}
	}

	checkOutput := &CheckOutput{Summary: CheckSummary{FilesChecked: len(files)}}
	for _, file := range files {
		issues := checkTemplate(file, delims, cfg.PartialsDir, cfg.PartialExt)
		if len(issues) == 0 {
			continue
		}
		checkOutput.Files = append(checkOutput.Files, CheckFileResult{Path: file, Issues: issues})
		for _, issue := range issues {
			checkOutput.Summary.TotalIssues++
			switch issue.Kind {
			case "parse":
				checkOutput.Summary.ParseErrors++
			case "partial":
				checkOutput.Summary.UnresolvedPartials++
			}
		}
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		if err := r.JSON(checkOutput); err != nil {
			return err
		}
	case output.ModeMarkdown:
		renderCheckMarkdown(r, checkOutput)
	default:
		renderCheckText(r, checkOutput)
	}

	// Exit with code 1 if issues found
	if checkOutput.Summary.TotalIssues > 0 {
		return fmt.Errorf("template issues found")
	}
	return nil
}

// collectCheckFiles gathers the templates to check: the named files plus
// every template in the partials directory. Duplicates are dropped.
func collectCheckFiles(args []string, partialsDir, partialExt string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		path = filepath.Clean(path)
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, arg := range args {
		add(arg)
	}

	if partialsDir != "" {
		err := filepath.WalkDir(partialsDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), partialExt) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning partials directory: %w", err)
		}
	}

	sort.Strings(files)
	return files, nil
}

// checkTemplate parses one template and resolves its partial references.
func checkTemplate(path string, delims rustache.Delimiters, partialsDir, partialExt string) []CheckIssue {
	content, err := os.ReadFile(path)
	if err != nil {
		return []CheckIssue{{Kind: "read", Message: err.Error()}}
	}

	tpl, err := rustache.ParseWithDelimiters(string(content), path, delims)
	if err != nil {
		issue := CheckIssue{Kind: "parse", Message: err.Error()}
		var terr rustache.Error
		if errors.As(err, &terr) {
			issue.Line = terr.Position().Line
		}
		return []CheckIssue{issue}
	}

	var issues []CheckIssue
	for _, ref := range collectPartialRefs(tpl.Nodes, nil) {
		if partialsDir == "" {
			issues = append(issues, CheckIssue{
				Kind:    "partial",
				Line:    ref.Pos().Line,
				Message: fmt.Sprintf("partial %q referenced but no partials directory is configured", ref.Name),
			})
			continue
		}
		target := filepath.Join(partialsDir, filepath.FromSlash(ref.Name)+partialExt)
		if _, err := os.Stat(target); err != nil {
			issues = append(issues, CheckIssue{
				Kind:    "partial",
				Line:    ref.Pos().Line,
				Message: fmt.Sprintf("partial %q does not resolve (no %s)", ref.Name, target),
			})
		}
	}
	return issues
}

// collectPartialRefs walks the node tree and returns every partial tag, in
// document order. Section bodies are descended into; a partial's own
// references are checked when the partial file itself is checked.
func collectPartialRefs(nodes []rustache.Node, refs []*rustache.PartialNode) []*rustache.PartialNode {
	for _, n := range nodes {
		switch n := n.(type) {
		case *rustache.PartialNode:
			refs = append(refs, n)
		case *rustache.SectionNode:
			refs = collectPartialRefs(n.Children, refs)
		case *rustache.InvertedNode:
			refs = collectPartialRefs(n.Children, refs)
		}
	}
	return refs
}

func renderCheckText(r *output.Renderer, out *CheckOutput) {
	if out.Summary.TotalIssues == 0 {
		r.Success(fmt.Sprintf("No issues found in %d templates", out.Summary.FilesChecked))
		return
	}

	titleCaser := cases.Title(language.English)

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"File", "Line", "Kind", "Message"})
	for _, file := range out.Files {
		for _, issue := range file.Issues {
			line := "-"
			if issue.Line > 0 {
				line = fmt.Sprintf("%d", issue.Line)
			}
			t.AppendRow(table.Row{file.Path, line, titleCaser.String(issue.Kind), issue.Message})
		}
	}
	t.Render()

	r.Printf("Summary: %s in %d files\n",
		strings.Join(checkSummaryParts(out.Summary), ", "), out.Summary.FilesChecked)
}

func renderCheckMarkdown(r *output.Renderer, out *CheckOutput) {
	r.Println(output.FormatHeader(1, "Template Check"))
	r.Println("")

	if out.Summary.TotalIssues == 0 {
		r.Printf("No issues found in %d templates.\n", out.Summary.FilesChecked)
		return
	}

	titleCaser := cases.Title(language.English)
	for _, file := range out.Files {
		r.Println(output.FormatHeader(2, file.Path))
		r.Println("")
		for _, issue := range file.Issues {
			if issue.Line > 0 {
				r.Printf("- **%s** (line %d): %s\n", titleCaser.String(issue.Kind), issue.Line, issue.Message)
			} else {
				r.Printf("- **%s**: %s\n", titleCaser.String(issue.Kind), issue.Message)
			}
		}
		r.Println("")
	}

	r.Printf("Summary: %s in %d files\n",
		strings.Join(checkSummaryParts(out.Summary), ", "), out.Summary.FilesChecked)
}

func checkSummaryParts(s CheckSummary) []string {
	parts := []string{fmt.Sprintf("%d issues", s.TotalIssues)}
	if s.ParseErrors > 0 {
		parts = append(parts, fmt.Sprintf("%d parse errors", s.ParseErrors))
	}
	if s.UnresolvedPartials > 0 {
		parts = append(parts, fmt.Sprintf("%d unresolved partials", s.UnresolvedPartials))
	}
	return parts
}
