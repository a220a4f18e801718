package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcreekmore/rustache"
	"github.com/jcreekmore/rustache/internal/cli/config"
	"github.com/jcreekmore/rustache/internal/cli/output"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestCollectCheckFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.mustache"), "a")
	writeFile(t, filepath.Join(dir, "sub", "b.mustache"), "b")
	writeFile(t, filepath.Join(dir, "notes.txt"), "not a template")

	t.Run("args plus partials dir", func(t *testing.T) {
		files, err := collectCheckFiles([]string{"page.mustache"}, dir, ".mustache")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			"page.mustache",
			filepath.Join(dir, "a.mustache"),
			filepath.Join(dir, "sub", "b.mustache"),
		}, files)
		assert.True(t, sort.StringsAreSorted(files))
	})

	t.Run("duplicates dropped", func(t *testing.T) {
		files, err := collectCheckFiles([]string{filepath.Join(dir, "a.mustache")}, dir, ".mustache")
		require.NoError(t, err)
		assert.Len(t, files, 2)
	})

	t.Run("no partials dir", func(t *testing.T) {
		files, err := collectCheckFiles([]string{"one.mustache"}, "", ".mustache")
		require.NoError(t, err)
		assert.Equal(t, []string{"one.mustache"}, files)
	})

	t.Run("nothing configured", func(t *testing.T) {
		files, err := collectCheckFiles(nil, "", ".mustache")
		require.NoError(t, err)
		assert.Empty(t, files)
	})
}

func TestCheckTemplate(t *testing.T) {
	dir := t.TempDir()
	delims := rustache.DefaultDelimiters()
	partialsDir := filepath.Join(dir, "partials")
	writeFile(t, filepath.Join(partialsDir, "header.mustache"), "<h1>{{title}}</h1>")
	writeFile(t, filepath.Join(partialsDir, "shared", "nav.mustache"), "<nav/>")

	t.Run("clean template", func(t *testing.T) {
		path := filepath.Join(dir, "clean.mustache")
		writeFile(t, path, "Hello {{name}}, {{> header}}")
		assert.Empty(t, checkTemplate(path, delims, partialsDir, ".mustache"))
	})

	t.Run("parse error carries the line", func(t *testing.T) {
		path := filepath.Join(dir, "broken.mustache")
		writeFile(t, path, "ok\n{{#items}}never closed")

		issues := checkTemplate(path, delims, partialsDir, ".mustache")
		require.Len(t, issues, 1)
		assert.Equal(t, "parse", issues[0].Kind)
		assert.Equal(t, 2, issues[0].Line)
		assert.Contains(t, issues[0].Message, "unclosed section")
	})

	t.Run("unresolved partial", func(t *testing.T) {
		path := filepath.Join(dir, "missing.mustache")
		writeFile(t, path, "{{> header}}\n{{> footer}}")

		issues := checkTemplate(path, delims, partialsDir, ".mustache")
		require.Len(t, issues, 1)
		assert.Equal(t, "partial", issues[0].Kind)
		assert.Equal(t, 2, issues[0].Line)
		assert.Contains(t, issues[0].Message, `"footer"`)
	})

	t.Run("partial in a subdirectory resolves", func(t *testing.T) {
		path := filepath.Join(dir, "nested.mustache")
		writeFile(t, path, "{{> shared/nav}}")
		assert.Empty(t, checkTemplate(path, delims, partialsDir, ".mustache"))
	})

	t.Run("partial inside a section is found", func(t *testing.T) {
		path := filepath.Join(dir, "sectioned.mustache")
		writeFile(t, path, "{{#show}}{{> gone}}{{/show}}")

		issues := checkTemplate(path, delims, partialsDir, ".mustache")
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Message, `"gone"`)
	})

	t.Run("no partials directory configured", func(t *testing.T) {
		path := filepath.Join(dir, "nodir.mustache")
		writeFile(t, path, "{{> header}}")

		issues := checkTemplate(path, delims, "", ".mustache")
		require.Len(t, issues, 1)
		assert.Equal(t, "partial", issues[0].Kind)
		assert.Contains(t, issues[0].Message, "no partials directory")
	})

	t.Run("unreadable file", func(t *testing.T) {
		issues := checkTemplate(filepath.Join(dir, "absent.mustache"), delims, partialsDir, ".mustache")
		require.Len(t, issues, 1)
		assert.Equal(t, "read", issues[0].Kind)
	})
}

func TestCollectPartialRefs(t *testing.T) {
	tpl, err := rustache.Parse("{{> a}}{{#s}}{{> b}}{{^t}}{{> c}}{{/t}}{{/s}}{{> a}}", "refs")
	require.NoError(t, err)

	refs := collectPartialRefs(tpl.Nodes, nil)
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.Name
	}
	assert.Equal(t, []string{"a", "b", "c", "a"}, names)
}

func TestRenderCheckText(t *testing.T) {
	t.Run("no issues", func(t *testing.T) {
		buf := new(bytes.Buffer)
		r := output.NewRenderer(buf, new(bytes.Buffer), output.ModeText)

		renderCheckText(r, &CheckOutput{Summary: CheckSummary{FilesChecked: 3}})
		assert.Contains(t, buf.String(), "No issues found in 3 templates")
	})

	t.Run("issue table and summary", func(t *testing.T) {
		buf := new(bytes.Buffer)
		r := output.NewRenderer(buf, new(bytes.Buffer), output.ModeText)

		renderCheckText(r, &CheckOutput{
			Summary: CheckSummary{FilesChecked: 2, TotalIssues: 2, ParseErrors: 1, UnresolvedPartials: 1},
			Files: []CheckFileResult{
				{Path: "page.mustache", Issues: []CheckIssue{
					{Kind: "parse", Line: 4, Message: "unclosed section"},
					{Kind: "partial", Line: 9, Message: "partial \"footer\" does not resolve"},
				}},
			},
		})

		got := buf.String()
		assert.Contains(t, got, "page.mustache")
		assert.Contains(t, got, "Parse")
		assert.Contains(t, got, "Partial")
		assert.Contains(t, got, "Summary: 2 issues, 1 parse errors, 1 unresolved partials in 2 files")
	})
}

func TestRunCheck_EndToEnd(t *testing.T) {
	config.ResetConfig()
	dir := t.TempDir()
	partialsDir := filepath.Join(dir, "partials")
	writeFile(t, filepath.Join(partialsDir, "header.mustache"), "<h1>{{title}}</h1>")
	page := filepath.Join(dir, "page.mustache")
	writeFile(t, page, "{{> header}}\n{{> missing}}\n")

	t.Setenv("RUSTACHE_PARTIALS_DIR", partialsDir)

	cmd := NewCheckCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{page, "--format", "json"})

	err := cmd.Execute()
	require.Error(t, err, "unresolved partials should exit non-zero")
	assert.Contains(t, out.String(), `"unresolved_partials": 1`)
	assert.Contains(t, out.String(), `"missing"`)
}
