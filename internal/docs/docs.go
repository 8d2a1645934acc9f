// Package docs renders a hive's directive table to HTML for the cmd/xudd
// docs subcommand, following the teacher's markdown-to-HTML conversion
// (goldmark with GFM tables) in internal/web/server.go. Purely
// introspective: nothing here is consulted by the dispatch loop.
package docs

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/xudd/xudd/hive"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// RenderDirectiveTableMarkdown produces a GitHub-flavored Markdown table
// listing every actor registered on h, by local/qualified ID, and the
// directives it handles.
func RenderDirectiveTableMarkdown(h *hive.Hive) string {
	table := h.DirectiveTable()

	ids := make([]string, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	b.WriteString("| Actor | Directives |\n")
	b.WriteString("| --- | --- |\n")
	for _, id := range ids {
		directives := table[id]
		if len(directives) == 0 {
			b.WriteString(fmt.Sprintf("| `%s` | _none_ |\n", id))
			continue
		}
		quoted := make([]string, len(directives))
		for i, d := range directives {
			quoted[i] = fmt.Sprintf("`%s`", d)
		}
		b.WriteString(fmt.Sprintf(
			"| `%s` | %s |\n", id, strings.Join(quoted, ", ")))
	}

	return b.String()
}

// RenderDirectiveTable renders h's directive table as an HTML fragment,
// suitable for embedding in a docs page.
func RenderDirectiveTable(h *hive.Hive) (template.HTML, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)

	var buf bytes.Buffer
	if err := md.Convert(
		[]byte(RenderDirectiveTableMarkdown(h)), &buf,
	); err != nil {
		return "", fmt.Errorf("docs: render directive table: %w", err)
	}

	return template.HTML(buf.String()), nil
}
