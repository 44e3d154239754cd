package docspdf

import (
	"html/template"
	"strings"
)

// DefaultTOCTitle heads the table of contents when no title is configured.
const DefaultTOCTitle = "Table of Contents"

var tocTmpl = template.Must(template.New("toc").Parse(`
<div class="toc-page" style="page-break-after: always;">
  <h2 class="toc-header">{{.Title}}</h2>
  <ul class="toc-list" style="list-style: none; padding-left: 0;">
{{- range .Items}}
    <li class="toc-item toc-item-{{.Level}}" style="padding-left: {{.Indent}}em;"><a href="#{{.ID}}">{{.Text}}</a></li>
{{- end}}
  </ul>
</div>
`))

type tocItem struct {
	Heading
	Indent float64
}

// BuildTOC renders the outline as a flat list, indenting each item by its
// heading level. An empty outline yields the container without items.
func BuildTOC(headings []Heading, title string) string {
	if title == "" {
		title = DefaultTOCTitle
	}
	items := make([]tocItem, len(headings))
	for i, h := range headings {
		items[i] = tocItem{Heading: h, Indent: float64(max(h.Level-1, 0)) * 1.5}
	}
	var b strings.Builder
	// The template only ranges over plain values; execution cannot fail.
	_ = tocTmpl.Execute(&b, struct {
		Title string
		Items []tocItem
	}{title, items})
	return b.String()
}
