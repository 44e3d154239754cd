package docspdf

import (
	"encoding/base64"
	"fmt"
	"html"
	"html/template"
	"strings"
)

const (
	defaultImageType = "image/png"
	coverImageSize   = 140
)

var coverTmpl = template.Must(template.New("cover").Parse(`
<div class="pdf-cover" style="display: flex; flex-direction: column; justify-content: center; align-items: center; height: 100vh; page-break-after: always; text-align: center;">
  {{- if .Title}}
  <h1>{{.Title}}</h1>
  {{- end}}
  {{- if .Subtitle}}
  <h3>{{.Subtitle}}</h3>
  {{- end}}
  {{.Image}}
</div>
`))

// CoverHTML renders the cover page. Title and subtitle are escaped;
// imageHTML is inserted verbatim.
func CoverHTML(title, subtitle, imageHTML string) string {
	var b strings.Builder
	_ = coverTmpl.Execute(&b, struct {
		Title    string
		Subtitle string
		Image    template.HTML
	}{title, subtitle, template.HTML(imageHTML)})
	return b.String()
}

// ImageHTML embeds r as a data URL image. The bytes are base64-encoded
// unchanged and the content type is kept as given, falling back to
// image/png when empty.
func ImageHTML(r *Resource) string {
	if r == nil {
		return ""
	}
	contentType := r.ContentType
	if contentType == "" {
		contentType = defaultImageType
	}
	return fmt.Sprintf(`<img class="cover-img" src="data:%s;base64,%s" alt="" width="%d" height="%d" />`,
		html.EscapeString(contentType),
		base64.StdEncoding.EncodeToString(r.Data),
		coverImageSize, coverImageSize)
}
