package docspdf

import (
	"bytes"
	"io"
	"os"
	"slices"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// Result holds a generated PDF together with the document it was printed
// from.
//
// It is safe to call its methods multiple times; the underlying data is
// never modified.
type Result struct {
	data    []byte
	html    string
	outline []Heading
}

// Bytes returns the raw PDF content.
func (r *Result) Bytes() []byte {
	return r.data
}

// Reader returns an [*bytes.Reader] over the PDF content.
func (r *Result) Reader() *bytes.Reader {
	return bytes.NewReader(r.data)
}

// WriteTo writes the full PDF content to w. It implements [io.WriterTo].
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.data)
	return int64(n), err
}

// WriteToFile writes the PDF to the file at path, creating it if needed.
func (r *Result) WriteToFile(path string, perm os.FileMode) error {
	return os.WriteFile(path, r.data, perm)
}

// Len returns the size of the PDF in bytes.
func (r *Result) Len() int {
	return len(r.data)
}

// HTML returns the body markup that was printed: cover, table of contents
// and content after exclude selectors were applied.
func (r *Result) HTML() string {
	return r.html
}

// Outline returns the headings listed in the table of contents.
func (r *Result) Outline() []Heading {
	return slices.Clone(r.outline)
}

// Markdown converts the printed document to Markdown.
func (r *Result) Markdown() (string, error) {
	return htmltomarkdown.ConvertString(r.html)
}
