package docspdf

import (
	"fmt"
	"strconv"
	"strings"
)

// PageSize represents paper dimensions in centimeters.
type PageSize struct {
	Width  float64 // Width in centimeters.
	Height float64 // Height in centimeters.
}

// Standard paper sizes.
var (
	A0      = PageSize{Width: 84.1, Height: 118.9}
	A1      = PageSize{Width: 59.4, Height: 84.1}
	A2      = PageSize{Width: 42.0, Height: 59.4}
	A3      = PageSize{Width: 29.7, Height: 42.0}
	A4      = PageSize{Width: 21.0, Height: 29.7}
	A5      = PageSize{Width: 14.8, Height: 21.0}
	A6      = PageSize{Width: 10.5, Height: 14.8}
	Letter  = PageSize{Width: 21.59, Height: 27.94}
	Legal   = PageSize{Width: 21.59, Height: 35.56}
	Tabloid = PageSize{Width: 27.94, Height: 43.18}
	Ledger  = PageSize{Width: 43.18, Height: 27.94}
)

var paperFormats = map[string]PageSize{
	"a0":      A0,
	"a1":      A1,
	"a2":      A2,
	"a3":      A3,
	"a4":      A4,
	"a5":      A5,
	"a6":      A6,
	"letter":  Letter,
	"legal":   Legal,
	"tabloid": Tabloid,
	"ledger":  Ledger,
}

// ParsePaperFormat returns the paper size for a format name such as "A4" or
// "letter". Names are case-insensitive.
func ParsePaperFormat(name string) (PageSize, error) {
	size, ok := paperFormats[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return PageSize{}, fmt.Errorf("docspdf: unknown paper format %q", name)
	}
	return size, nil
}

// Orientation represents the page orientation.
type Orientation int

const (
	// Portrait is the default vertical orientation.
	Portrait Orientation = iota
	// Landscape rotates the page to horizontal orientation.
	Landscape
)

// Margin represents page margins in centimeters.
type Margin struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// UniformMargin returns a Margin with the same value on all sides.
func UniformMargin(cm float64) Margin {
	return Margin{Top: cm, Right: cm, Bottom: cm, Left: cm}
}

// ParseMargin parses a CSS-like margin list: one value for all sides, or
// "top,right,bottom,left". Each value may carry a px, in, cm or mm unit; a
// bare number is read as CSS pixels.
func ParseMargin(s string) (Margin, error) {
	parts := strings.Split(s, ",")
	vals := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := parseLength(p)
		if err != nil {
			return Margin{}, err
		}
		vals = append(vals, v)
	}
	switch len(vals) {
	case 1:
		return UniformMargin(vals[0]), nil
	case 4:
		return Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}, nil
	default:
		return Margin{}, fmt.Errorf("docspdf: margin %q must have 1 or 4 values", s)
	}
}

// parseLength converts a length string into centimeters.
func parseLength(s string) (float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	scale := pxToCm(1)
	for _, u := range []struct {
		suffix string
		cm     float64
	}{
		{"px", pxToCm(1)},
		{"in", 2.54},
		{"cm", 1},
		{"mm", 0.1},
	} {
		if strings.HasSuffix(s, u.suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			scale = u.cm
			break
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("docspdf: invalid length %q", s)
	}
	return v * scale, nil
}

// PageConfig controls the PDF output parameters.
//
// A nil PageConfig or zero-value fields will use sensible defaults:
// A4 paper, portrait orientation, 32px margins, scale 1.0, with
// background graphics enabled.
type PageConfig struct {
	// Size specifies the paper size. Defaults to A4.
	Size PageSize

	// Orientation specifies portrait or landscape. Defaults to Portrait.
	Orientation Orientation

	// Margin specifies page margins in centimeters. Defaults to 32 CSS
	// pixels on all sides unless ExactMargin is set.
	Margin Margin

	// ExactMargin uses Margin as given, so a zero Margin prints without
	// margins.
	ExactMargin bool

	// Scale of the webpage rendering. Must be between 0.1 and 2.0. Defaults to 1.0.
	Scale float64

	// PrintBackground enables printing of background colors and images.
	PrintBackground bool

	// DisplayHeaderFooter enables the header and footer templates. It is
	// switched on automatically when either template is set.
	DisplayHeaderFooter bool

	// HeaderTemplate is an HTML template for the print header.
	// It uses the same format as Chrome's print header template, supporting
	// the classes: date, title, url, pageNumber, totalPages.
	HeaderTemplate string

	// FooterTemplate is an HTML template for the print footer.
	// It uses the same format as Chrome's print footer template.
	FooterTemplate string

	// PreferCSSPageSize gives precedence to any CSS @page size declared
	// in the document over the Size field.
	PreferCSSPageSize bool
}

// DefaultPageConfig returns a PageConfig with sensible defaults.
func DefaultPageConfig() PageConfig {
	return PageConfig{
		Size:            A4,
		Orientation:     Portrait,
		Margin:          UniformMargin(pxToCm(32)),
		Scale:           1.0,
		PrintBackground: true,
	}
}

// resolved returns a PageConfig with all zero values replaced by defaults.
func (p *PageConfig) resolved() PageConfig {
	d := DefaultPageConfig()
	if p == nil {
		return d
	}
	r := *p
	if r.Size == (PageSize{}) {
		r.Size = d.Size
	}
	if r.Scale <= 0 {
		r.Scale = d.Scale
	}
	if r.Margin == (Margin{}) && !r.ExactMargin {
		r.Margin = d.Margin
	}
	if r.HeaderTemplate != "" || r.FooterTemplate != "" {
		r.DisplayHeaderFooter = true
	}
	return r
}

// cmToInches converts centimeters to inches.
func cmToInches(cm float64) float64 {
	return cm / 2.54
}

// pxToCm converts CSS pixels (1/96 inch) to centimeters.
func pxToCm(px float64) float64 {
	return px * 2.54 / 96
}

// paperDimensions returns the paper width and height in inches,
// accounting for orientation.
func (p *PageConfig) paperDimensions() (width, height float64) {
	r := p.resolved()
	w := cmToInches(r.Size.Width)
	h := cmToInches(r.Size.Height)
	if r.Orientation == Landscape {
		return h, w
	}
	return w, h
}

// marginInches returns margins converted to inches.
func (p *PageConfig) marginInches() (top, right, bottom, left float64) {
	r := p.resolved()
	return cmToInches(r.Margin.Top),
		cmToInches(r.Margin.Right),
		cmToInches(r.Margin.Bottom),
		cmToInches(r.Margin.Left)
}
