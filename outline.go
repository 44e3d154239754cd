package docspdf

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Heading is one entry of the document outline.
type Heading struct {
	Text  string
	Level int
	ID    string
}

// permalinkSelector matches the self-link anchors documentation generators
// append to headings.
const permalinkSelector = "a.hash-link, a.anchor, a.headerlink, a.header-anchor"

var tagRe = regexp.MustCompile(`<[^>]*>`)

// Indexer assigns fresh ids to headings and records them in document order.
// The ids stay unique across every Index call on the same Indexer.
type Indexer struct {
	maxLevel int
	re       *regexp.Regexp
	seq      int
}

// NewIndexer returns an Indexer for <h1> through <hN>. Levels outside 1-6
// fall back to 4.
func NewIndexer(maxLevel int) *Indexer {
	if maxLevel < 1 || maxLevel > 6 {
		maxLevel = defaultMaxHeadingLevel
	}
	levels := fmt.Sprintf("[1-%d]", maxLevel)
	return &Indexer{
		maxLevel: maxLevel,
		re:       regexp.MustCompile(`(?is)<h(` + levels + `)(\s[^>]*)?>(.*?)</h` + levels + `\s*>`),
	}
}

// Index rewrites the id attribute of every matched heading in content and
// returns the rewritten content with the outline. Nothing but the id
// attribute of the start tag is changed.
func (ix *Indexer) Index(content string) (string, []Heading) {
	var headings []Heading
	out := ix.re.ReplaceAllStringFunc(content, func(m string) string {
		sub := ix.re.FindStringSubmatchIndex(m)
		level, _ := strconv.Atoi(m[sub[2]:sub[3]])
		attrs := ""
		if sub[4] >= 0 {
			attrs = m[sub[4]:sub[5]]
		}
		id := ix.nextID()
		headings = append(headings, Heading{
			Text:  headingText(m[sub[6]:sub[7]]),
			Level: level,
			ID:    id,
		})
		startEnd := len("<h") + 1 + len(attrs) + 1
		return "<h" + m[sub[2]:sub[3]] + withID(attrs, id) + ">" + m[startEnd:]
	})
	return out, headings
}

func (ix *Indexer) nextID() string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	var b [3]byte
	for i := range b {
		b[i] = alphabet[rand.IntN(len(alphabet))]
	}
	id := fmt.Sprintf("%s-%d", b[:], ix.seq)
	ix.seq++
	return id
}

// withID replaces the first id attribute in attrs, or appends one.
func withID(attrs, id string) string {
	start, end := idAttrSpan(attrs)
	if start < 0 {
		return attrs + ` id="` + id + `"`
	}
	return attrs[:start] + `id="` + id + `"` + attrs[end:]
}

// idAttrSpan returns the byte range of the first id attribute in the raw
// attribute list of a start tag, or -1, -1. Values are skipped whole, so
// "id=" inside a quoted value is never taken for an attribute.
func idAttrSpan(attrs string) (start, end int) {
	i := 0
	for i < len(attrs) {
		for i < len(attrs) && isAttrSpace(attrs[i]) {
			i++
		}
		nameStart := i
		for i < len(attrs) && !isAttrSpace(attrs[i]) && attrs[i] != '=' && attrs[i] != '/' {
			i++
		}
		name := attrs[nameStart:i]
		if name == "" {
			// Stray '=' or '/'.
			i++
			continue
		}

		j := i
		for j < len(attrs) && isAttrSpace(attrs[j]) {
			j++
		}
		if j < len(attrs) && attrs[j] == '=' {
			j++
			for j < len(attrs) && isAttrSpace(attrs[j]) {
				j++
			}
			if j < len(attrs) && (attrs[j] == '"' || attrs[j] == '\'') {
				if k := strings.IndexByte(attrs[j+1:], attrs[j]); k >= 0 {
					j += k + 2
				} else {
					j = len(attrs)
				}
			} else {
				for j < len(attrs) && !isAttrSpace(attrs[j]) {
					j++
				}
			}
			i = j
		}

		if strings.EqualFold(name, "id") {
			return nameStart, i
		}
	}
	return -1, -1
}

func isAttrSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// headingText returns the plain text of a heading's inner HTML without its
// permalink anchors.
func headingText(inner string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(inner))
	if err != nil {
		return strings.Join(strings.Fields(tagRe.ReplaceAllString(inner, "")), " ")
	}
	doc.Find(permalinkSelector).Remove()
	doc.Find("a").FilterFunction(func(_ int, s *goquery.Selection) bool {
		t := strings.TrimSpace(strings.ReplaceAll(s.Text(), "\u200b", ""))
		return t == "" || t == "#" || t == "¶"
	}).Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}
