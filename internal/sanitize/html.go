// Package sanitize cleans the HTML fragments returned by the enhancement
// model before they are rendered.
package sanitize

import (
	"html"
	"io"
	"regexp"
	"strings"

	xhtml "golang.org/x/net/html"
)

var allowedTags = map[string]bool{
	"ul": true, "ol": true, "li": true, "p": true, "br": true,
	"strong": true, "em": true, "b": true, "i": true, "span": true,
}

// Elements whose content is dropped along with the tag.
var droppedContent = map[string]bool{
	"script": true, "style": true, "iframe": true, "object": true, "template": true,
}

var classPattern = regexp.MustCompile(`^[A-Za-z0-9 _-]*$`)

// Fragment returns s with every tag outside the allowlist removed (their
// text is kept), all attributes other than a plain class on span dropped,
// and comments stripped. Text is re-escaped.
func Fragment(s string) string {
	var b strings.Builder
	z := xhtml.NewTokenizer(strings.NewReader(s))
	skip := 0

	for {
		tt := z.Next()
		if tt == xhtml.ErrorToken {
			if z.Err() != io.EOF {
				return html.EscapeString(s)
			}
			return b.String()
		}
		tok := z.Token()

		switch tt {
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			if droppedContent[tok.Data] {
				if tt == xhtml.StartTagToken {
					skip++
				}
				continue
			}
			if skip > 0 || !allowedTags[tok.Data] {
				continue
			}
			b.WriteString(startTag(tok, tt == xhtml.SelfClosingTagToken))
		case xhtml.EndTagToken:
			if droppedContent[tok.Data] {
				if skip > 0 {
					skip--
				}
				continue
			}
			if skip > 0 || !allowedTags[tok.Data] || tok.Data == "br" {
				continue
			}
			b.WriteString("</" + tok.Data + ">")
		case xhtml.TextToken:
			if skip > 0 {
				continue
			}
			b.WriteString(html.EscapeString(tok.Data))
		}
	}
}

func startTag(tok xhtml.Token, selfClosing bool) string {
	var b strings.Builder
	b.WriteString("<" + tok.Data)
	if tok.Data == "span" {
		for _, a := range tok.Attr {
			if a.Key == "class" && a.Namespace == "" && classPattern.MatchString(a.Val) {
				b.WriteString(` class="` + a.Val + `"`)
				break
			}
		}
	}
	if selfClosing || tok.Data == "br" {
		b.WriteString(" />")
	} else {
		b.WriteString(">")
	}
	return b.String()
}

// Style selects how Flatten marks emphasis.
type Style int

const (
	Plain    Style = iota // no emphasis markers
	Markdown              // **bold**, _italic_, highlighted spans as bold
)

// Flatten converts a fragment to readable text: list items become "- item"
// lines, paragraphs and breaks become newlines, and all other markup is
// removed. Entities are decoded.
func Flatten(s string, style Style) string {
	var b strings.Builder
	z := xhtml.NewTokenizer(strings.NewReader(s))
	skip := 0
	var spans []bool // whether each open span emitted a marker

	emph := func(marker string) {
		if style == Markdown {
			b.WriteString(marker)
		}
	}

	for {
		tt := z.Next()
		if tt == xhtml.ErrorToken {
			break
		}
		tok := z.Token()

		switch tt {
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			if droppedContent[tok.Data] && tt == xhtml.StartTagToken {
				skip++
				continue
			}
			if skip > 0 {
				continue
			}
			switch tok.Data {
			case "li":
				newline(&b)
				b.WriteString("- ")
			case "p", "ul", "ol":
				newline(&b)
			case "br":
				b.WriteString("\n")
			case "strong", "b":
				emph("**")
			case "em", "i":
				emph("_")
			case "span":
				hl := isHighlight(tok)
				spans = append(spans, hl)
				if hl {
					emph("**")
				}
			}
		case xhtml.EndTagToken:
			if droppedContent[tok.Data] {
				if skip > 0 {
					skip--
				}
				continue
			}
			if skip > 0 {
				continue
			}
			switch tok.Data {
			case "li", "p", "ul", "ol":
				newline(&b)
			case "strong", "b":
				emph("**")
			case "em", "i":
				emph("_")
			case "span":
				if n := len(spans); n > 0 {
					if spans[n-1] {
						emph("**")
					}
					spans = spans[:n-1]
				}
			}
		case xhtml.TextToken:
			if skip > 0 {
				continue
			}
			b.WriteString(collapseSpace(tok.Data))
		}
	}

	return tidy(b.String())
}

func isHighlight(tok xhtml.Token) bool {
	for _, a := range tok.Attr {
		if a.Key == "class" && strings.Contains(a.Val, "bg-green") {
			return true
		}
	}
	return false
}

func newline(b *strings.Builder) {
	s := b.String()
	if s == "" || strings.HasSuffix(s, "\n") {
		return
	}
	b.WriteString("\n")
}

var spaceRun = regexp.MustCompile(`[ \t\r\n]+`)

func collapseSpace(s string) string {
	return spaceRun.ReplaceAllString(s, " ")
}

// tidy trims each line and drops blank ones.
func tidy(s string) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "-" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
