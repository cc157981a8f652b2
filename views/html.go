package views

import (
	"context"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/blockpress/markdown"
)

// markup is HTML written verbatim. Untyped string constants convert to it
// implicitly; a runtime string needs an explicit conversion, so dynamic text
// can only reach a page through text and attr, which escape it.
type markup string

// page accumulates the HTML of a component.
type page struct {
	b strings.Builder
}

func (p *page) lit(m markup) *page {
	p.b.WriteString(string(m))
	return p
}

func (p *page) text(s string) *page {
	p.b.WriteString(html.EscapeString(s))
	return p
}

func (p *page) num(n int) *page {
	p.b.WriteString(strconv.Itoa(n))
	return p
}

// attr writes ` name="value"` with value escaped.
func (p *page) attr(name markup, value string) *page {
	p.b.WriteString(" " + string(name) + `="` + html.EscapeString(value) + `"`)
	return p
}

// urlAttr writes ` name="url"` when raw is a URL safe to follow.
func (p *page) urlAttr(name markup, raw string) *page {
	// SafeURL output is already attribute-escaped
	if u := markdown.SafeURL(raw); u != "" {
		p.b.WriteString(" " + string(name) + `="` + u + `"`)
	}
	return p
}

func (p *page) out() markup {
	return markup(p.b.String())
}

// component turns prepared HTML into a component.
func component(m markup) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, string(m))
		return err
	})
}
