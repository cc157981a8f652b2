// Package render projects persisted blog documents into a view model and
// writes that model as HTML or Markdown. Projection never mutates the input.
package render

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/blockpress/content"
	"github.com/eringen/blockpress/markdown"
)

const dateLayout = "Jan 2, 2006"

// NodeKind identifies what a Node renders as.
type NodeKind int

const (
	NodeParagraph NodeKind = iota
	NodeList
	NodeImage
)

// Node is one renderable block. Text holds paragraph source, Items the
// non-empty bullets and Src a URL that passed markdown.SafeURL.
type Node struct {
	Kind  NodeKind
	Text  string
	Items []string
	Src   string
}

// SectionView is a section with its renderable nodes.
type SectionView struct {
	Subheading string
	Nodes      []Node
}

// Article is the display form of a document.
type Article struct {
	ID            string
	Heading       string
	Description   string
	CoverImage    string
	Author        string
	AuthorInitial string
	Tags          []string
	Date          string
	DateISO       string
	DaysAgo       int
	Sections      []SectionView
	Conclusion    string
}

// Age describes DaysAgo for display, or "" for unpublished articles.
func (a Article) Age() string {
	switch {
	case a.Date == "":
		return ""
	case a.DaysAgo == 0:
		return "today"
	case a.DaysAgo == 1:
		return "1 day ago"
	default:
		return fmt.Sprintf("%d days ago", a.DaysAgo)
	}
}

// Counts returns how many paragraph, list and image nodes the article holds.
func (a Article) Counts() (paragraphs, lists, images int) {
	for _, s := range a.Sections {
		for _, n := range s.Nodes {
			switch n.Kind {
			case NodeParagraph:
				paragraphs++
			case NodeList:
				lists++
			case NodeImage:
				images++
			}
		}
	}
	return paragraphs, lists, images
}

// Project builds the article for doc as seen at now. Blank paragraphs, lists
// without items, images without a usable URL and unknown block types produce
// no node.
func Project(doc content.Document, now time.Time) Article {
	a := Article{
		ID:            doc.ID,
		Heading:       doc.MainHeading,
		Description:   strings.TrimSpace(doc.Description),
		Author:        strings.TrimSpace(doc.Author),
		AuthorInitial: doc.AuthorInitial(),
		Tags:          content.NonEmpty(doc.Tags),
		Conclusion:    strings.TrimSpace(doc.Conclusion),
	}
	if markdown.SafeURL(doc.CoverImage) != "" {
		a.CoverImage = strings.TrimSpace(doc.CoverImage)
	}
	if !doc.PublishedAt.IsZero() {
		a.Date = doc.PublishedAt.Format(dateLayout)
		a.DateISO = doc.PublishedAt.UTC().Format(time.RFC3339)
		a.DaysAgo = doc.DaysSince(now)
	}
	for _, s := range doc.Sections {
		a.Sections = append(a.Sections, projectSection(s))
	}
	return a
}

func projectSection(s content.Section) SectionView {
	v := SectionView{Subheading: strings.TrimSpace(s.Subheading)}
	for _, b := range s.Blocks {
		switch b := b.(type) {
		case content.Paragraph:
			if strings.TrimSpace(b.Content) != "" {
				v.Nodes = append(v.Nodes, Node{Kind: NodeParagraph, Text: b.Content})
			}
		case content.Bullet:
			if items := content.NonEmpty(b.Bullets); len(items) > 0 {
				v.Nodes = append(v.Nodes, Node{Kind: NodeList, Items: items})
			}
		case content.Image:
			if markdown.SafeURL(b.ImageURL) != "" {
				v.Nodes = append(v.Nodes, Node{Kind: NodeImage, Src: strings.TrimSpace(b.ImageURL)})
			}
		}
	}
	return v
}

// Body returns a component that writes the article as HTML.
func Body(a Article) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, HTML(a))
		return err
	})
}

// HTML writes the article as an HTML fragment.
func HTML(a Article) string {
	var b strings.Builder
	b.WriteString(`<article class="blog-article">`)
	b.WriteString(`<header class="blog-header"><h1 class="blog-title">` + html.EscapeString(a.Heading) + `</h1>`)
	if a.Description != "" {
		b.WriteString(`<p class="blog-description">` + html.EscapeString(a.Description) + `</p>`)
	}
	b.WriteString(`<div class="blog-meta"><span class="blog-avatar" aria-hidden="true">` + html.EscapeString(a.AuthorInitial) + `</span>`)
	if a.Author != "" {
		b.WriteString(`<span class="blog-author">` + html.EscapeString(a.Author) + `</span>`)
	}
	if a.Date != "" {
		b.WriteString(`<time datetime="` + a.DateISO + `">` + a.Date + `</time>`)
		b.WriteString(`<span class="blog-age">` + a.Age() + `</span>`)
	}
	b.WriteString(`</div>`)
	if len(a.Tags) > 0 {
		b.WriteString(`<ul class="blog-tags">`)
		for _, t := range a.Tags {
			b.WriteString(`<li>` + html.EscapeString(t) + `</li>`)
		}
		b.WriteString(`</ul>`)
	}
	b.WriteString(`</header>`)
	if a.CoverImage != "" {
		b.WriteString(`<img class="blog-cover" src="` + markdown.SafeURL(a.CoverImage) + `" alt="` + html.EscapeString(a.Heading) + `">`)
	}

	for _, s := range a.Sections {
		b.WriteString(`<section class="blog-section">`)
		if s.Subheading != "" {
			b.WriteString(`<h2>` + html.EscapeString(s.Subheading) + `</h2>`)
		}
		for _, n := range s.Nodes {
			writeNode(&b, n)
		}
		b.WriteString(`</section>`)
	}

	if a.Conclusion != "" {
		b.WriteString(`<aside class="blog-conclusion"><h2>Conclusion</h2><p>` + markdown.Inline(a.Conclusion) + `</p></aside>`)
	}
	b.WriteString(`</article>`)
	return b.String()
}

func writeNode(b *strings.Builder, n Node) {
	switch n.Kind {
	case NodeParagraph:
		b.WriteString(`<p>` + markdown.Inline(n.Text) + `</p>`)
	case NodeList:
		b.WriteString(`<ul class="blog-list">`)
		for _, item := range n.Items {
			b.WriteString(`<li>` + markdown.Inline(item) + `</li>`)
		}
		b.WriteString(`</ul>`)
	case NodeImage:
		b.WriteString(`<figure class="blog-figure"><img src="` + markdown.SafeURL(n.Src) + `" alt="" loading="lazy"></figure>`)
	}
}

// Markdown writes the article as Markdown for terminals and plain-text
// consumers.
func Markdown(a Article) string {
	var b strings.Builder
	b.WriteString("# " + a.Heading + "\n\n")
	if a.Description != "" {
		b.WriteString("_" + a.Description + "_\n\n")
	}
	var meta []string
	if a.Author != "" {
		meta = append(meta, "By "+a.Author)
	}
	if a.Date != "" {
		meta = append(meta, a.Date+" ("+a.Age()+")")
	}
	if len(a.Tags) > 0 {
		meta = append(meta, "Tags: "+strings.Join(a.Tags, ", "))
	}
	if len(meta) > 0 {
		b.WriteString(strings.Join(meta, " · ") + "\n\n")
	}
	if a.CoverImage != "" {
		b.WriteString("![cover](" + a.CoverImage + ")\n\n")
	}
	for _, s := range a.Sections {
		if s.Subheading != "" {
			b.WriteString("## " + s.Subheading + "\n\n")
		}
		for _, n := range s.Nodes {
			switch n.Kind {
			case NodeParagraph:
				b.WriteString(n.Text + "\n\n")
			case NodeList:
				for _, item := range n.Items {
					b.WriteString("- " + item + "\n")
				}
				b.WriteString("\n")
			case NodeImage:
				b.WriteString("![](" + n.Src + ")\n\n")
			}
		}
	}
	if a.Conclusion != "" {
		b.WriteString("## Conclusion\n\n" + a.Conclusion + "\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}
