package views

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/blockpress/markdown"
	"github.com/eringen/blockpress/render"
)

// BlogList is the paginated public index.
func BlogList(site SiteConfig, l Listing) templ.Component {
	var p page
	p.lit(`<section class="blog-index"><h1>`).text(site.Name).lit(`</h1>`)
	if site.Description != "" {
		p.lit(`<p class="blog-intro">`).text(site.Description).lit(`</p>`)
	}
	if l.Stale {
		p.lit(`<p class="blog-notice">Showing saved posts while the blog is unavailable.</p>`)
	}
	if len(l.Posts) == 0 {
		p.lit(`<p class="blog-empty">No posts yet.</p>`)
	} else {
		p.lit(`<div class="blog-grid">`)
		for _, c := range l.Posts {
			writeCard(&p, c)
		}
		p.lit(`</div>`)
	}
	writePager(&p, l.Page, l.TotalPages)
	p.lit(`</section>`)

	meta := PageMeta{Title: site.Name, URL: BuildURL(site.URL, "blog")}
	if l.Page > 1 {
		meta.URL += "?page=" + strconv.Itoa(l.Page)
	}
	return Layout(site, meta, component(p.out()))
}

func writeCard(p *page, c PostCard) {
	p.lit(`<article class="blog-card">`)
	if markdown.SafeURL(c.CoverImage) != "" {
		p.lit(`<img class="blog-card-cover"`)
		p.urlAttr("src", c.CoverImage)
		p.lit(` alt="" loading="lazy">`)
	}
	p.lit(`<h2><a`).attr("href", PostURL(c.ID)).lit(`>`).text(c.Heading).lit(`</a></h2>`)
	if c.Description != "" {
		p.lit(`<p>`).text(c.Description).lit(`</p>`)
	}
	if c.Author != "" || c.Date != "" {
		p.lit(`<p class="blog-card-meta">`).text(c.Author)
		if c.Author != "" && c.Date != "" {
			p.lit(` · `)
		}
		p.text(c.Date).lit(`</p>`)
	}
	p.lit(`</article>`)
}

func writePager(p *page, current, total int) {
	if total <= 1 {
		return
	}
	p.lit(`<nav class="blog-pager" aria-label="Pagination">`)
	if current > 1 {
		p.lit(`<a rel="prev" href="/blog/?page=`).num(current - 1).lit(`">Newer</a>`)
	}
	p.lit(`<span>Page `).num(current).lit(` of `).num(total).lit(`</span>`)
	if current < total {
		p.lit(`<a rel="next" href="/blog/?page=`).num(current + 1).lit(`">Older</a>`)
	}
	p.lit(`</nav>`)
}

// BlogPage is a single article with related posts below it.
func BlogPage(site SiteConfig, a render.Article, related []PostCard) templ.Component {
	meta := PageMeta{
		Title:       a.Heading,
		Description: a.Description,
		URL:         BuildURL(site.URL, "blog", a.ID),
		OGType:      "article",
		JSONLD:      BlogPostingJsonLD(site, a),
	}
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := render.Body(a).Render(ctx, w); err != nil {
			return err
		}
		var p page
		if len(related) > 0 {
			p.lit(`<section class="blog-related"><h2>Related posts</h2><div class="blog-grid">`)
			for _, c := range related {
				writeCard(&p, c)
			}
			p.lit(`</div></section>`)
		}
		p.lit(`<p class="blog-back"><a class="blog-link" href="/blog/">All posts</a></p>`)
		_, err := io.WriteString(w, string(p.out()))
		return err
	})
	return Layout(site, meta, body)
}
