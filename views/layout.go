// Package views holds the default HTML components of the blog. The server
// reaches them only through its ViewFuncs, so a site can swap any of them.
package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Layout wraps body in the site chrome: head metadata, navigation and footer.
func Layout(site SiteConfig, meta PageMeta, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := site.Name
		if meta.Title != "" && meta.Title != site.Name {
			title = meta.Title + " | " + site.Name
		}
		desc := meta.Description
		if desc == "" {
			desc = site.Description
		}
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}

		var p page
		p.lit(`<!doctype html><html lang="en"><head><meta charset="utf-8">`)
		p.lit(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		p.lit(`<title>`).text(title).lit(`</title>`)
		if desc != "" {
			p.lit(`<meta name="description"`).attr("content", desc).lit(`>`)
			p.lit(`<meta property="og:description"`).attr("content", desc).lit(`>`)
		}
		p.lit(`<meta property="og:title"`).attr("content", title).lit(`>`)
		p.lit(`<meta property="og:type"`).attr("content", ogType).lit(`>`)
		if meta.URL != "" {
			p.lit(`<link rel="canonical"`).attr("href", meta.URL).lit(`>`)
			p.lit(`<meta property="og:url"`).attr("content", meta.URL).lit(`>`)
		}
		p.lit(`<link rel="alternate" type="application/rss+xml"`).attr("title", site.Name).lit(` href="/feed.xml">`)
		p.lit(`<link rel="stylesheet" href="/public/styles.css">`)
		jsonLD := meta.JSONLD
		if jsonLD == "" {
			jsonLD = WebsiteJsonLD(site)
		}
		// JSON from encoding/json escapes <, > and &, so it cannot close the script tag.
		p.lit(`<script type="application/ld+json">`).lit(markup(jsonLD)).lit(`</script>`)
		p.lit(`</head><body><header class="site-header"><a class="site-name" href="/blog/">`).text(site.Name)
		p.lit(`</a></header><main class="site-main">`)
		if _, err := io.WriteString(w, string(p.out())); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main><footer class="site-footer"><a href="/feed.xml">RSS</a></footer></body></html>`)
		return err
	})
}

// NotFound is the page for a missing document. It always links back to the
// listing.
func NotFound(site SiteConfig) templ.Component {
	return Layout(site, PageMeta{Title: "Not found"}, component(
		`<section class="not-found"><h1>Post not found</h1>`+
			`<p>The post you are looking for does not exist or is no longer available.</p>`+
			`<a class="blog-link" href="/blog/">Back to all posts</a></section>`))
}

// ServerError is the page for unexpected failures.
func ServerError(site SiteConfig) templ.Component {
	return Layout(site, PageMeta{Title: "Something went wrong"}, component(
		`<section class="server-error"><h1>Something went wrong</h1>`+
			`<p>Please try again in a moment.</p>`+
			`<a class="blog-link" href="/blog/">Back to all posts</a></section>`))
}
