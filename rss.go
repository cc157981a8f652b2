package blockpress

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/blockpress/content"
	"github.com/eringen/blockpress/views"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Author      string   `xml:"author,omitempty"`
	Categories  []string `xml:"category"`
	PubDate     string   `xml:"pubDate,omitempty"`
	GUID        string   `xml:"guid"`
}

func (a *App) buildFeed(docs []content.Document) rssXML {
	base := a.Config.URL
	items := make([]rssItem, 0, len(docs))
	for _, d := range docs {
		pubDate := ""
		if !d.PublishedAt.IsZero() {
			pubDate = d.PublishedAt.UTC().Format(time.RFC1123Z)
		}
		postURL := views.BuildURL(base, "blog", d.ID)
		items = append(items, rssItem{
			Title:       d.MainHeading,
			Link:        postURL,
			Description: d.Description,
			Author:      d.Author,
			Categories:  content.NonEmpty(d.Tags),
			PubDate:     pubDate,
			GUID:        postURL,
		})
	}
	return rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        views.BuildURL(base, "blog"),
			Description: a.Config.Description,
			Items:       items,
		},
	}
}

func (a *App) renderRSS(c echo.Context, docs []content.Document) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(a.buildFeed(docs))
}
