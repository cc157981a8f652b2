package views

import (
	"time"

	"github.com/eringen/blockpress/content"
	"github.com/eringen/blockpress/editor"
)

// SiteConfig holds the site-wide settings every page needs. The server
// fills it from its own configuration so nothing is hardcoded here.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
	Author      string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head>.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	JSONLD      string
}

// PostCard is the listing form of a document.
type PostCard struct {
	ID          string
	Heading     string
	Description string
	Author      string
	CoverImage  string
	Date        string
	Tags        []string
}

// NewPostCard summarises doc for listings.
func NewPostCard(doc content.Document) PostCard {
	card := PostCard{
		ID:          doc.ID,
		Heading:     doc.MainHeading,
		Description: doc.Description,
		Author:      doc.Author,
		CoverImage:  doc.CoverImage,
		Tags:        content.NonEmpty(doc.Tags),
	}
	if !doc.PublishedAt.IsZero() {
		card.Date = doc.PublishedAt.Format("Jan 2, 2006")
	}
	return card
}

// PostCards summarises every document in docs.
func PostCards(docs []content.Document) []PostCard {
	cards := make([]PostCard, 0, len(docs))
	for _, d := range docs {
		cards = append(cards, NewPostCard(d))
	}
	return cards
}

// Listing is one page of the public blog index.
type Listing struct {
	Posts      []PostCard
	Page       int
	TotalPages int
	// Stale is set when the posts come from a local snapshot because the
	// blog API could not be reached.
	Stale bool
}

// Image is an uploaded image in the admin library.
type Image struct {
	Filename     string
	OriginalName string
	Width        int
	Height       int
	Size         int
	UploadedAt   time.Time
}

// URL is where the image is served from.
func (i Image) URL() string {
	return "/public/uploads/" + PathEscape(i.Filename)
}

// Dashboard is the admin landing page.
type Dashboard struct {
	Posts   []PostCard
	Drafts  []DraftLink
	Message string
	Error   string
	CSRF    string
}

// DraftLink points at an open editor draft.
type DraftLink struct {
	ID      string
	Heading string
	BlogID  string
}

// EditorPage is the editor form for one draft.
type EditorPage struct {
	DraftID string
	Draft   editor.Draft
	Error   string
	Message string
	CSRF    string
	Images  []Image
}
