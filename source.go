package blockpress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/eringen/blockpress/blogapi"
	"github.com/eringen/blockpress/content"
)

// BlogAPI is the read side of the blog API.
type BlogAPI interface {
	ListBlogs(ctx context.Context, p blogapi.Page) (blogapi.Listing, error)
	GetBlog(ctx context.Context, id string) (content.Document, error)
	RelatedBlogs(ctx context.Context, id string, p blogapi.Page) ([]content.Document, error)
}

// Served tells where a Source answer came from.
type Served int

const (
	ServedLive Served = iota
	ServedSnapshot
	ServedSample
)

func (s Served) String() string {
	switch s {
	case ServedSnapshot:
		return "snapshot"
	case ServedSample:
		return "sample"
	default:
		return "live"
	}
}

// Listing is one page of documents and where it came from.
type Listing struct {
	Blogs      []content.Document
	Page       int
	TotalPages int
	TotalBlogs int
	Served     Served
}

// Source reads documents through the cache, then the API, then the local
// store. When the API cannot be reached the last snapshot of the requested
// content is served. When the API answers with success:false only bundled
// samples are served, since a snapshot may hold a document the API has
// since removed.
type Source struct {
	api   BlogAPI
	cache Cache
	store *Store
	log   zerolog.Logger
}

// NewSource wires a Source. cache may be nil.
func NewSource(api BlogAPI, cache Cache, store *Store, log zerolog.Logger) *Source {
	return &Source{api: api, cache: cache, store: store, log: log}
}

// List returns one page of the listing.
func (s *Source) List(ctx context.Context, p blogapi.Page) (Listing, error) {
	p = p.Normalize()
	key := "list:" + strconv.Itoa(p.Page) + ":" + strconv.Itoa(p.Limit)

	var cached Listing
	if s.cached(ctx, key, &cached) {
		return cached, nil
	}

	live, err := s.api.ListBlogs(ctx, p)
	if err == nil {
		l := Listing{
			Blogs:      live.Blogs,
			Page:       live.Page,
			TotalPages: live.TotalPages,
			TotalBlogs: live.TotalBlogs,
		}
		if l.Page == 0 {
			l.Page = p.Page
		}
		if err := s.store.SaveDocuments(live.Blogs, OriginSnapshot); err != nil {
			s.log.Warn().Err(err).Msg("snapshot listing")
		}
		s.remember(ctx, key, l)
		return l, nil
	}

	if blogapi.IsTransport(err) {
		s.log.Warn().Err(err).Int("page", p.Page).Msg("blog api unreachable, serving snapshot")
		l, serr := s.storedListing(OriginSnapshot, ServedSnapshot, p)
		if serr != nil {
			return Listing{}, errors.Join(err, serr)
		}
		if l.TotalBlogs > 0 {
			return l, nil
		}
	} else {
		s.log.Warn().Err(err).Int("page", p.Page).Msg("blog api refused listing, serving samples")
	}
	l, serr := s.storedListing(OriginSample, ServedSample, p)
	if serr != nil {
		return Listing{}, errors.Join(err, serr)
	}
	return l, nil
}

func (s *Source) storedListing(origin Origin, served Served, p blogapi.Page) (Listing, error) {
	docs, total, err := s.store.ListDocuments(origin, p.Page, p.Limit)
	if err != nil {
		return Listing{}, err
	}
	return Listing{
		Blogs:      docs,
		Page:       p.Page,
		TotalPages: (total + p.Limit - 1) / p.Limit,
		TotalBlogs: total,
		Served:     served,
	}, nil
}

// Get returns a single document. The returned error is the API's when no
// fallback applies; blogapi.ErrNotFound and blogapi.IsTransport classify it.
func (s *Source) Get(ctx context.Context, id string) (content.Document, Served, error) {
	key := "blog:" + id

	var cached content.Document
	if s.cached(ctx, key, &cached) {
		return cached, ServedLive, nil
	}

	doc, err := s.api.GetBlog(ctx, id)
	if err == nil {
		if err := s.store.SaveDocument(doc, OriginSnapshot); err != nil {
			s.log.Warn().Err(err).Str("id", id).Msg("snapshot document")
		}
		s.remember(ctx, key, doc)
		return doc, ServedLive, nil
	}

	if blogapi.IsTransport(err) {
		if snap, serr := s.store.GetDocument(id, OriginSnapshot); serr == nil {
			s.log.Warn().Err(err).Str("id", id).Msg("blog api unreachable, serving snapshot")
			return snap, ServedSnapshot, nil
		}
	}
	if sample, serr := s.store.GetDocument(id, OriginSample); serr == nil {
		return sample, ServedSample, nil
	}
	return content.Document{}, ServedLive, fmt.Errorf("source: get %s: %w", id, err)
}

// Related returns up to limit documents related to doc. It never fails: when
// the API cannot answer, related posts are picked from stored documents by
// shared tags.
func (s *Source) Related(ctx context.Context, doc content.Document, limit int) []content.Document {
	key := "related:" + doc.ID + ":" + strconv.Itoa(limit)

	var cached []content.Document
	if s.cached(ctx, key, &cached) {
		return cached
	}

	related, err := s.api.RelatedBlogs(ctx, doc.ID, blogapi.Page{Page: 1, Limit: limit})
	if err == nil {
		related = withoutID(related, doc.ID)
		if len(related) > limit {
			related = related[:limit]
		}
		s.remember(ctx, key, related)
		return related
	}

	s.log.Debug().Err(err).Str("id", doc.ID).Msg("related posts from store")
	origin := OriginSnapshot
	if _, serr := s.store.GetDocument(doc.ID, OriginSample); serr == nil {
		origin = OriginSample
	}
	stored, _, serr := s.store.ListDocuments(origin, 1, blogapi.MaxLimit)
	if serr != nil {
		return nil
	}
	related = FilterRelated(doc, stored)
	if len(related) > limit {
		related = related[:limit]
	}
	return related
}

// Remember records a document the admin just saved and drops cached pages.
func (s *Source) Remember(ctx context.Context, doc content.Document) {
	if doc.ID != "" {
		if err := s.store.SaveDocument(doc, OriginSnapshot); err != nil {
			s.log.Warn().Err(err).Str("id", doc.ID).Msg("snapshot saved document")
		}
	}
	s.Invalidate(ctx)
}

// Forget removes a deleted document's snapshot and drops cached pages.
func (s *Source) Forget(ctx context.Context, id string) {
	if err := s.store.DeleteDocument(id); err != nil {
		s.log.Warn().Err(err).Str("id", id).Msg("drop snapshot")
	}
	s.Invalidate(ctx)
}

// Invalidate clears the cache.
func (s *Source) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("invalidate cache")
	}
}

func (s *Source) cached(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache read")
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache decode")
		return false
	}
	return true
}

func (s *Source) remember(ctx context.Context, key string, val any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(val)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache encode")
		return
	}
	if err := s.cache.Set(ctx, key, raw); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache write")
	}
}

func withoutID(docs []content.Document, id string) []content.Document {
	out := make([]content.Document, 0, len(docs))
	for _, d := range docs {
		if d.ID != id {
			out = append(out, d)
		}
	}
	return out
}

// FilterRelated finds documents that share at least one tag with current.
func FilterRelated(current content.Document, docs []content.Document) []content.Document {
	tagSet := make(map[string]struct{})
	for _, t := range current.Tags {
		if tag := normalizeTag(t); tag != "" {
			tagSet[tag] = struct{}{}
		}
	}
	var related []content.Document
	for _, d := range docs {
		if d.ID == current.ID {
			continue
		}
		for _, t := range d.Tags {
			if _, ok := tagSet[normalizeTag(t)]; ok {
				related = append(related, d)
				break
			}
		}
	}
	return related
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
