package blockpress

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/eringen/blockpress/blogapi"
	"github.com/eringen/blockpress/content"
)

var (
	errUnreachable = &blogapi.TransportError{Op: "GET /blogs/get-all-blogs", Err: errors.New("connection refused")}
	errRefused     = &blogapi.APIError{Status: 500, Message: "database unavailable"}
)

// fakeAPI is an in-memory blog API. Setting readErr or writeErr makes every
// read or write fail with it.
type fakeAPI struct {
	mu       sync.Mutex
	docs     map[string]content.Document
	readErr  error
	writeErr error
	seq      int
	reads    int
}

func newFakeAPI(docs ...content.Document) *fakeAPI {
	f := &fakeAPI{docs: make(map[string]content.Document)}
	for _, d := range docs {
		f.docs[d.ID] = d
	}
	return f
}

func (f *fakeAPI) fail(read, write error) {
	f.mu.Lock()
	f.readErr, f.writeErr = read, write
	f.mu.Unlock()
}

func (f *fakeAPI) sorted() []content.Document {
	docs := make([]content.Document, 0, len(f.docs))
	for _, d := range f.docs {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].PublishedAt.After(docs[j].PublishedAt) })
	return docs
}

func (f *fakeAPI) ListBlogs(_ context.Context, p blogapi.Page) (blogapi.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.readErr != nil {
		return blogapi.Listing{}, f.readErr
	}
	p = p.Normalize()
	docs := f.sorted()
	start := min((p.Page-1)*p.Limit, len(docs))
	end := min(start+p.Limit, len(docs))
	return blogapi.Listing{
		Blogs:      docs[start:end],
		Page:       p.Page,
		TotalPages: (len(docs) + p.Limit - 1) / p.Limit,
		TotalBlogs: len(docs),
	}, nil
}

func (f *fakeAPI) GetBlog(_ context.Context, id string) (content.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.readErr != nil {
		return content.Document{}, f.readErr
	}
	d, ok := f.docs[id]
	if !ok {
		return content.Document{}, &blogapi.APIError{Status: 404, Message: "Blog not found"}
	}
	return d, nil
}

func (f *fakeAPI) RelatedBlogs(_ context.Context, id string, p blogapi.Page) ([]content.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	cur, ok := f.docs[id]
	if !ok {
		return nil, &blogapi.APIError{Status: 404, Message: "Blog not found"}
	}
	return FilterRelated(cur, f.sorted()), nil
}

func (f *fakeAPI) CreateBlog(_ context.Context, doc content.Document) (content.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return content.Document{}, f.writeErr
	}
	f.seq++
	doc.ID = fmt.Sprintf("new-%d", f.seq)
	doc.PublishedAt = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	f.docs[doc.ID] = doc
	return doc, nil
}

func (f *fakeAPI) UpdateBlog(_ context.Context, id string, doc content.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	if _, ok := f.docs[id]; !ok {
		return &blogapi.APIError{Status: 404, Message: "Blog not found"}
	}
	f.docs[id] = doc
	return nil
}

func (f *fakeAPI) DeleteBlog(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	if _, ok := f.docs[id]; !ok {
		return &blogapi.APIError{Status: 404, Message: "Blog not found"}
	}
	delete(f.docs, id)
	return nil
}

func (f *fakeAPI) doc(id string) (content.Document, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	return d, ok
}
