package blockpress

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eringen/blockpress/editor"
	"github.com/eringen/blockpress/views"
)

type draftEntry struct {
	owner   string
	ed      *editor.Editor
	touched time.Time
}

// DraftRegistry keeps the open editors of every admin session. A draft is
// only visible to the session that opened it and is disposed once it has
// been idle for the TTL.
type DraftRegistry struct {
	mu     sync.Mutex
	drafts map[string]*draftEntry
	ttl    time.Duration
	now    func() time.Time
}

// NewDraftRegistry creates a registry that evicts drafts idle for ttl.
func NewDraftRegistry(ttl time.Duration) *DraftRegistry {
	return &DraftRegistry{
		drafts: make(map[string]*draftEntry),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Open registers ed for the session owner and returns the draft ID.
func (r *DraftRegistry) Open(owner string, ed *editor.Editor) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.drafts[id] = &draftEntry{owner: owner, ed: ed, touched: r.now()}
	r.mu.Unlock()
	return id
}

// Get returns the editor for id if owner opened it and it has not expired.
func (r *DraftRegistry) Get(owner, id string) (*editor.Editor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.drafts[id]
	if !ok || e.owner != owner {
		return nil, false
	}
	now := r.now()
	if now.Sub(e.touched) > r.ttl {
		e.ed.Dispose()
		delete(r.drafts, id)
		return nil, false
	}
	e.touched = now
	return e.ed, true
}

// Close disposes and forgets one draft.
func (r *DraftRegistry) Close(owner, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.drafts[id]; ok && e.owner == owner {
		e.ed.Dispose()
		delete(r.drafts, id)
	}
}

// CloseAll disposes every draft of owner and reports how many there were.
func (r *DraftRegistry) CloseAll(owner string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, e := range r.drafts {
		if e.owner == owner {
			e.ed.Dispose()
			delete(r.drafts, id)
			n++
		}
	}
	return n
}

// List returns links to the drafts of owner, most recently used first.
func (r *DraftRegistry) List(owner string) []views.DraftLink {
	type item struct {
		link    views.DraftLink
		touched time.Time
	}
	r.mu.Lock()
	var items []item
	for id, e := range r.drafts {
		if e.owner != owner {
			continue
		}
		d := e.ed.Draft()
		items = append(items, item{
			link:    views.DraftLink{ID: id, Heading: d.MainHeading, BlogID: d.ID},
			touched: e.touched,
		})
	}
	r.mu.Unlock()

	sort.Slice(items, func(i, j int) bool { return items[i].touched.After(items[j].touched) })
	links := make([]views.DraftLink, len(items))
	for i, it := range items {
		links[i] = it.link
	}
	return links
}

// Sweep disposes drafts idle longer than the TTL and returns how many went.
func (r *DraftRegistry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, e := range r.drafts {
		if e.touched.Before(cutoff) {
			e.ed.Dispose()
			delete(r.drafts, id)
			n++
		}
	}
	return n
}

// StartSweeper runs Sweep every interval. Returns a stop function.
func (r *DraftRegistry) StartSweeper(interval time.Duration, onSweep func(int)) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				if n := r.Sweep(); n > 0 && onSweep != nil {
					onSweep(n)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}
