// Package editor builds and mutates one blog document on behalf of an
// operator and hands it to a Backend for persistence.
//
// All operations keep the draft editable after a failure: a rejected Submit
// or Delete leaves every field as the operator left it so the action can be
// retried.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/eringen/blockpress/content"
)

var (
	// ErrDisposed is returned when the editor was discarded while a request
	// was in flight. The request's result has been ignored.
	ErrDisposed = errors.New("editor: disposed")
	// ErrNotPersisted is returned by Delete for a draft that has no ID yet.
	ErrNotPersisted = errors.New("editor: document has not been saved")
	// ErrUnsupportedBlock is returned when editing the fields of a block whose
	// type this editor does not know. Setting a known type is allowed.
	ErrUnsupportedBlock = errors.New("editor: block type cannot be edited")
)

// Backend persists documents. The blogapi client implements it.
type Backend interface {
	CreateBlog(ctx context.Context, doc content.Document) (content.Document, error)
	UpdateBlog(ctx context.Context, id string, doc content.Document) error
	DeleteBlog(ctx context.Context, id string) error
}

// FieldError reports an operation addressed at a field or index that does
// not exist in the draft.
type FieldError struct {
	Op    string
	Field string
	Index int
}

func (e *FieldError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("editor: %s: unknown field %q", e.Op, e.Field)
	}
	return fmt.Sprintf("editor: %s: index %d out of range", e.Op, e.Index)
}

// Editor owns a single draft. It is safe for use by concurrent requests;
// Submit and Delete run one at a time, so a second Save waits for the first
// and then updates the document the first one created.
type Editor struct {
	mu       sync.Mutex
	backend  Backend
	draft    Draft
	rev      uint64 // bumped by every edit
	disposed bool
	saved    bool

	inflight chan struct{}
}

// New returns an editor holding the empty document.
func New(backend Backend) *Editor {
	return Load(backend, content.New())
}

// Load returns an editor holding an existing document.
func Load(backend Backend, doc content.Document) *Editor {
	return &Editor{backend: backend, draft: FromDocument(doc), inflight: make(chan struct{}, 1)}
}

// acquire waits until no Submit or Delete is running.
func (e *Editor) acquire(ctx context.Context) error {
	select {
	case e.inflight <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Editor) release() { <-e.inflight }

func (e *Editor) changed() {
	e.rev++
	e.saved = false
}

// Draft returns a copy of the form state.
func (e *Editor) Draft() Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft.clone()
}

// Document returns the current draft projected onto the content schema.
func (e *Editor) Document() content.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft.Document()
}

// Saved reports whether the last Submit succeeded with no edits since.
func (e *Editor) Saved() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saved
}

// SetField sets one of the top-level text fields.
func (e *Editor) SetField(name, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch name {
	case "mainHeading":
		e.draft.MainHeading = value
	case "description":
		e.draft.Description = value
	case "author":
		e.draft.Author = value
	case "coverImage":
		e.draft.CoverImage = value
	case "conclusion":
		e.draft.Conclusion = value
	default:
		return &FieldError{Op: "set field", Field: name}
	}
	e.changed()
	return nil
}

// SetTag overwrites the tag at index.
func (e *Editor) SetTag(index int, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.draft.Tags) {
		return &FieldError{Op: "set tag", Index: index}
	}
	e.draft.Tags[index] = value
	e.changed()
	return nil
}

// AddTag appends an empty tag slot.
func (e *Editor) AddTag() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft.Tags = append(e.draft.Tags, "")
	e.changed()
}

// RemoveTag drops the tag at index.
func (e *Editor) RemoveTag(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.draft.Tags) {
		return &FieldError{Op: "remove tag", Index: index}
	}
	e.draft.Tags = append(e.draft.Tags[:index], e.draft.Tags[index+1:]...)
	e.changed()
	return nil
}

// AddSection appends a section holding one empty paragraph.
func (e *Editor) AddSection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft.Sections = append(e.draft.Sections, newDraftSection())
	e.changed()
}

// RemoveSection drops the section at index.
func (e *Editor) RemoveSection(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.draft.Sections) {
		return &FieldError{Op: "remove section", Index: index}
	}
	e.draft.Sections = append(e.draft.Sections[:index], e.draft.Sections[index+1:]...)
	e.changed()
	return nil
}

// SetSectionField sets a section-level field. Only "subheading" exists.
func (e *Editor) SetSectionField(sectionIndex int, field, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, err := e.section("set section field", sectionIndex)
	if err != nil {
		return err
	}
	if field != "subheading" {
		return &FieldError{Op: "set section field", Field: field}
	}
	s.Subheading = value
	e.changed()
	return nil
}

// AddBlock appends an empty paragraph to the section.
func (e *Editor) AddBlock(sectionIndex int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, err := e.section("add block", sectionIndex)
	if err != nil {
		return err
	}
	s.Blocks = append(s.Blocks, newDraftBlock())
	e.changed()
	return nil
}

// RemoveBlock drops a block from the section.
func (e *Editor) RemoveBlock(sectionIndex, blockIndex int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, err := e.section("remove block", sectionIndex)
	if err != nil {
		return err
	}
	if blockIndex < 0 || blockIndex >= len(s.Blocks) {
		return &FieldError{Op: "remove block", Index: blockIndex}
	}
	s.Blocks = append(s.Blocks[:blockIndex], s.Blocks[blockIndex+1:]...)
	e.changed()
	return nil
}

// SetBlock sets a block field: "type", "content" or "imageUrl". Changing the
// type leaves the other fields in place.
func (e *Editor) SetBlock(sectionIndex, blockIndex int, field, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, err := e.block("set block", sectionIndex, blockIndex)
	if err != nil {
		return err
	}
	if field != "type" && b.Unsupported() {
		return ErrUnsupportedBlock
	}
	switch field {
	case "type":
		t, err := content.ParseBlockType(value)
		if err != nil {
			return fmt.Errorf("editor: set block: %w", err)
		}
		b.Type = t
		b.Raw = nil
		if len(b.Bullets) == 0 {
			b.Bullets = []string{""}
		}
	case "content":
		b.Content = value
	case "imageUrl":
		b.ImageURL = value
	default:
		return &FieldError{Op: "set block", Field: field}
	}
	e.changed()
	return nil
}

// SetBullet edits one bullet slot. Filling the last slot appends a fresh
// empty one; clearing any other slot removes it. The list therefore always
// ends in exactly one empty slot.
func (e *Editor) SetBullet(sectionIndex, blockIndex, bulletIndex int, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, err := e.block("set bullet", sectionIndex, blockIndex)
	if err != nil {
		return err
	}
	if b.Unsupported() {
		return ErrUnsupportedBlock
	}
	if bulletIndex < 0 || bulletIndex >= len(b.Bullets) {
		return &FieldError{Op: "set bullet", Index: bulletIndex}
	}
	last := bulletIndex == len(b.Bullets)-1
	switch {
	case value == "" && !last:
		b.Bullets = append(b.Bullets[:bulletIndex], b.Bullets[bulletIndex+1:]...)
	case value != "" && last:
		b.Bullets[bulletIndex] = value
		b.Bullets = append(b.Bullets, "")
	default:
		b.Bullets[bulletIndex] = value
	}
	e.changed()
	return nil
}

// Submit creates or updates the document depending on whether it already has
// an ID. On success the draft takes the ID and publish time assigned by the
// backend. On failure the draft is untouched.
func (e *Editor) Submit(ctx context.Context) (content.Document, error) {
	if err := e.acquire(ctx); err != nil {
		return content.Document{}, fmt.Errorf("editor: submit: %w", err)
	}
	defer e.release()

	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return content.Document{}, ErrDisposed
	}
	doc := e.draft.Document()
	rev := e.rev
	e.mu.Unlock()

	var (
		saved content.Document
		err   error
	)
	if doc.ID == "" {
		saved, err = e.backend.CreateBlog(ctx, doc)
	} else {
		err = e.backend.UpdateBlog(ctx, doc.ID, doc)
		saved = doc
	}
	if err != nil {
		return content.Document{}, fmt.Errorf("editor: submit: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return content.Document{}, ErrDisposed
	}
	if saved.ID != "" {
		e.draft.ID = saved.ID
	}
	if !saved.PublishedAt.IsZero() {
		e.draft.PublishedAt = saved.PublishedAt
	}
	// edits made while the request was in flight are not saved yet
	e.saved = e.rev == rev
	doc.ID = e.draft.ID
	doc.PublishedAt = e.draft.PublishedAt
	return doc, nil
}

// Delete removes the persisted document.
func (e *Editor) Delete(ctx context.Context) error {
	if err := e.acquire(ctx); err != nil {
		return fmt.Errorf("editor: delete: %w", err)
	}
	defer e.release()

	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return ErrDisposed
	}
	id := e.draft.ID
	e.mu.Unlock()
	if id == "" {
		return ErrNotPersisted
	}

	if err := e.backend.DeleteBlog(ctx, id); err != nil {
		return fmt.Errorf("editor: delete: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return ErrDisposed
	}
	e.disposed = true
	return nil
}

// Dispose discards the editor. Requests still in flight complete against the
// backend but their results are dropped.
func (e *Editor) Dispose() {
	e.mu.Lock()
	e.disposed = true
	e.mu.Unlock()
}

// Disposed reports whether the editor was discarded or its document deleted.
func (e *Editor) Disposed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.disposed
}

func (e *Editor) section(op string, i int) (*DraftSection, error) {
	if i < 0 || i >= len(e.draft.Sections) {
		return nil, &FieldError{Op: op, Index: i}
	}
	return &e.draft.Sections[i], nil
}

func (e *Editor) block(op string, si, bi int) (*DraftBlock, error) {
	s, err := e.section(op, si)
	if err != nil {
		return nil, err
	}
	if bi < 0 || bi >= len(s.Blocks) {
		return nil, &FieldError{Op: op, Index: bi}
	}
	return &s.Blocks[bi], nil
}
