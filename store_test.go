package blockpress

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/eringen/blockpress/content"
	"github.com/eringen/blockpress/views"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testDoc(id string, published time.Time, tags ...string) content.Document {
	doc := content.New()
	doc.ID = id
	doc.MainHeading = "Post " + id
	doc.Author = "nora"
	doc.Tags = tags
	doc.PublishedAt = published
	doc.Sections[0].Blocks = []content.Block{content.Paragraph{Content: "Body of " + id}}
	return doc
}

var day = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func TestSaveAndGetDocument(t *testing.T) {
	s := setupTestStore(t)

	doc := testDoc("a1", day, "go", "ux")
	doc.Sections[0].Blocks = append(doc.Sections[0].Blocks,
		content.Bullet{Bullets: []string{"one", "two"}},
		content.Image{ImageURL: "https://example.com/a.png"},
	)
	if err := s.SaveDocument(doc, OriginSnapshot); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}

	got, err := s.GetDocument("a1", OriginSnapshot)
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if got.MainHeading != doc.MainHeading {
		t.Errorf("heading = %q, want %q", got.MainHeading, doc.MainHeading)
	}
	if !got.PublishedAt.Equal(day) {
		t.Errorf("published = %v, want %v", got.PublishedAt, day)
	}
	if n := len(got.Sections[0].Blocks); n != 3 {
		t.Fatalf("blocks = %d, want 3", n)
	}
	if _, ok := got.Sections[0].Blocks[1].(content.Bullet); !ok {
		t.Errorf("block 1 = %T, want content.Bullet", got.Sections[0].Blocks[1])
	}
}

func TestGetDocumentOriginIsolation(t *testing.T) {
	s := setupTestStore(t)

	if err := s.SaveDocument(testDoc("sample-x", day), OriginSample); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}
	if _, err := s.GetDocument("sample-x", OriginSnapshot); err != ErrNotFound {
		t.Errorf("snapshot lookup err = %v, want ErrNotFound", err)
	}
	if _, err := s.GetDocument("sample-x", OriginSample); err != nil {
		t.Errorf("sample lookup err = %v", err)
	}
}

func TestSaveDocumentRequiresID(t *testing.T) {
	s := setupTestStore(t)
	if err := s.SaveDocument(content.New(), OriginSnapshot); err == nil {
		t.Fatal("expected error for document without id")
	}
}

func TestListDocumentsNewestFirstAndPaged(t *testing.T) {
	s := setupTestStore(t)

	docs := []content.Document{
		testDoc("old", day),
		testDoc("mid", day.Add(24*time.Hour)),
		testDoc("new", day.Add(48*time.Hour)),
		{ID: ""},
	}
	if err := s.SaveDocuments(docs, OriginSnapshot); err != nil {
		t.Fatalf("SaveDocuments failed: %v", err)
	}

	page1, total, err := s.ListDocuments(OriginSnapshot, 1, 2)
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(page1) != 2 || page1[0].ID != "new" || page1[1].ID != "mid" {
		t.Errorf("page 1 = %v, want [new mid]", ids(page1))
	}

	page2, _, err := s.ListDocuments(OriginSnapshot, 2, 2)
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if len(page2) != 1 || page2[0].ID != "old" {
		t.Errorf("page 2 = %v, want [old]", ids(page2))
	}

	samples, total, err := s.ListDocuments(OriginSample, 1, 10)
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if total != 0 || len(samples) != 0 {
		t.Errorf("samples = %v, want none", ids(samples))
	}
}

func TestSaveDocumentReplaces(t *testing.T) {
	s := setupTestStore(t)

	doc := testDoc("a1", day)
	if err := s.SaveDocument(doc, OriginSnapshot); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}
	doc.MainHeading = "Renamed"
	if err := s.SaveDocument(doc, OriginSnapshot); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}
	got, err := s.GetDocument("a1", OriginSnapshot)
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if got.MainHeading != "Renamed" {
		t.Errorf("heading = %q, want Renamed", got.MainHeading)
	}
}

func TestDeleteDocumentKeepsSamples(t *testing.T) {
	s := setupTestStore(t)

	if err := s.SaveDocument(testDoc("snap", day), OriginSnapshot); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveDocument(testDoc("sample-a", day), OriginSample); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteDocument("snap"); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
	if err := s.DeleteDocument("sample-a"); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
	if _, err := s.GetDocument("snap", OriginSnapshot); err != ErrNotFound {
		t.Errorf("snapshot still present: %v", err)
	}
	if _, err := s.GetDocument("sample-a", OriginSample); err != nil {
		t.Errorf("sample was removed: %v", err)
	}
}

func TestImages(t *testing.T) {
	s := setupTestStore(t)

	first := views.Image{Filename: "a.jpg", OriginalName: "A.png", Width: 800, Height: 600, Size: 1234, UploadedAt: day}
	second := views.Image{Filename: "b.jpg", OriginalName: "B.png", Width: 10, Height: 10, Size: 12, UploadedAt: day.Add(time.Hour)}
	for _, img := range []views.Image{first, second} {
		if err := s.SaveImage(img); err != nil {
			t.Fatalf("SaveImage failed: %v", err)
		}
	}

	images, err := s.ListImages()
	if err != nil {
		t.Fatalf("ListImages failed: %v", err)
	}
	if len(images) != 2 || images[0].Filename != "b.jpg" {
		t.Fatalf("images = %+v, want b.jpg first", images)
	}
	if !images[1].UploadedAt.Equal(day) {
		t.Errorf("uploaded = %v, want %v", images[1].UploadedAt, day)
	}

	ok, err := s.HasImage("a.jpg")
	if err != nil || !ok {
		t.Errorf("HasImage(a.jpg) = %v, %v", ok, err)
	}
	if err := s.DeleteImage("a.jpg"); err != nil {
		t.Fatalf("DeleteImage failed: %v", err)
	}
	ok, err = s.HasImage("a.jpg")
	if err != nil || ok {
		t.Errorf("HasImage after delete = %v, %v", ok, err)
	}
}

func ids(docs []content.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}
