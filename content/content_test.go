package content

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocumentDefaults(t *testing.T) {
	doc := New()

	assert.Empty(t, doc.MainHeading)
	assert.Empty(t, doc.ID)
	assert.True(t, doc.PublishedAt.IsZero())
	require.Len(t, doc.Sections, 1)
	require.Len(t, doc.Sections[0].Blocks, 1)
	assert.Equal(t, Paragraph{}, doc.Sections[0].Blocks[0])
}

func TestSectionJSONRoundTrip(t *testing.T) {
	doc := Document{
		ID:          "65f1c2",
		MainHeading: "Shipping faster",
		Author:      "Ada",
		Tags:        []string{"process", "delivery"},
		Sections: []Section{{
			Subheading: "Why",
			Blocks: []Block{
				Paragraph{Content: "Because."},
				Bullet{Bullets: []string{"one", "two", ""}},
				Image{ImageURL: "https://cdn.example.com/a.png"},
			},
		}},
		PublishedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	var got Document
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, doc, got)
}

func TestUnmarshalIgnoresStaleFields(t *testing.T) {
	raw := `{"subheading":"","contentBlocks":[
		{"type":"paragraph","content":"hello","bullets":{"not":"a list"},"imageUrl":42},
		{"type":"image","content":"left over","imageUrl":"/public/uploads/x.jpg"}
	]}`

	var s Section
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	require.Len(t, s.Blocks, 2)
	assert.Equal(t, Paragraph{Content: "hello"}, s.Blocks[0])
	assert.Equal(t, Image{ImageURL: "/public/uploads/x.jpg"}, s.Blocks[1])
}

func TestUnknownBlockRoundTrips(t *testing.T) {
	raw := `{"subheading":"s","contentBlocks":[{"type":"quote","content":"hi","cite":"me"}]}`

	var s Section
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	require.Len(t, s.Blocks, 1)
	u, ok := s.Blocks[0].(Unknown)
	require.True(t, ok)
	assert.Equal(t, BlockType("quote"), u.Type())

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestMarshalBulletNeverNull(t *testing.T) {
	raw, err := MarshalBlock(Bullet{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"bullet","bullets":[]}`, string(raw))
}

func TestParseBlockType(t *testing.T) {
	for _, s := range []string{"paragraph", "bullet", "image"} {
		bt, err := ParseBlockType(s)
		require.NoError(t, err)
		assert.Equal(t, BlockType(s), bt)
	}
	_, err := ParseBlockType("video")
	assert.Error(t, err)
}

func TestAuthorInitial(t *testing.T) {
	tests := []struct {
		author string
		want   string
	}{
		{"", "?"},
		{"   ", "?"},
		{"ada", "A"},
		{" élodie", "É"},
	}
	for _, tt := range tests {
		got := Document{Author: tt.author}.AuthorInitial()
		if got != tt.want {
			t.Errorf("AuthorInitial(%q) = %q, want %q", tt.author, got, tt.want)
		}
	}
}

func TestDaysSince(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, Document{}.DaysSince(now))
	assert.Equal(t, 9, Document{PublishedAt: now.Add(-9*24*time.Hour - time.Hour)}.DaysSince(now))
	assert.Equal(t, 0, Document{PublishedAt: now.Add(time.Hour)}.DaysSince(now))
}

func TestCloneIsDeep(t *testing.T) {
	doc := Document{
		Tags:     []string{"a"},
		Sections: []Section{{Blocks: []Block{Bullet{Bullets: []string{"x", ""}}}}},
	}
	cp := doc.Clone()
	cp.Tags[0] = "changed"
	cp.Sections[0].Blocks[0].(Bullet).Bullets[0] = "changed"
	cp.Sections[0].Subheading = "changed"

	assert.Equal(t, "a", doc.Tags[0])
	assert.Equal(t, "x", doc.Sections[0].Blocks[0].(Bullet).Bullets[0])
	assert.Empty(t, doc.Sections[0].Subheading)
}

func TestNonEmpty(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, NonEmpty([]string{"a", "", "  ", "b", ""}))
	assert.Nil(t, NonEmpty([]string{""}))
}
