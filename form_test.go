package blockpress

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/blockpress/content"
	"github.com/eringen/blockpress/editor"
)

func bulletEditor(t *testing.T, items ...string) *editor.Editor {
	t.Helper()
	ed := editor.New(nil)
	require.NoError(t, ed.SetBlock(0, 0, "type", "bullet"))
	for i, item := range items {
		require.NoError(t, ed.SetBullet(0, 0, i, item))
	}
	return ed
}

func TestApplyFormFields(t *testing.T) {
	ed := editor.New(nil)
	ed.AddTag()
	ed.AddTag()

	form := url.Values{
		"mainHeading":          {"Hello"},
		"author":               {"Nora"},
		"tag.1":                {"go"},
		"tag.0":                {"ux"},
		"section.0.subheading": {"Intro"},
		"block.0.0.content":    {"Body"},
		"unrelated":            {"x"},
	}
	require.NoError(t, applyForm(ed, form))

	doc := ed.Document()
	assert.Equal(t, "Hello", doc.MainHeading)
	assert.Equal(t, "Nora", doc.Author)
	assert.Equal(t, []string{"ux", "go"}, doc.Tags)
	assert.Equal(t, "Intro", doc.Sections[0].Subheading)
	assert.Equal(t, content.Paragraph{Content: "Body"}, doc.Sections[0].Blocks[0])
}

func TestApplyFormBulletsHighestIndexFirst(t *testing.T) {
	ed := bulletEditor(t, "a", "b")

	// clear the first slot and fill the trailing one in the same post
	form := url.Values{
		"bullet.0.0.0": {""},
		"bullet.0.0.1": {"b"},
		"bullet.0.0.2": {"c"},
	}
	require.NoError(t, applyForm(ed, form))

	bullets := ed.Draft().Sections[0].Blocks[0].Bullets
	assert.Equal(t, []string{"b", "c", ""}, bullets)
}

func TestApplyFormTypeChangeKeepsStaleFields(t *testing.T) {
	ed := editor.New(nil)
	form := url.Values{
		"block.0.0.content": {"kept"},
		"block.0.0.type":    {"image"},
	}
	require.NoError(t, applyForm(ed, form))

	b := ed.Draft().Sections[0].Blocks[0]
	assert.Equal(t, content.BlockImage, b.Type)
	assert.Equal(t, "kept", b.Content)
}

func TestApplyFormRejectsOutOfRange(t *testing.T) {
	ed := editor.New(nil)
	err := applyForm(ed, url.Values{"block.3.0.content": {"x"}})
	var fe *editor.FieldError
	require.ErrorAs(t, err, &fe)
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		raw  string
		want formAction
	}{
		{"", formAction{kind: "apply"}},
		{"save", formAction{kind: "save"}},
		{"add-block:2", formAction{kind: "add-block", args: []int{2}}},
		{"remove-block:1:3", formAction{kind: "remove-block", args: []int{1, 3}}},
	}
	for _, tt := range tests {
		got, err := parseAction(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []string{"explode", "add-block", "remove-block:1", "add-block:x"} {
		_, err := parseAction(bad)
		assert.Error(t, err, bad)
	}
}

func TestStructuralActions(t *testing.T) {
	ed := editor.New(nil)
	for _, raw := range []string{"add-section", "add-section", "add-block:0", "add-tag", "remove-block:0:1", "remove-section:2"} {
		a, err := parseAction(raw)
		require.NoError(t, err)
		handled, err := a.applyStructural(ed)
		require.NoError(t, err, raw)
		assert.True(t, handled, raw)
	}
	doc := ed.Document()
	assert.Len(t, doc.Sections, 2)
	assert.Len(t, doc.Sections[0].Blocks, 1)
	assert.Equal(t, []string{""}, doc.Tags)

	save, _ := parseAction("save")
	handled, err := save.applyStructural(ed)
	require.NoError(t, err)
	assert.False(t, handled)
}
