package markdown

import (
	"bytes"
	"strings"
	"testing"

	"github.com/eringen/blockpress/content"
	"github.com/eringen/blockpress/editor"
)

const post = `---
mainHeading: Designing for trust
description: Notes from a redesign
author: Nora
tags:
  - ux
  - research
conclusion: Ship small.
---
We started with interviews.
They were long.

## What we learned

- people skim
- labels matter

![](https://cdn.example.com/chart.png)

## Next

Plan the second round.
`

func TestParse(t *testing.T) {
	doc, err := Parse(strings.NewReader(post))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.MainHeading != "Designing for trust" || doc.Author != "Nora" || doc.Conclusion != "Ship small." {
		t.Errorf("unexpected fields: %+v", doc)
	}
	if got := strings.Join(doc.Tags, ","); got != "ux,research" {
		t.Errorf("tags = %q", got)
	}
	if len(doc.Sections) != 3 {
		t.Fatalf("sections = %d, want 3", len(doc.Sections))
	}

	intro := doc.Sections[0]
	if intro.Subheading != "" || len(intro.Blocks) != 1 {
		t.Fatalf("intro section = %+v", intro)
	}
	if p, ok := intro.Blocks[0].(content.Paragraph); !ok || p.Content != "We started with interviews.\nThey were long." {
		t.Errorf("intro block = %#v", intro.Blocks[0])
	}

	learned := doc.Sections[1]
	if learned.Subheading != "What we learned" || len(learned.Blocks) != 2 {
		t.Fatalf("second section = %+v", learned)
	}
	b, ok := learned.Blocks[0].(content.Bullet)
	if !ok {
		t.Fatalf("block 0 = %#v, want bullet", learned.Blocks[0])
	}
	// the editor keeps its trailing slot
	if got := strings.Join(b.Bullets, "|"); got != "people skim|labels matter|" {
		t.Errorf("bullets = %q", got)
	}
	if img, ok := learned.Blocks[1].(content.Image); !ok || img.ImageURL != "https://cdn.example.com/chart.png" {
		t.Errorf("block 1 = %#v, want image", learned.Blocks[1])
	}

	if doc.Sections[2].Subheading != "Next" || len(doc.Sections[2].Blocks) != 1 {
		t.Errorf("third section = %+v", doc.Sections[2])
	}
}

func TestParseBodyStartingWithHeading(t *testing.T) {
	doc, err := Parse(strings.NewReader("---\nmainHeading: x\n---\n## First\n\ntext\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Sections) != 1 || doc.Sections[0].Subheading != "First" {
		t.Fatalf("sections = %+v", doc.Sections)
	}
}

func TestParseEmptyBodyKeepsDefaultDocument(t *testing.T) {
	doc, err := Parse(strings.NewReader("---\nmainHeading: only a title\n---\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Sections) != 1 || len(doc.Sections[0].Blocks) != 1 {
		t.Errorf("want the default section and block, got %+v", doc.Sections)
	}
}

func TestImportIntoEditor(t *testing.T) {
	ed := editor.New(nil)
	front, err := Import(strings.NewReader(post), ed)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if front.MainHeading != "Designing for trust" {
		t.Errorf("front = %+v", front)
	}
	if ed.Saved() {
		t.Error("import must not submit")
	}
}

func TestExportRoundTrip(t *testing.T) {
	doc, err := Parse(strings.NewReader(post))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var buf bytes.Buffer
	if err := Export(&buf, doc); err != nil {
		t.Fatalf("Export: %v", err)
	}
	again, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse exported: %v", err)
	}
	if len(again.Sections) != len(doc.Sections) {
		t.Fatalf("sections = %d, want %d", len(again.Sections), len(doc.Sections))
	}
	for i := range doc.Sections {
		if again.Sections[i].Subheading != doc.Sections[i].Subheading {
			t.Errorf("section %d subheading = %q", i, again.Sections[i].Subheading)
		}
		if len(again.Sections[i].Blocks) != len(doc.Sections[i].Blocks) {
			t.Errorf("section %d blocks = %d, want %d", i, len(again.Sections[i].Blocks), len(doc.Sections[i].Blocks))
		}
	}
	if again.Description != doc.Description || strings.Join(again.Tags, ",") != "ux,research" {
		t.Errorf("frontmatter lost: %+v", again)
	}
}
