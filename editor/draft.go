package editor

import (
	"encoding/json"
	"time"

	"github.com/eringen/blockpress/content"
)

// Draft is the form-shaped state behind an editor. Blocks keep every field
// regardless of their type so that switching a block's type back and forth
// does not lose what the operator typed.
type Draft struct {
	ID          string
	MainHeading string
	Description string
	Author      string
	CoverImage  string
	Tags        []string
	Sections    []DraftSection
	Conclusion  string
	PublishedAt time.Time
}

// DraftSection is the editable form of content.Section.
type DraftSection struct {
	Subheading string
	Blocks     []DraftBlock
}

// DraftBlock is the editable form of a content.Block.
type DraftBlock struct {
	Type     content.BlockType
	Content  string
	Bullets  []string
	ImageURL string
	// Raw is the stored encoding of a block whose type this editor does not
	// know. It is sent back untouched until the operator picks another type.
	Raw json.RawMessage
}

// Unsupported reports whether the block has a type this editor cannot edit.
func (b DraftBlock) Unsupported() bool {
	_, err := content.ParseBlockType(string(b.Type))
	return err != nil
}

func newDraftSection() DraftSection {
	return DraftSection{Blocks: []DraftBlock{newDraftBlock()}}
}

func newDraftBlock() DraftBlock {
	return DraftBlock{Type: content.BlockParagraph, Bullets: []string{""}}
}

// FromDocument converts a persisted document into a draft. Bullet lists get
// their trailing empty slot back; blocks of unknown type are carried as is.
func FromDocument(doc content.Document) Draft {
	d := Draft{
		ID:          doc.ID,
		MainHeading: doc.MainHeading,
		Description: doc.Description,
		Author:      doc.Author,
		CoverImage:  doc.CoverImage,
		Tags:        append([]string{}, doc.Tags...),
		Conclusion:  doc.Conclusion,
		PublishedAt: doc.PublishedAt,
		Sections:    make([]DraftSection, 0, len(doc.Sections)),
	}
	for _, s := range doc.Sections {
		ds := DraftSection{Subheading: s.Subheading, Blocks: make([]DraftBlock, 0, len(s.Blocks))}
		for _, b := range s.Blocks {
			ds.Blocks = append(ds.Blocks, draftBlockFrom(b))
		}
		d.Sections = append(d.Sections, ds)
	}
	return d
}

func draftBlockFrom(b content.Block) DraftBlock {
	db := newDraftBlock()
	switch v := b.(type) {
	case content.Paragraph:
		db.Content = v.Content
	case content.Bullet:
		db.Type = content.BlockBullet
		db.Bullets = withTrailingSlot(v.Bullets)
	case content.Image:
		db.Type = content.BlockImage
		db.ImageURL = v.ImageURL
	case content.Unknown:
		db.Type = v.Type()
		db.Raw = append(json.RawMessage(nil), v.Raw...)
	}
	return db
}

// withTrailingSlot returns a copy of bullets with blank entries dropped and
// exactly one empty slot at the end.
func withTrailingSlot(bullets []string) []string {
	out := make([]string, 0, len(bullets)+1)
	for _, b := range bullets {
		if b != "" {
			out = append(out, b)
		}
	}
	return append(out, "")
}

// Document projects the draft onto the content schema.
func (d Draft) Document() content.Document {
	doc := content.Document{
		ID:          d.ID,
		MainHeading: d.MainHeading,
		Description: d.Description,
		Author:      d.Author,
		CoverImage:  d.CoverImage,
		Tags:        append([]string{}, d.Tags...),
		Conclusion:  d.Conclusion,
		PublishedAt: d.PublishedAt,
		Sections:    make([]content.Section, 0, len(d.Sections)),
	}
	for _, s := range d.Sections {
		cs := content.Section{Subheading: s.Subheading, Blocks: make([]content.Block, 0, len(s.Blocks))}
		for _, b := range s.Blocks {
			cs.Blocks = append(cs.Blocks, b.Block())
		}
		doc.Sections = append(doc.Sections, cs)
	}
	return doc
}

// Block projects the form block onto its typed variant, reading only the
// field that belongs to Type.
func (b DraftBlock) Block() content.Block {
	switch b.Type {
	case content.BlockBullet:
		return content.Bullet{Bullets: append([]string{}, b.Bullets...)}
	case content.BlockImage:
		return content.Image{ImageURL: b.ImageURL}
	case content.BlockParagraph:
		return content.Paragraph{Content: b.Content}
	default:
		return content.Unknown{Kind: string(b.Type), Raw: append(json.RawMessage(nil), b.Raw...)}
	}
}

func (d Draft) clone() Draft {
	out := d
	out.Tags = append([]string{}, d.Tags...)
	out.Sections = make([]DraftSection, len(d.Sections))
	for i, s := range d.Sections {
		cs := DraftSection{Subheading: s.Subheading, Blocks: make([]DraftBlock, len(s.Blocks))}
		for j, b := range s.Blocks {
			b.Bullets = append([]string{}, b.Bullets...)
			if b.Raw != nil {
				b.Raw = append(json.RawMessage(nil), b.Raw...)
			}
			cs.Blocks[j] = b
		}
		out.Sections[i] = cs
	}
	return out
}
