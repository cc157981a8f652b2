// Package content defines the structured blog document shared by the editor,
// the renderer and the remote API client.
//
// A document is a heading plus metadata and an ordered list of sections. Each
// section holds an ordered list of blocks, and every block is exactly one of
// Paragraph, Bullet or Image.
package content

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Document is a blog post as stored by the remote API.
type Document struct {
	ID          string    `json:"_id,omitempty"`
	MainHeading string    `json:"mainHeading"`
	Description string    `json:"description"`
	Author      string    `json:"author"`
	CoverImage  string    `json:"coverImage"`
	Tags        []string  `json:"tags"`
	Sections    []Section `json:"sections"`
	Conclusion  string    `json:"conclusion"`
	PublishedAt time.Time `json:"publishedAt,omitzero"`
}

// Section is a named run of blocks. An empty subheading renders no heading.
type Section struct {
	Subheading string
	Blocks     []Block
}

// New returns the empty document an editor starts from.
func New() Document {
	return Document{
		Tags:     []string{},
		Sections: []Section{NewSection()},
	}
}

// NewSection returns a section holding one empty paragraph.
func NewSection() Section {
	return Section{Blocks: []Block{NewBlock()}}
}

// NewBlock returns the default block: an empty paragraph.
func NewBlock() Block {
	return Paragraph{}
}

// AuthorInitial returns the upper-cased first letter of the author, or "?"
// when no author is set.
func (d Document) AuthorInitial() string {
	a := strings.TrimSpace(d.Author)
	if a == "" {
		return "?"
	}
	r, _ := utf8.DecodeRuneInString(a)
	return string(unicode.ToUpper(r))
}

// DaysSince reports the whole days between publication and now.
func (d Document) DaysSince(now time.Time) int {
	if d.PublishedAt.IsZero() || now.Before(d.PublishedAt) {
		return 0
	}
	return int(now.Sub(d.PublishedAt) / (24 * time.Hour))
}

// Published reports whether the persistence layer has accepted the document.
func (d Document) Published() bool {
	return d.ID != ""
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	out := d
	if d.Tags != nil {
		out.Tags = append([]string(nil), d.Tags...)
	}
	if d.Sections != nil {
		out.Sections = make([]Section, len(d.Sections))
		for i, s := range d.Sections {
			out.Sections[i] = s.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of s.
func (s Section) Clone() Section {
	out := Section{Subheading: s.Subheading}
	if s.Blocks != nil {
		out.Blocks = make([]Block, len(s.Blocks))
		for i, b := range s.Blocks {
			out.Blocks[i] = cloneBlock(b)
		}
	}
	return out
}

// NonEmpty drops blank entries, keeping order.
func NonEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
