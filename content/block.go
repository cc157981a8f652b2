package content

import (
	"encoding/json"
	"fmt"
)

// BlockType is the discriminant carried in a block's "type" field.
type BlockType string

const (
	BlockParagraph BlockType = "paragraph"
	BlockBullet    BlockType = "bullet"
	BlockImage     BlockType = "image"
)

// ParseBlockType validates a discriminant coming from a form or a file.
func ParseBlockType(s string) (BlockType, error) {
	switch t := BlockType(s); t {
	case BlockParagraph, BlockBullet, BlockImage:
		return t, nil
	}
	return "", fmt.Errorf("unknown block type %q", s)
}

// Block is one paragraph, bullet list or image inside a section. The set of
// implementations is closed to this package.
type Block interface {
	Type() BlockType
	block()
}

// Paragraph is body text.
type Paragraph struct {
	Content string
}

// Bullet is an unordered list. Editors keep a trailing empty slot in Bullets;
// readers should filter blanks with NonEmpty.
type Bullet struct {
	Bullets []string
}

// Image is a single picture referenced by URL.
type Image struct {
	ImageURL string
}

// Unknown holds a block whose discriminant this version does not know. It is
// preserved on round-trip and never rendered.
type Unknown struct {
	Kind string
	Raw  json.RawMessage
}

func (Paragraph) Type() BlockType { return BlockParagraph }
func (Bullet) Type() BlockType    { return BlockBullet }
func (Image) Type() BlockType     { return BlockImage }
func (u Unknown) Type() BlockType { return BlockType(u.Kind) }

func (Paragraph) block() {}
func (Bullet) block()    {}
func (Image) block()     {}
func (Unknown) block()   {}

func cloneBlock(b Block) Block {
	switch v := b.(type) {
	case Bullet:
		if v.Bullets != nil {
			v.Bullets = append([]string(nil), v.Bullets...)
		}
		return v
	case Unknown:
		v.Raw = append(json.RawMessage(nil), v.Raw...)
		return v
	default:
		return b
	}
}

type wireSection struct {
	Subheading    string            `json:"subheading"`
	ContentBlocks []json.RawMessage `json:"contentBlocks"`
}

// MarshalBlock encodes b with its discriminant.
func MarshalBlock(b Block) ([]byte, error) {
	switch v := b.(type) {
	case Paragraph:
		return json.Marshal(struct {
			Type    string `json:"type"`
			Content string `json:"content"`
		}{string(BlockParagraph), v.Content})
	case Bullet:
		bullets := v.Bullets
		if bullets == nil {
			bullets = []string{}
		}
		return json.Marshal(struct {
			Type    string   `json:"type"`
			Bullets []string `json:"bullets"`
		}{string(BlockBullet), bullets})
	case Image:
		return json.Marshal(struct {
			Type     string `json:"type"`
			ImageURL string `json:"imageUrl"`
		}{string(BlockImage), v.ImageURL})
	case Unknown:
		if len(v.Raw) > 0 {
			return v.Raw, nil
		}
		return json.Marshal(struct {
			Type string `json:"type"`
		}{v.Kind})
	case nil:
		return nil, fmt.Errorf("nil block")
	default:
		return nil, fmt.Errorf("unsupported block %T", b)
	}
}

// UnmarshalBlock decodes a block, dispatching on "type" alone. Fields that
// belong to other variants are never decoded, so stale or malformed leftovers
// do not fail the document.
func UnmarshalBlock(data []byte) (Block, error) {
	var w struct {
		Type     string          `json:"type"`
		Content  json.RawMessage `json:"content"`
		Bullets  json.RawMessage `json:"bullets"`
		ImageURL json.RawMessage `json:"imageUrl"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode block: %w", err)
	}
	switch BlockType(w.Type) {
	case BlockParagraph:
		var p Paragraph
		if err := decodeOptional(w.Content, &p.Content); err != nil {
			return nil, fmt.Errorf("paragraph content: %w", err)
		}
		return p, nil
	case BlockBullet:
		var b Bullet
		if err := decodeOptional(w.Bullets, &b.Bullets); err != nil {
			return nil, fmt.Errorf("bullets: %w", err)
		}
		return b, nil
	case BlockImage:
		var img Image
		if err := decodeOptional(w.ImageURL, &img.ImageURL); err != nil {
			return nil, fmt.Errorf("image url: %w", err)
		}
		return img, nil
	default:
		return Unknown{Kind: w.Type, Raw: append(json.RawMessage(nil), data...)}, nil
	}
}

func decodeOptional(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// MarshalJSON implements json.Marshaler.
func (s Section) MarshalJSON() ([]byte, error) {
	w := wireSection{
		Subheading:    s.Subheading,
		ContentBlocks: make([]json.RawMessage, 0, len(s.Blocks)),
	}
	for i, b := range s.Blocks {
		raw, err := MarshalBlock(b)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		w.ContentBlocks = append(w.ContentBlocks, raw)
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Section) UnmarshalJSON(data []byte) error {
	var w wireSection
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	s.Subheading = w.Subheading
	s.Blocks = make([]Block, 0, len(w.ContentBlocks))
	for i, raw := range w.ContentBlocks {
		b, err := UnmarshalBlock(raw)
		if err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
		s.Blocks = append(s.Blocks, b)
	}
	return nil
}
