package markdown

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/eringen/blockpress/content"
	"github.com/eringen/blockpress/editor"
)

// Front is the YAML frontmatter of a blog Markdown file.
type Front struct {
	ID          string   `yaml:"id,omitempty"`
	MainHeading string   `yaml:"mainHeading"`
	Description string   `yaml:"description,omitempty"`
	Author      string   `yaml:"author,omitempty"`
	CoverImage  string   `yaml:"coverImage,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	Conclusion  string   `yaml:"conclusion,omitempty"`
}

var reImageLine = regexp.MustCompile(`^!\[[^\]]*\]\(([^)\s]*)\)$`)

// Parse reads a Markdown file into a new document.
func Parse(r io.Reader) (content.Document, error) {
	ed := editor.New(nil)
	if _, err := Import(r, ed); err != nil {
		return content.Document{}, err
	}
	return ed.Document(), nil
}

// Import replays a Markdown file as editor operations on ed, which should
// hold a fresh document. It returns the parsed frontmatter.
//
// The body maps onto the content model: "## " lines open sections, runs of
// "- " lines become bullet blocks, a line holding only an image becomes an
// image block and every other run of lines becomes a paragraph.
func Import(r io.Reader, ed *editor.Editor) (Front, error) {
	var front Front
	body, err := frontmatter.Parse(r, &front)
	if err != nil {
		return Front{}, fmt.Errorf("parse frontmatter: %w", err)
	}

	fields := []struct{ name, value string }{
		{"mainHeading", front.MainHeading},
		{"description", front.Description},
		{"author", front.Author},
		{"coverImage", front.CoverImage},
		{"conclusion", front.Conclusion},
	}
	for _, f := range fields {
		if err := ed.SetField(f.name, f.value); err != nil {
			return Front{}, err
		}
	}
	for i, tag := range front.Tags {
		ed.AddTag()
		if err := ed.SetTag(i, tag); err != nil {
			return Front{}, err
		}
	}

	im := &importer{ed: ed, blocks: 1, fresh: true}
	if err := im.run(body); err != nil {
		return Front{}, err
	}
	return front, nil
}

type importer struct {
	ed      *editor.Editor
	section int
	blocks  int
	fresh   bool // the section still holds only its untouched default block
	used    bool // the section has a subheading or any block content

	para    []string
	bullets []string
}

func (im *importer) run(body []byte) error {
	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			if err := im.flush(); err != nil {
				return err
			}
		case strings.HasPrefix(trimmed, "## "):
			if err := im.flush(); err != nil {
				return err
			}
			if err := im.openSection(strings.TrimSpace(trimmed[3:])); err != nil {
				return err
			}
		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			if err := im.flushParagraph(); err != nil {
				return err
			}
			im.bullets = append(im.bullets, strings.TrimSpace(trimmed[2:]))
		case reImageLine.MatchString(trimmed):
			if err := im.flush(); err != nil {
				return err
			}
			src := reImageLine.FindStringSubmatch(trimmed)[1]
			if err := im.image(src); err != nil {
				return err
			}
		default:
			if err := im.flushBullets(); err != nil {
				return err
			}
			im.para = append(im.para, trimmed)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	return im.flush()
}

func (im *importer) openSection(subheading string) error {
	if im.used || im.section > 0 {
		im.ed.AddSection()
		im.section++
		im.blocks = 1
		im.fresh = true
	}
	im.used = true
	return im.ed.SetSectionField(im.section, "subheading", subheading)
}

func (im *importer) nextBlock() (int, error) {
	im.used = true
	if im.fresh {
		im.fresh = false
		return 0, nil
	}
	if err := im.ed.AddBlock(im.section); err != nil {
		return 0, err
	}
	im.blocks++
	return im.blocks - 1, nil
}

func (im *importer) flush() error {
	if err := im.flushParagraph(); err != nil {
		return err
	}
	return im.flushBullets()
}

func (im *importer) flushParagraph() error {
	if len(im.para) == 0 {
		return nil
	}
	text := strings.Join(im.para, "\n")
	im.para = nil
	bi, err := im.nextBlock()
	if err != nil {
		return err
	}
	return im.ed.SetBlock(im.section, bi, "content", text)
}

func (im *importer) flushBullets() error {
	if len(im.bullets) == 0 {
		return nil
	}
	items := im.bullets
	im.bullets = nil
	bi, err := im.nextBlock()
	if err != nil {
		return err
	}
	if err := im.ed.SetBlock(im.section, bi, "type", string(content.BlockBullet)); err != nil {
		return err
	}
	slot := 0
	for _, item := range items {
		if item == "" {
			continue
		}
		if err := im.ed.SetBullet(im.section, bi, slot, item); err != nil {
			return err
		}
		slot++
	}
	return nil
}

func (im *importer) image(src string) error {
	bi, err := im.nextBlock()
	if err != nil {
		return err
	}
	if err := im.ed.SetBlock(im.section, bi, "type", string(content.BlockImage)); err != nil {
		return err
	}
	return im.ed.SetBlock(im.section, bi, "imageUrl", src)
}

// Export writes doc as a Markdown file that Import reads back into the same
// sections and blocks.
func Export(w io.Writer, doc content.Document) error {
	front := Front{
		ID:          doc.ID,
		MainHeading: doc.MainHeading,
		Description: doc.Description,
		Author:      doc.Author,
		CoverImage:  doc.CoverImage,
		Tags:        doc.Tags,
		Conclusion:  doc.Conclusion,
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(front); err != nil {
		return fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	buf.WriteString("---\n")

	for _, s := range doc.Sections {
		buf.WriteString("\n")
		if s.Subheading != "" {
			buf.WriteString("## " + s.Subheading + "\n\n")
		}
		for _, b := range s.Blocks {
			switch v := b.(type) {
			case content.Paragraph:
				if strings.TrimSpace(v.Content) == "" {
					continue
				}
				buf.WriteString(v.Content + "\n\n")
			case content.Bullet:
				items := content.NonEmpty(v.Bullets)
				if len(items) == 0 {
					continue
				}
				for _, item := range items {
					buf.WriteString("- " + item + "\n")
				}
				buf.WriteString("\n")
			case content.Image:
				if v.ImageURL == "" {
					continue
				}
				buf.WriteString("![](" + v.ImageURL + ")\n\n")
			}
		}
	}
	_, err := w.Write(bytes.TrimRight(buf.Bytes(), "\n"))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}
