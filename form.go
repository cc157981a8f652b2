package blockpress

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/eringen/blockpress/editor"
)

var documentFields = []string{"mainHeading", "description", "author", "coverImage", "conclusion"}

type indexedValue struct {
	idx   []int
	field string
	value string
}

// applyForm replays the posted editor form as editor operations. Bullets of
// a block are applied from the highest index down so that a cleared slot,
// which the editor removes, never shifts an edit still to be applied.
func applyForm(ed *editor.Editor, form url.Values) error {
	for _, name := range documentFields {
		if vals, ok := form[name]; ok {
			if err := ed.SetField(name, first(vals)); err != nil {
				return err
			}
		}
	}

	var tags, subheadings, blockFields, bullets []indexedValue
	for key, vals := range form {
		parts := strings.Split(key, ".")
		switch {
		case parts[0] == "tag" && len(parts) == 2:
			if iv, ok := parseIndexed(parts[1:], "", first(vals)); ok {
				tags = append(tags, iv)
			}
		case parts[0] == "section" && len(parts) == 3:
			if iv, ok := parseIndexed(parts[1:2], parts[2], first(vals)); ok {
				subheadings = append(subheadings, iv)
			}
		case parts[0] == "block" && len(parts) == 4:
			if iv, ok := parseIndexed(parts[1:3], parts[3], first(vals)); ok {
				blockFields = append(blockFields, iv)
			}
		case parts[0] == "bullet" && len(parts) == 4:
			if iv, ok := parseIndexed(parts[1:4], "", first(vals)); ok {
				bullets = append(bullets, iv)
			}
		}
	}

	sortIndexed(tags)
	for _, t := range tags {
		if err := ed.SetTag(t.idx[0], t.value); err != nil {
			return err
		}
	}
	sortIndexed(subheadings)
	for _, s := range subheadings {
		if err := ed.SetSectionField(s.idx[0], s.field, s.value); err != nil {
			return err
		}
	}

	// type first, so the field that follows lands on the block as the
	// operator now sees it
	sort.SliceStable(blockFields, func(i, j int) bool {
		a, b := blockFields[i], blockFields[j]
		if c := compareIdx(a.idx, b.idx); c != 0 {
			return c < 0
		}
		return a.field == "type" && b.field != "type"
	})
	for _, f := range blockFields {
		if err := ed.SetBlock(f.idx[0], f.idx[1], f.field, f.value); err != nil {
			return err
		}
	}

	sort.Slice(bullets, func(i, j int) bool {
		a, b := bullets[i].idx, bullets[j].idx
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		if a[1] != b[1] {
			return a[1] < b[1]
		}
		return a[2] > b[2]
	})
	for _, b := range bullets {
		if err := ed.SetBullet(b.idx[0], b.idx[1], b.idx[2], b.value); err != nil {
			return err
		}
	}
	return nil
}

func first(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

func parseIndexed(raw []string, field, value string) (indexedValue, bool) {
	idx := make([]int, len(raw))
	for i, r := range raw {
		n, err := strconv.Atoi(r)
		if err != nil || n < 0 {
			return indexedValue{}, false
		}
		idx[i] = n
	}
	return indexedValue{idx: idx, field: field, value: value}, true
}

func compareIdx(a, b []int) int {
	for i := range a {
		if a[i] != b[i] {
			return a[i] - b[i]
		}
	}
	return 0
}

func sortIndexed(vals []indexedValue) {
	sort.Slice(vals, func(i, j int) bool { return compareIdx(vals[i].idx, vals[j].idx) < 0 })
}

// formAction is the button the operator pressed, e.g. "remove-block:0:2".
type formAction struct {
	kind string
	args []int
}

var actionArity = map[string]int{
	"apply":          0,
	"save":           0,
	"delete":         0,
	"discard":        0,
	"add-tag":        0,
	"add-section":    0,
	"remove-tag":     1,
	"remove-section": 1,
	"add-block":      1,
	"remove-block":   2,
}

func parseAction(raw string) (formAction, error) {
	if raw == "" {
		return formAction{kind: "apply"}, nil
	}
	parts := strings.Split(raw, ":")
	arity, ok := actionArity[parts[0]]
	if !ok || len(parts)-1 != arity {
		return formAction{}, fmt.Errorf("unknown action %q", raw)
	}
	a := formAction{kind: parts[0]}
	for _, p := range parts[1:] {
		n, err := strconv.Atoi(p)
		if err != nil {
			return formAction{}, fmt.Errorf("unknown action %q", raw)
		}
		a.args = append(a.args, n)
	}
	return a, nil
}

// applyStructural runs the add and remove actions. It reports false for
// actions the handler must run itself.
func (a formAction) applyStructural(ed *editor.Editor) (bool, error) {
	switch a.kind {
	case "apply":
		return true, nil
	case "add-tag":
		ed.AddTag()
	case "remove-tag":
		return true, ed.RemoveTag(a.args[0])
	case "add-section":
		ed.AddSection()
	case "remove-section":
		return true, ed.RemoveSection(a.args[0])
	case "add-block":
		return true, ed.AddBlock(a.args[0])
	case "remove-block":
		return true, ed.RemoveBlock(a.args[0], a.args[1])
	default:
		return false, nil
	}
	return true, nil
}
