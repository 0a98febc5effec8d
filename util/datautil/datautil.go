package datautil

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"
)

// Change kinds.
const (
	Modified = "~"
	Added    = "+"
	Removed  = "-"
)

// Change is one difference between two values, addressed by a path like "characterPrompts[1]".
type Change struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
	From any    `json:"from,omitempty"`
	To   any    `json:"to,omitempty"`
}

// Diff compares the JSON forms of a and b and returns the changes sorted by path.
// Objects are compared by key, arrays by index.
func Diff(a, b any) ([]Change, error) {
	ga, err := generic(a)
	if err != nil {
		return nil, err
	}
	gb, err := generic(b)
	if err != nil {
		return nil, err
	}
	var changes []Change
	diffValue(&changes, "", ga, gb)
	slices.SortStableFunc(changes, func(x, y Change) int { return strings.Compare(x.Path, y.Path) })
	return changes, nil
}

func generic(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func diffValue(changes *[]Change, path string, a, b any) {
	if reflect.DeepEqual(a, b) {
		return
	}
	switch av := a.(type) {
	case map[string]any:
		if bv, ok := b.(map[string]any); ok {
			for k, x := range av {
				if y, ok := bv[k]; ok {
					diffValue(changes, joinPath(path, k), x, y)
				} else {
					*changes = append(*changes, Change{Path: joinPath(path, k), Kind: Removed, From: x})
				}
			}
			for k, y := range bv {
				if _, ok := av[k]; !ok {
					*changes = append(*changes, Change{Path: joinPath(path, k), Kind: Added, To: y})
				}
			}
			return
		}
	case []any:
		if bv, ok := b.([]any); ok {
			for i := 0; i < max(len(av), len(bv)); i++ {
				p := fmt.Sprintf("%s[%d]", path, i)
				switch {
				case i >= len(av):
					*changes = append(*changes, Change{Path: p, Kind: Added, To: bv[i]})
				case i >= len(bv):
					*changes = append(*changes, Change{Path: p, Kind: Removed, From: av[i]})
				default:
					diffValue(changes, p, av[i], bv[i])
				}
			}
			return
		}
	}
	*changes = append(*changes, Change{Path: path, Kind: Modified, From: a, To: b})
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

// Print writes changes in a human-readable form:
//
//	~ seed: 1 -> 2
//	+ characterPrompts[1] = "girl"
//	- negativePrompt = "bad"
func Print(w io.Writer, changes []Change) error {
	if len(changes) == 0 {
		_, err := fmt.Fprintln(w, "no differences")
		return err
	}
	for _, c := range changes {
		var err error
		switch c.Kind {
		case Added:
			_, err = fmt.Fprintf(w, "+ %s = %s\n", c.Path, format(c.To))
		case Removed:
			_, err = fmt.Fprintf(w, "- %s = %s\n", c.Path, format(c.From))
		default:
			_, err = fmt.Fprintf(w, "~ %s: %s -> %s\n", c.Path, format(c.From), format(c.To))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func format(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
