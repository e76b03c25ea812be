package config

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/galister/overlayd/math/aff"
	"github.com/galister/overlayd/overlay"
)

// SavedOverlay is the persisted placement of one overlay.
// interact.Engine.OnPersist is the grab-release hook for writing it back;
// nothing in this module sets that hook.
type SavedOverlay struct {
	Name      string     `json:"name"`
	Loc       [3]float64 `json:"loc"`
	Rot       [4]float64 `json:"rot"`
	Scale     [3]float64 `json:"scale"`
	Curvature float64    `json:"curvature,omitempty"`
}

// SavedState is the full persisted layout: the world anchor plus every
// overlay's placement, written to zz-saved-state.json5.
type SavedState struct {
	Anchor   SavedOverlay   `json:"anchor"`
	Overlays []SavedOverlay `json:"overlays"`
}

// FromTransform captures t (and an optional curvature) into a SavedOverlay
// named name.
func FromTransform(name string, t *aff.Transform, curvature float64) SavedOverlay {
	return SavedOverlay{
		Name:      name,
		Loc:       [3]float64{t.Loc.X, t.Loc.Y, t.Loc.Z},
		Rot:       [4]float64{t.Rot.X, t.Rot.Y, t.Rot.Z, t.Rot.W},
		Scale:     [3]float64{t.Scale.X, t.Scale.Y, t.Scale.Z},
		Curvature: curvature,
	}
}

// Apply writes the saved values back into t.
func (s SavedOverlay) Apply(t *aff.Transform) {
	t.Loc.SetS(s.Loc[0], s.Loc[1], s.Loc[2])
	t.Rot.X, t.Rot.Y, t.Rot.Z, t.Rot.W = s.Rot[0], s.Rot[1], s.Rot[2], s.Rot[3]
	if s.Scale != [3]float64{} {
		t.Scale.SetS(s.Scale[0], s.Scale[1], s.Scale[2])
	} else {
		t.Scale.SetS(1, 1, 1)
	}
}

// ApplyState restores a previously saved layout onto c and anchor: the
// world anchor's transform is written back directly (it is never
// recomputed from a saved file, only from a live HMD pose), and each
// saved overlay is matched to a live one by name and given its saved
// transform and curvature. A saved entry with no matching live overlay is
// skipped — this package doesn't invent overlays, it only restores ones
// the container already created from the discovered outputs.
func ApplyState(c *overlay.Container, anchor *overlay.WorldAnchor, st SavedState) {
	if anchor != nil && st.Anchor.Name != "" {
		st.Anchor.Apply(anchor.Transform)
	}
	for _, saved := range st.Overlays {
		o := c.GetByName(saved.Name)
		if o == nil {
			continue
		}
		saved.Apply(o.Placement.Transform)
		o.Placement.SetCurvature(saved.Curvature)
	}
}

// LoadState reads a JSON5 file (JSON plus "//" and "/* */" comments) using
// stdlib encoding/json after a small comment-stripping pass. No pack example
// ships a JSON5 decoder, so stdlib is used here and noted in DESIGN.md.
func LoadState(path string) (SavedState, error) {
	var st SavedState
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return st, fmt.Errorf("config: reading %s: %w", path, err)
	}
	stripped := stripJSON5Comments(raw)
	if err := json.Unmarshal(stripped, &st); err != nil {
		return st, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return st, nil
}

// SaveState writes st to path as indented JSON (JSON5-compatible, no
// comments emitted on write).
func SaveState(path string, st SavedState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshaling saved state: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// stripJSON5Comments removes "//" line comments and "/* */" block comments
// outside of string literals.
func stripJSON5Comments(raw []byte) []byte {
	var out bytes.Buffer
	r := bufio.NewReader(bytes.NewReader(raw))
	inString := false
	for {
		b, err := r.ReadByte()
		if err != nil {
			break
		}
		switch {
		case inString:
			out.WriteByte(b)
			if b == '\\' {
				if next, err := r.ReadByte(); err == nil {
					out.WriteByte(next)
				}
				continue
			}
			if b == '"' {
				inString = false
			}
		case b == '"':
			inString = true
			out.WriteByte(b)
		case b == '/':
			peek, err := r.Peek(1)
			if err != nil {
				out.WriteByte(b)
				continue
			}
			switch peek[0] {
			case '/':
				r.ReadString('\n')
				out.WriteByte('\n')
			case '*':
				r.ReadByte()
				for {
					chunk, err := r.ReadString('/')
					if err != nil {
						break
					}
					if bytes.HasSuffix([]byte(chunk), []byte("*/")) {
						break
					}
				}
			default:
				out.WriteByte(b)
			}
		default:
			out.WriteByte(b)
		}
	}
	return out.Bytes()
}
