package canvas

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// KeyClass classifies a keyboard-canvas key, per spec.md §4.7 "symbol vs
// numeric-pad vs modifier classification".
type KeyClass string

const (
	KeyClassSymbol  KeyClass = "symbol"
	KeyClassNumpad  KeyClass = "numpad"
	KeyClassModifier KeyClass = "modifier"
)

// KeyLayout is one key as described by the YAML layout file.
type KeyLayout struct {
	Label     string   `yaml:"label"`
	AltGr     string   `yaml:"altgr,omitempty"`
	Width     float64  `yaml:"width"`
	Class     KeyClass `yaml:"class"`
	Code      uint32   `yaml:"code"`
	ExecCmd   string   `yaml:"exec,omitempty"`
}

// RowLayout is one row of keys.
type RowLayout struct {
	Keys []KeyLayout `yaml:"keys"`
}

// Layout is the full keyboard layout: rows of keys, loaded from YAML per
// spec.md §4.7 "grid derived from a YAML layout describing rows of key
// widths", grounded on the teacher's gopkg.in/yaml.v3 usage in
// load/shd.go.
type Layout struct {
	Rows []RowLayout `yaml:"rows"`
}

// LoadLayout reads and parses a keyboard layout YAML file.
func LoadLayout(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("canvas: reading keyboard layout %s: %w", path, err)
	}
	var layout Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return Layout{}, fmt.Errorf("canvas: parsing keyboard layout %s: %w", path, err)
	}
	return layout, nil
}

// KeyState is the shared state for the keyboard canvas: which modifiers
// are latched and a sink for key/exec events.
type KeyState struct {
	ShiftLatched bool
	AltGrLatched bool

	OnKey  func(code uint32, pressed bool)
	OnExec func(cmd string)
}

// keyButtonData is the per-key control data.
type keyButtonData struct {
	Layout KeyLayout
}

const rowHeight = 36

// NewKeyboardCanvas builds one control per key, laid out in rows using
// each key's relative width, per spec.md §4.7.
func NewKeyboardCanvas(width int, layout Layout, state KeyState) *Canvas[keyButtonData, KeyState] {
	rowCount := len(layout.Rows)
	height := rowCount * rowHeight
	c := New[keyButtonData, KeyState](width, height, state)

	for rowIdx, row := range layout.Rows {
		var totalWidth float64
		for _, k := range row.Keys {
			totalWidth += k.Width
		}
		if totalWidth <= 0 {
			totalWidth = 1
		}
		x := 0.0
		for _, key := range row.Keys {
			key := key
			pxWidth := int(key.Width / totalWidth * float64(width))
			ctrl := &Control[keyButtonData, KeyState]{
				ID:   len(c.Controls),
				Rect: Rect{X: int(x), Y: rowIdx * rowHeight, W: pxWidth, H: rowHeight},
				Data: keyButtonData{Layout: key},
				Text: labelFor(key, state),
				OnUpdate: func(ctrl *Control[keyButtonData, KeyState], shared *KeyState) bool {
					label := labelFor(ctrl.Data.Layout, *shared)
					dirty := ctrl.Text != label
					ctrl.Text = label
					return dirty
				},
				OnPress: func(ctrl *Control[keyButtonData, KeyState], shared *KeyState) {
					k := ctrl.Data.Layout
					if k.ExecCmd != "" {
						if shared.OnExec != nil {
							shared.OnExec(k.ExecCmd)
						}
						return
					}
					if k.Class == KeyClassModifier {
						switch k.Label {
						case "Shift":
							shared.ShiftLatched = !shared.ShiftLatched
						case "AltGr":
							shared.AltGrLatched = !shared.AltGrLatched
						}
						return
					}
					if shared.OnKey != nil {
						shared.OnKey(k.Code, true)
					}
				},
				OnRelease: func(ctrl *Control[keyButtonData, KeyState], shared *KeyState) {
					k := ctrl.Data.Layout
					if k.Class != KeyClassModifier && k.ExecCmd == "" && shared.OnKey != nil {
						shared.OnKey(k.Code, false)
					}
				},
				TestHighlight: func(ctrl *Control[keyButtonData, KeyState], shared *KeyState) bool {
					k := ctrl.Data.Layout
					if k.Label == "Shift" {
						return shared.ShiftLatched
					}
					if k.Label == "AltGr" {
						return shared.AltGrLatched
					}
					return false
				},
			}
			c.AddControl(ctrl)
			x += float64(pxWidth)
		}
	}
	return c
}

// labelFor picks the AltGr label when the layout defines one and AltGr is
// latched, per spec.md §4.7 "AltGr labels if the layout has them".
func labelFor(key KeyLayout, state KeyState) string {
	if state.AltGrLatched && key.AltGr != "" {
		return key.AltGr
	}
	return key.Label
}
