package inkpack

import (
	"fmt"
	"sort"
	"strings"
)

// Panel describes a display's native resolution and the pack mode its
// controller expects.
type Panel struct {
	Name       string   `json:"name"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	Mode       PackMode `json:"mode"`
	RowAligned bool     `json:"rowAligned"`
}

// Palette returns the palette matching the panel's pack mode.
func (p Panel) Palette() Palette {
	switch p.Mode {
	case PackBWR:
		return BWR
	case PackBWRY:
		return BWRY
	}
	return BW
}

var panels = map[string]Panel{
	"2in13":  {Name: "2in13", Width: 122, Height: 250, Mode: PackBW, RowAligned: true},
	"2in9":   {Name: "2in9", Width: 128, Height: 296, Mode: PackBW, RowAligned: true},
	"4in2":   {Name: "4in2", Width: 400, Height: 300, Mode: PackBW, RowAligned: true},
	"7in5":   {Name: "7in5", Width: 800, Height: 480, Mode: PackBW, RowAligned: true},
	"2in13b": {Name: "2in13b", Width: 104, Height: 212, Mode: PackBWR, RowAligned: true},
	"4in2b":  {Name: "4in2b", Width: 400, Height: 300, Mode: PackBWR, RowAligned: true},
	"7in5b":  {Name: "7in5b", Width: 800, Height: 480, Mode: PackBWR, RowAligned: true},
	"4in37g": {Name: "4in37g", Width: 512, Height: 368, Mode: PackBWRY, RowAligned: true},
}

// PanelByName returns a registered panel.
func PanelByName(name string) (Panel, error) {
	p, ok := panels[strings.ToLower(name)]
	if !ok {
		return Panel{}, fmt.Errorf("%w: %q", ErrUnknownPanel, name)
	}
	return p, nil
}

// Panels returns every registered panel sorted by name.
func Panels() []Panel {
	out := make([]Panel, 0, len(panels))
	for _, p := range panels {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
