package editor

import "github.com/rivo/uniseg"

// Measurer reports how wide text is on screen. x is the column the text starts
// at, which matters for tab expansion.
type Measurer interface {
	Width(text string, x int) int
}

// ColumnMeasurer measures in terminal cells: one grapheme cluster takes its
// East Asian width and a tab advances to the next multiple of TabWidth.
type ColumnMeasurer struct {
	TabWidth int
}

func (m ColumnMeasurer) Width(text string, x int) int {
	tab := m.TabWidth
	if tab < 1 {
		tab = 1
	}
	start := x
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		if g.Str() == "\t" {
			x += tab - x%tab
			continue
		}
		x += max(g.Width(), 1)
	}
	return x - start
}

// clusters splits text into grapheme clusters with their byte offsets.
func clusters(text string) []cluster {
	var out []cluster
	offset := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		s := g.Str()
		out = append(out, cluster{offset: offset, text: s})
		offset += len(s)
	}
	return out
}

type cluster struct {
	offset int
	text   string
}
