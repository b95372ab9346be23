package editor

import "testing"

func TestContractionHidesAndShows(t *testing.T) {
	c := NewContraction()
	c.InsertLines(1, 4)
	if c.LinesInDoc() != 5 || c.LinesDisplayed() != 5 {
		t.Fatalf("lines = %d/%d, want 5/5", c.LinesInDoc(), c.LinesDisplayed())
	}
	if !c.SetVisible(1, 2, false) {
		t.Fatalf("SetVisible reported no change")
	}
	if got := c.LinesDisplayed(); got != 3 {
		t.Fatalf("LinesDisplayed = %d, want 3", got)
	}
	if got := c.DisplayFromDoc(3); got != 1 {
		t.Fatalf("DisplayFromDoc(3) = %d, want 1", got)
	}
	if got := c.DocFromDisplay(1); got != 3 {
		t.Fatalf("DocFromDisplay(1) = %d, want 3", got)
	}
	if c.SetVisible(0, 0, false) || !c.GetVisible(0) {
		t.Fatalf("line 0 was hidden")
	}
	c.ShowAll()
	if c.HiddenLines() || c.LinesDisplayed() != 5 {
		t.Fatalf("ShowAll left hidden lines")
	}
}

func TestContractionHeights(t *testing.T) {
	c := NewContraction()
	c.InsertLines(1, 2)
	c.SetHeight(1, 3)
	if got := c.LinesDisplayed(); got != 5 {
		t.Fatalf("LinesDisplayed = %d, want 5", got)
	}
	if got := c.DisplayLastFromDoc(1); got != 3 {
		t.Fatalf("DisplayLastFromDoc(1) = %d, want 3", got)
	}
	if got := c.DocFromDisplay(2); got != 1 {
		t.Fatalf("DocFromDisplay(2) = %d, want 1", got)
	}
	c.SetVisible(1, 1, false)
	if got := c.LinesDisplayed(); got != 2 {
		t.Fatalf("LinesDisplayed with the tall line hidden = %d, want 2", got)
	}
}

func TestContractionDeleteLines(t *testing.T) {
	c := NewContraction()
	c.InsertLines(1, 3)
	c.SetExpanded(2, false)
	c.SetVisible(3, 3, false)
	c.DeleteLines(1, 1)
	if c.LinesInDoc() != 3 || c.LinesDisplayed() != 2 {
		t.Fatalf("lines = %d/%d, want 3/2", c.LinesInDoc(), c.LinesDisplayed())
	}
	if got := c.ContractedNext(0); got != 1 {
		t.Fatalf("ContractedNext = %d, want 1", got)
	}
}

func TestColumnMeasurer(t *testing.T) {
	m := ColumnMeasurer{TabWidth: 4}
	tests := []struct {
		text string
		x    int
		want int
	}{
		{"abc", 0, 3},
		{"\t", 0, 4},
		{"\t", 1, 3},
		{"a\tb", 0, 5},
		{"日本", 0, 4},
		{"é", 0, 1},
	}
	for _, tt := range tests {
		if got := m.Width(tt.text, tt.x); got != tt.want {
			t.Fatalf("Width(%q, %d) = %d, want %d", tt.text, tt.x, got, tt.want)
		}
	}
}
