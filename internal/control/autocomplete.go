package control

import (
	"sort"
	"strconv"
	"strings"

	"github.com/kobzarvs/sciedit/internal/config"
)

// Order says how the list handed to Start is arranged.
type Order int

const (
	// OrderPresorted lists are already sorted and shown as given.
	OrderPresorted Order = iota
	// OrderPerformSort lists are sorted before they are shown.
	OrderPerformSort
	// OrderCustom lists are shown as given and searched through a sorted
	// index. A prefix picks the matching item shown first.
	OrderCustom
)

// AutoComplete is the completion list state. It knows nothing about the
// document; the control feeds it the word being typed.
type AutoComplete struct {
	opts      config.AutocompleteOptions
	separator byte
	typeSep   byte

	Order Order

	active   bool
	items    []string
	types    []int
	index    []int
	selected int
	top      int
	posStart int
	startLen int
}

func NewAutoComplete(opts config.AutocompleteOptions) *AutoComplete {
	ac := &AutoComplete{selected: -1}
	ac.SetOptions(opts)
	return ac
}

func (ac *AutoComplete) SetOptions(opts config.AutocompleteOptions) {
	ac.opts = opts
	ac.separator = firstByte(opts.Separator, ' ')
	ac.typeSep = firstByte(opts.TypeSeparator, '?')
	if ac.opts.MaxHeight <= 0 {
		ac.opts.MaxHeight = 5
	}
}

func (ac *AutoComplete) Options() config.AutocompleteOptions {
	return ac.opts
}

func firstByte(s string, def byte) byte {
	if s == "" {
		return def
	}
	return s[0]
}

func (ac *AutoComplete) Active() bool {
	return ac.active
}

// Start opens an empty list for a word that began startLen bytes before pos.
func (ac *AutoComplete) Start(pos, startLen int) {
	if ac.active {
		ac.Cancel()
	}
	ac.active = true
	ac.posStart = pos
	ac.startLen = startLen
	ac.items = ac.items[:0]
	ac.types = ac.types[:0]
	ac.index = ac.index[:0]
	ac.selected = -1
	ac.top = 0
}

// PosStart is the caret position when the list was opened.
func (ac *AutoComplete) PosStart() int {
	return ac.posStart
}

func (ac *AutoComplete) StartLen() int {
	return ac.startLen
}

// SetList fills the list from items joined by the separator. An item may
// carry an image type after the type separator: "name?3".
func (ac *AutoComplete) SetList(list string) {
	ac.items = ac.items[:0]
	ac.types = ac.types[:0]
	for _, item := range strings.Split(list, string(ac.separator)) {
		if item == "" {
			continue
		}
		typ := -1
		if i := strings.IndexByte(item, ac.typeSep); i >= 0 {
			if n, err := strconv.Atoi(item[i+1:]); err == nil {
				typ = n
			}
			item = item[:i]
		}
		ac.items = append(ac.items, item)
		ac.types = append(ac.types, typ)
	}
	if ac.Order == OrderPerformSort {
		idx := ac.sortedIndex()
		items := make([]string, len(idx))
		types := make([]int, len(idx))
		for i, j := range idx {
			items[i], types[i] = ac.items[j], ac.types[j]
		}
		ac.items, ac.types = items, types
	}
	ac.index = ac.index[:0]
	if ac.Order == OrderCustom {
		ac.index = ac.sortedIndex()
	}
	ac.selected = -1
	ac.top = 0
	if len(ac.items) > 0 {
		ac.selected = 0
	}
}

func (ac *AutoComplete) sortedIndex() []int {
	idx := make([]int, len(ac.items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return ac.compare(ac.items[idx[a]], ac.items[idx[b]]) < 0
	})
	return idx
}

func (ac *AutoComplete) compare(a, b string) int {
	if !ac.opts.IgnoreCase {
		return strings.Compare(a, b)
	}
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if c := int(foldASCII(a[i])) - int(foldASCII(b[i])); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

// comparePrefix compares word with the first len(word) bytes of item.
func comparePrefix(word, item string, fold bool) int {
	n := min(len(word), len(item))
	for i := 0; i < n; i++ {
		a, b := word[i], item[i]
		if fold {
			a, b = foldASCII(a), foldASCII(b)
		}
		if a != b {
			return int(a) - int(b)
		}
	}
	if len(item) < len(word) {
		return 1
	}
	return 0
}

func foldASCII(ch byte) byte {
	if ch >= 'A' && ch <= 'Z' {
		return ch + 'a' - 'A'
	}
	return ch
}

func (ac *AutoComplete) Len() int {
	return len(ac.items)
}

// sortedAt returns the display index of the i-th item in search order.
func (ac *AutoComplete) sortedAt(i int) int {
	if ac.Order == OrderCustom {
		return ac.index[i]
	}
	return i
}

// Select moves the selection to the first item starting with word. An exact
// case match is preferred when case is ignored. With no match the list
// hides itself when AutoHide is set, otherwise nothing is selected.
func (ac *AutoComplete) Select(word string) {
	fold := ac.opts.IgnoreCase
	location := -1
	lo, hi := 0, len(ac.items)-1
	for lo <= hi && location == -1 {
		pivot := (lo + hi) / 2
		c := comparePrefix(word, ac.items[ac.sortedAt(pivot)], fold)
		switch {
		case c == 0:
			for pivot > lo && comparePrefix(word, ac.items[ac.sortedAt(pivot-1)], fold) == 0 {
				pivot--
			}
			location = pivot
			if fold {
				for ; pivot <= hi; pivot++ {
					item := ac.items[ac.sortedAt(pivot)]
					if comparePrefix(word, item, false) == 0 {
						location = pivot
						break
					}
					if comparePrefix(word, item, true) != 0 {
						break
					}
				}
			}
		case c < 0:
			hi = pivot - 1
		default:
			lo = pivot + 1
		}
	}
	if location == -1 {
		if ac.opts.AutoHide {
			ac.Cancel()
		} else {
			ac.selected = -1
		}
		return
	}
	if ac.Order == OrderCustom {
		// Several sorted neighbours may match; show the one listed first.
		best := ac.sortedAt(location)
		for i := location + 1; i < len(ac.items); i++ {
			j := ac.sortedAt(i)
			if comparePrefix(word, ac.items[j], fold) != 0 {
				break
			}
			best = min(best, j)
		}
		ac.selectIndex(best)
		return
	}
	ac.selectIndex(location)
}

func (ac *AutoComplete) selectIndex(i int) {
	ac.selected = i
	if i < 0 {
		return
	}
	if i < ac.top {
		ac.top = i
	}
	if i >= ac.top+ac.opts.MaxHeight {
		ac.top = i - ac.opts.MaxHeight + 1
	}
}

// Move shifts the selection by delta rows, clamped to the list.
func (ac *AutoComplete) Move(delta int) {
	if len(ac.items) == 0 {
		return
	}
	i := ac.selected + delta
	i = min(i, len(ac.items)-1)
	i = max(i, 0)
	ac.selectIndex(i)
}

func (ac *AutoComplete) Cancel() {
	ac.active = false
	ac.items = ac.items[:0]
	ac.types = ac.types[:0]
	ac.index = ac.index[:0]
	ac.selected = -1
	ac.top = 0
}

// Selection returns the selected display index or -1.
func (ac *AutoComplete) Selection() int {
	return ac.selected
}

func (ac *AutoComplete) Value(i int) string {
	if i < 0 || i >= len(ac.items) {
		return ""
	}
	return ac.items[i]
}

// Type returns the image type of item i, -1 when it has none.
func (ac *AutoComplete) Type(i int) int {
	if i < 0 || i >= len(ac.types) {
		return -1
	}
	return ac.types[i]
}

func (ac *AutoComplete) IsStopChar(ch rune) bool {
	return ch != 0 && strings.ContainsRune(ac.opts.StopChars, ch)
}

func (ac *AutoComplete) IsFillUpChar(ch rune) bool {
	return ch != 0 && strings.ContainsRune(ac.opts.FillUps, ch)
}

// Window returns the rows currently on screen and the selected row within
// them, -1 when the selection is off screen or empty.
func (ac *AutoComplete) Window() ([]string, int) {
	if !ac.active {
		return nil, -1
	}
	end := min(ac.top+ac.opts.MaxHeight, len(ac.items))
	rows := ac.items[ac.top:end]
	sel := ac.selected - ac.top
	if ac.selected < 0 || sel >= len(rows) {
		sel = -1
	}
	return rows, sel
}
