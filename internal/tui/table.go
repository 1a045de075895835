package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
)

// minColWidth is the narrowest a column is ever rendered.
const minColWidth = 4

// columnDef describes a single column in a table.
type columnDef struct {
	Title    string
	Width    int  // preferred width, used as a proportion of the terminal width
	SortDesc bool // initial direction when the column is first selected
}

// tableModel is the generic base for sortable, paginated, searchable tables.
type tableModel struct {
	columns   []columnDef
	sortCol   int // -1 = unsorted
	sortDesc  bool
	page      int // 0-indexed
	pageSize  int // default 10
	cursor    int // row within the current page
	search    string
	searching bool
	input     textinput.Model
	focused   bool
}

// newTableModel initialises a tableModel with sensible defaults.
func newTableModel(cols []columnDef) tableModel {
	ti := textinput.New()
	ti.Placeholder = "filter..."
	ti.CharLimit = 80
	return tableModel{
		columns:  cols,
		sortCol:  -1,
		pageSize: 10,
		input:    ti,
	}
}

// Update handles keyboard input for sorting, pagination, cursor movement
// and search.
func (t tableModel) Update(msg tea.Msg) (tableModel, tea.Cmd) {
	if !t.focused {
		return t, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return t, nil
	}

	if t.searching {
		switch {
		case key.Matches(keyMsg, keys.Escape):
			t.searching = false
			t.input.Blur()
			if t.input.Value() == "" {
				t.search = ""
			}
			return t, nil
		case keyMsg.Type == tea.KeyEnter:
			t.search = t.input.Value()
			t.searching = false
			t.input.Blur()
			t.page = 0
			t.cursor = 0
			return t, nil
		default:
			var cmd tea.Cmd
			t.input, cmd = t.input.Update(keyMsg)
			return t, cmd
		}
	}

	switch {
	case key.Matches(keyMsg, keys.Search):
		t.searching = true
		t.input.SetValue(t.search)
		t.input.Focus()
		return t, textinput.Blink
	case key.Matches(keyMsg, keys.Escape):
		t.search = ""
		t.input.SetValue("")
		t.page = 0
		t.cursor = 0
	case key.Matches(keyMsg, keys.Up):
		if t.cursor > 0 {
			t.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		// The owning table clamps against the real page length.
		t.cursor++
	case key.Matches(keyMsg, keys.PrevPage):
		if t.page > 0 {
			t.page--
		}
		t.cursor = 0
	case key.Matches(keyMsg, keys.NextPage):
		t.page++
		t.cursor = 0
	default:
		col := digitToCol(keyMsg.String())
		if col >= 0 && col < len(t.columns) {
			if col == t.sortCol {
				t.sortDesc = !t.sortDesc
			} else {
				t.sortCol = col
				t.sortDesc = t.columns[col].SortDesc
			}
			t.page = 0
			t.cursor = 0
		}
	}
	return t, nil
}

// digitToCol converts a "1"–"9" key string to a 0-indexed column number.
// Returns -1 for any other string.
func digitToCol(s string) int {
	if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		return int(s[0] - '1')
	}
	return -1
}

// pageCount returns the total number of pages for totalRows rows at pageSize rows per page.
// Always at least 1.
func pageCount(totalRows, pageSize int) int {
	if totalRows == 0 || pageSize <= 0 {
		return 1
	}
	c := totalRows / pageSize
	if totalRows%pageSize != 0 {
		c++
	}
	return c
}

// currentPageIndices returns the slice of row indices visible on the current page.
func currentPageIndices(allIndices []int, page, pageSize int) []int {
	if pageSize <= 0 || len(allIndices) == 0 {
		return allIndices
	}
	start := page * pageSize
	if start >= len(allIndices) {
		start = 0
	}
	end := start + pageSize
	if end > len(allIndices) {
		end = len(allIndices)
	}
	return allIndices[start:end]
}

// clampPage keeps the page index within bounds for totalRows rows.
func (t *tableModel) clampPage(totalRows int) {
	pc := pageCount(totalRows, t.pageSize)
	if t.page >= pc {
		t.page = pc - 1
	}
	if t.page < 0 {
		t.page = 0
	}
}

// clampCursor keeps the cursor on a row of the current page.
func (t *tableModel) clampCursor(pageRows int) {
	if pageRows <= 0 || t.cursor < 0 {
		t.cursor = 0
		return
	}
	if t.cursor >= pageRows {
		t.cursor = pageRows - 1
	}
}

// pageIndices returns the display-row indices on the current page.
func (t *tableModel) pageIndices(totalRows int) []int {
	all := make([]int, totalRows)
	for i := range all {
		all[i] = i
	}
	return currentPageIndices(all, t.page, t.pageSize)
}

// renderTitle renders the title bar with search/sort/page hints.
func (t *tableModel) renderTitle(title string, totalRows int) string {
	pageInfo := fmt.Sprintf("Page %d/%d", t.page+1, pageCount(totalRows, t.pageSize))

	var right string
	switch {
	case t.searching:
		right = "Search: " + t.input.View()
	case t.search != "":
		right = fmt.Sprintf("filter=%q  %s", t.search, pageInfo)
	default:
		right = fmt.Sprintf("[/: search]  [1-%d: sort]  [←→: page]  %s", len(t.columns), pageInfo)
	}
	return StyleDim.Render(title + "  " + right)
}

// headerCells returns the column titles with a direction arrow on the sort
// column, padded to widths when given.
func (t *tableModel) headerCells(widths []int) []string {
	headers := make([]string, len(t.columns))
	for i, c := range t.columns {
		h := c.Title
		if i == t.sortCol {
			if t.sortDesc {
				h += "↓"
			} else {
				h += "↑"
			}
		}
		if len(widths) == len(t.columns) {
			if w := runewidth.StringWidth(h); w < widths[i] {
				h += strings.Repeat(" ", widths[i]-w)
			}
		}
		headers[i] = h
	}
	return headers
}

// render draws the title, the current page of cells and an optional detail
// line for the row under the cursor. cell, style and detail take indices
// into the display rows.
func (t *tableModel) render(title string, width, totalRows int, empty string,
	cell func(row, col int) string, style func(row, col int) lipgloss.Style, detail func(row int) string) string {

	hdr := t.renderTitle(title, totalRows)
	pageIdx := t.pageIndices(totalRows)
	if len(pageIdx) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, hdr, StyleDim.Render("  ("+empty+")"))
	}

	var widths []int
	if width > 0 {
		widths = columnWidths(width, t.columns)
	}

	sortCol, focused, cursor := t.sortCol, t.focused, t.cursor
	tbl := ltable.New().
		Headers(t.headerCells(widths)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				if col == sortCol {
					return lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
				}
				return lipgloss.NewStyle().Bold(true).Foreground(colorGray)
			}
			base := lipgloss.NewStyle().Foreground(colorWhite)
			if row >= 0 && row < len(pageIdx) {
				base = style(pageIdx[row], col)
			}
			if focused && row == cursor {
				return base.Background(colorSelectedBg)
			}
			if row%2 == 0 {
				return base.Background(colorAlt)
			}
			return base
		}).
		BorderStyle(lipgloss.NewStyle().Foreground(colorGray)).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(true).
		BorderColumn(false)
	if width > 0 {
		tbl = tbl.Width(width)
	}

	for _, idx := range pageIdx {
		cells := make([]string, len(t.columns))
		for col := range t.columns {
			v := sanitize(cell(idx, col))
			if len(widths) == len(t.columns) {
				v = truncateName(v, widths[col])
			}
			cells[col] = v
		}
		tbl = tbl.Row(cells...)
	}

	if focused && detail != nil && cursor < len(pageIdx) {
		if d := detail(pageIdx[cursor]); d != "" {
			return lipgloss.JoinVertical(lipgloss.Left, hdr, tbl.String(), StyleDim.Render("  "+sanitize(d)))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, hdr, tbl.String())
}

// columnWidths distributes available cells across columns in proportion to
// their preferred widths. The last column takes the remainder. A
// non-positive available returns the preferred widths unchanged.
func columnWidths(available int, defs []columnDef) []int {
	out := make([]int, len(defs))
	if available <= 0 {
		for i, d := range defs {
			out[i] = d.Width
		}
		return out
	}
	total := 0
	for _, d := range defs {
		total += d.Width
	}
	if total <= 0 {
		return out
	}
	used := 0
	for i, d := range defs {
		w := available * d.Width / total
		if i == len(defs)-1 {
			w = available - used
		}
		if w < minColWidth {
			w = minColWidth
		}
		out[i] = w
		used += w
	}
	return out
}

// truncateName shortens s to at most maxWidth terminal cells, ending in
// "..." when there is room for it.
func truncateName(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// sanitize strips control characters so API-supplied names cannot inject
// terminal escape sequences.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0) {
			return -1
		}
		return r
	}, s)
}
