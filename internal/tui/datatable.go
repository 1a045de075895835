package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// dataTable binds a tableModel to a row type. Filtering and sorting are
// re-applied whenever the data, the sort column or the search term change.
type dataTable[T any] struct {
	tableModel
	title       string
	empty       string
	allRows     []T // unfiltered source data
	displayRows []T // after filter + sort applied

	filter   func(rows []T, search string) []T
	sort     func(rows []T, col int, desc bool) []T
	cell     func(row T, col int) string
	colStyle func(row T, col int) lipgloss.Style
	detail   func(row T) string
}

// SetData applies the current search filter and sort to rows.
func (m *dataTable[T]) SetData(rows []T) {
	m.allRows = rows
	m.refresh()
}

func (m *dataTable[T]) refresh() {
	m.displayRows = m.sort(m.filter(m.allRows, m.search), m.sortCol, m.sortDesc)
	m.clampPage(len(m.displayRows))
	m.clampCursor(len(m.pageIndices(len(m.displayRows))))
}

// Update delegates to the embedded tableModel and re-sorts when needed.
func (m dataTable[T]) Update(msg tea.Msg) (dataTable[T], tea.Cmd) {
	prevSort, prevDesc, prevSearch := m.sortCol, m.sortDesc, m.search

	base, cmd := m.tableModel.Update(msg)
	m.tableModel = base

	if m.sortCol != prevSort || m.sortDesc != prevDesc || m.search != prevSearch {
		m.displayRows = m.sort(m.filter(m.allRows, m.search), m.sortCol, m.sortDesc)
	}
	m.clampPage(len(m.displayRows))
	m.clampCursor(len(m.pageIndices(len(m.displayRows))))
	return m, cmd
}

// Len returns the number of rows after filtering.
func (m *dataTable[T]) Len() int {
	return len(m.displayRows)
}

// Selected returns the row under the cursor.
func (m *dataTable[T]) Selected() (T, bool) {
	var zero T
	idx := m.pageIndices(len(m.displayRows))
	if m.cursor < 0 || m.cursor >= len(idx) {
		return zero, false
	}
	return m.displayRows[idx[m.cursor]], true
}

// renderTable renders the title bar and the current page.
func (m *dataTable[T]) renderTable(width int) string {
	rows := m.displayRows
	var detail func(int) string
	if m.detail != nil {
		detail = func(i int) string { return m.detail(rows[i]) }
	}
	return m.render(m.title, width, len(rows), m.empty,
		func(i, col int) string { return m.cell(rows[i], col) },
		func(i, col int) lipgloss.Style { return m.colStyle(rows[i], col) },
		detail)
}
