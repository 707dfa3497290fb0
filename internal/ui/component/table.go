package component

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/okx-trader/internal/ui/style"
)

// TableColumn represents a column configuration
type TableColumn struct {
	Header string
	Width  int
	Align  lipgloss.Position
}

type tableRow struct {
	data  []string
	style lipgloss.Style
}

// Table is a bordered, selectable table. When a height is set only the
// rows around the selection are rendered.
type Table struct {
	columns     []TableColumn
	rows        []tableRow
	width       int
	height      int
	selectedRow int
	emptyText   string

	headerStyle      lipgloss.Style
	rowStyle         lipgloss.Style
	selectedRowStyle lipgloss.Style
	borderStyle      lipgloss.Style
}

func NewTable() *Table {
	palette := style.DefaultPalette()

	return &Table{
		headerStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			Padding(0, 1),

		rowStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1),

		selectedRowStyle: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Primary).
			Padding(0, 1),

		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),
	}
}

// AddColumn adds a column; a width of zero shares the remaining width.
func (t *Table) AddColumn(header string, width int, align lipgloss.Position) *Table {
	t.columns = append(t.columns, TableColumn{Header: header, Width: width, Align: align})
	return t
}

// SetRows replaces all rows and keeps the selection in range.
func (t *Table) SetRows(rows [][]string) *Table {
	t.rows = make([]tableRow, len(rows))
	for i, data := range rows {
		t.rows[i] = tableRow{data: data, style: t.rowStyle}
	}
	if t.selectedRow >= len(t.rows) {
		t.selectedRow = len(t.rows) - 1
	}
	if t.selectedRow < 0 {
		t.selectedRow = 0
	}
	return t
}

func (t *Table) SetRowStyle(rowIndex int, style lipgloss.Style) *Table {
	if rowIndex >= 0 && rowIndex < len(t.rows) {
		t.rows[rowIndex].style = style
	}
	return t
}

func (t *Table) SetSize(width, height int) *Table {
	t.width = width
	t.height = height
	return t
}

func (t *Table) SetSelectedRow(index int) *Table {
	if index >= 0 && index < len(t.rows) {
		t.selectedRow = index
	}
	return t
}

func (t *Table) GetSelectedRow() int {
	return t.selectedRow
}

func (t *Table) MoveUp() *Table {
	if t.selectedRow > 0 {
		t.selectedRow--
	}
	return t
}

func (t *Table) MoveDown() *Table {
	if t.selectedRow < len(t.rows)-1 {
		t.selectedRow++
	}
	return t
}

// SetEmptyText sets the line shown in place of rows when there are none.
func (t *Table) SetEmptyText(text string) *Table {
	t.emptyText = text
	return t
}

func (t *Table) GetRowCount() int {
	return len(t.rows)
}

func (t *Table) View() string {
	if len(t.columns) == 0 {
		return "No columns defined"
	}
	t.calculateColumnWidths()

	lines := make([]string, 0, len(t.rows)+2)
	header := make([]string, len(t.columns))
	separator := make([]string, len(t.columns))
	for i, col := range t.columns {
		header[i] = t.renderCell(col.Header, col.Width, col.Align, t.headerStyle)
		separator[i] = strings.Repeat("─", col.Width)
	}
	lines = append(lines, strings.Join(header, "│"), strings.Join(separator, "┼"))

	if len(t.rows) == 0 && t.emptyText != "" {
		lines = append(lines, t.rowStyle.Foreground(style.DefaultPalette().TextMuted).Render(t.emptyText))
	}

	first, last := t.visibleRows()
	for rowIndex := first; rowIndex < last; rowIndex++ {
		row := t.rows[rowIndex]
		rowStyle := row.style
		if rowIndex == t.selectedRow {
			rowStyle = t.selectedRowStyle
		}

		cells := make([]string, len(t.columns))
		for i, col := range t.columns {
			cellData := ""
			if i < len(row.data) {
				cellData = row.data[i]
			}
			cells[i] = t.renderCell(cellData, col.Width, col.Align, rowStyle)
		}
		lines = append(lines, strings.Join(cells, "│"))
	}

	return t.borderStyle.Render(strings.Join(lines, "\n"))
}

// visibleRows is the window of rows that fits the height and contains the
// selection. Border, header and separator take four lines.
func (t *Table) visibleRows() (first, last int) {
	capacity := t.height - 4
	if t.height <= 0 || capacity >= len(t.rows) {
		return 0, len(t.rows)
	}
	if capacity < 1 {
		capacity = 1
	}
	if t.selectedRow >= capacity {
		first = t.selectedRow - capacity + 1
	}
	return first, first + capacity
}

func (t *Table) renderCell(content string, width int, align lipgloss.Position, style lipgloss.Style) string {
	if runes := []rune(content); width > 0 && len(runes) > width {
		if width > 3 {
			content = string(runes[:width-3]) + "..."
		} else {
			content = string(runes[:width])
		}
	}
	return style.Width(width).Align(align).Render(content)
}

// calculateColumnWidths splits what explicit widths leave among zero-width columns.
func (t *Table) calculateColumnWidths() {
	if t.width <= 0 {
		return
	}

	explicit, auto := 0, 0
	for _, col := range t.columns {
		if col.Width > 0 {
			explicit += col.Width
		} else {
			auto++
		}
	}

	available := t.width - explicit - (len(t.columns) - 1)
	if auto == 0 || available <= 0 {
		return
	}
	for i := range t.columns {
		if t.columns[i].Width <= 0 {
			t.columns[i].Width = available / auto
		}
	}
}
