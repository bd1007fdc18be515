package domain

// DashboardMatrix is the complete Category x Item x Location cross-tabulation.
// Every item row carries one quantity per entry of Locations, in the same order;
// pairs without a stock record hold an explicit 0.
type DashboardMatrix struct {
	Locations  []Location       `json:"locations"`
	Categories []MatrixCategory `json:"categories"`
}

type MatrixCategory struct {
	Category Category     `json:"category"`
	Items    []MatrixItem `json:"items"`
}

type MatrixItem struct {
	Item       Item    `json:"item"`
	Quantities []int64 `json:"quantities"`
}

// Empty reports whether the matrix has no item rows at all.
func (m DashboardMatrix) Empty() bool {
	return m.ItemCount() == 0
}

func (m DashboardMatrix) ItemCount() int {
	n := 0
	for _, c := range m.Categories {
		n += len(c.Items)
	}
	return n
}

// Quantity looks a cell up by names. The first match wins when names repeat.
func (m DashboardMatrix) Quantity(category, item, location string) (int64, bool) {
	col := -1
	for i, l := range m.Locations {
		if l.Name == location {
			col = i
			break
		}
	}
	if col < 0 {
		return 0, false
	}
	for _, c := range m.Categories {
		if c.Category.Name != category {
			continue
		}
		for _, it := range c.Items {
			if it.Item.Name == item {
				return it.Quantities[col], true
			}
		}
	}
	return 0, false
}

// Map renders the matrix as category name -> item name -> location name -> quantity.
// Entities sharing a name collapse onto one key; the later one wins.
func (m DashboardMatrix) Map() map[string]map[string]map[string]int64 {
	out := make(map[string]map[string]map[string]int64, len(m.Categories))
	for _, c := range m.Categories {
		items, ok := out[c.Category.Name]
		if !ok {
			items = make(map[string]map[string]int64, len(c.Items))
			out[c.Category.Name] = items
		}
		for _, it := range c.Items {
			cells := make(map[string]int64, len(m.Locations))
			for i, l := range m.Locations {
				cells[l.Name] = it.Quantities[i]
			}
			items[it.Item.Name] = cells
		}
	}
	return out
}

// Table is the flattened, spreadsheet-ready form of a DashboardMatrix.
type Table struct {
	Sheet  string     `json:"sheet"`
	Header []string   `json:"header"`
	Rows   []TableRow `json:"rows"`
}

type TableRow struct {
	Category   string  `json:"category"`
	Item       string  `json:"item"`
	Quantities []int64 `json:"quantities"`
}

// Cells returns the row as spreadsheet cell values in column order.
func (r TableRow) Cells() []any {
	cells := make([]any, 0, 2+len(r.Quantities))
	cells = append(cells, r.Category, r.Item)
	for _, q := range r.Quantities {
		cells = append(cells, q)
	}
	return cells
}
