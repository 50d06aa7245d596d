package dataset

// Table is an in-memory rectangular dataset: an ordered sequence of named
// columns of uniform length. Tables are never mutated in place by the rest
// of the system; every transformation builds a new Table.
type Table struct {
	Name    string    `json:"name"`
	Columns []*Column `json:"columns"`
}

// New builds an empty table with the given name.
func New(name string) *Table {
	return &Table{Name: name}
}

// NumRows returns the row count (0 for a table with no columns).
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.Columns) }

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column finds a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// HasColumn reports whether the table declares the given column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// AddColumn appends a column. The caller is responsible for keeping the
// column length consistent with the table's row count.
func (t *Table) AddColumn(c *Column) {
	t.Columns = append(t.Columns, c)
}

// Row materializes row i as a slice aligned with Columns.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.Columns))
	for j, c := range t.Columns {
		row[j] = c.Values[i]
	}
	return row
}

// Clone returns a deep copy of the table. Snapshots rely on the copy being
// fully independent of the source.
func (t *Table) Clone() *Table {
	out := &Table{Name: t.Name, Columns: make([]*Column, len(t.Columns))}
	for i, c := range t.Columns {
		out.Columns[i] = c.Clone()
	}
	return out
}

// Rename returns a shallow-renamed deep copy.
func (t *Table) Rename(name string) *Table {
	out := t.Clone()
	out.Name = name
	return out
}

// Equal compares column layout and cell contents; the table Name is ignored
// so a renamed copy still compares equal. Used by tests and by the snapshot
// round-trip checks.
func (t *Table) Equal(o *Table) bool {
	if o == nil || len(t.Columns) != len(o.Columns) {
		return false
	}
	for i, c := range t.Columns {
		d := o.Columns[i]
		if c.Name != d.Name || c.Kind != d.Kind || len(c.Values) != len(d.Values) {
			return false
		}
		for j, v := range c.Values {
			if v == nil || d.Values[j] == nil {
				if v != nil || d.Values[j] != nil {
					return false
				}
				continue
			}
			if CanonicalValue(v) != CanonicalValue(d.Values[j]) {
				return false
			}
		}
	}
	return true
}

// NumericColumns returns the names of columns whose kind is numeric.
func (t *Table) NumericColumns() []string {
	var out []string
	for _, c := range t.Columns {
		if c.Kind.Class() == ClassNumeric {
			out = append(out, c.Name)
		}
	}
	return out
}

// CategoricalColumns returns the names of text, bool and categorical columns.
func (t *Table) CategoricalColumns() []string {
	var out []string
	for _, c := range t.Columns {
		switch c.Kind.Class() {
		case ClassText, ClassCategorical:
			out = append(out, c.Name)
		}
	}
	return out
}

// Float returns the cell at (col, row) as a float64 when the value is
// numeric. Missing and non-numeric cells report ok=false.
func Float(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}
