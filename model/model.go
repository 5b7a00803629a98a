/*
Package model provides the data model presented by the benchmark lists.
*/
package model

import (
	"strconv"

	"git.sr.ht/~gioverse/listbench"
)

// Item is one row of benchmark data. Items are values; once generated they
// are never modified.
type Item struct {
	ID          int
	Title       string
	Description string
}

// RowID returns the identifier used to key per-row widget state.
func (it Item) RowID() listbench.RowID {
	return listbench.RowID(strconv.Itoa(it.ID))
}

// Row adapts an Item to the listbench.Row interface.
type Row struct {
	Item
}

// ID returns the unique identifier for the row.
func (r Row) ID() listbench.RowID {
	return r.Item.RowID()
}

// Rows wraps a snapshot of items for presentation by a listbench.RowManager.
func Rows(items []Item) []listbench.Row {
	rows := make([]listbench.Row, len(items))
	for i, it := range items {
		rows[i] = Row{Item: it}
	}
	return rows
}
