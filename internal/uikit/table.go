// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package uikit

import (
	"fmt"
	"html/template"
	"reflect"
	"strings"
	"time"
)

// DefaultEmptyMessage is shown by a table with no rows.
const DefaultEmptyMessage = "No records found."

// Column describes one table column. Key names an exported field of the row
// struct; Render, when set, replaces the default cell rendering.
type Column struct {
	Header string
	Key    string
	Class  string
	Render func(row any) template.HTML
}

// Table is an admin data table.
type Table struct {
	Columns      []Column
	Rows         []any
	Loading      bool
	EmptyMessage string
}

// NewTable builds a table over rows of any struct type.
func NewTable[T any](columns []Column, rows []T) Table {
	anyRows := make([]any, len(rows))
	for i, r := range rows {
		anyRows[i] = r
	}
	return Table{Columns: columns, Rows: anyRows}
}

// IsEmpty reports whether the table should show its empty state.
func (t Table) IsEmpty() bool {
	return !t.Loading && len(t.Rows) == 0
}

// Empty returns the empty-state text.
func (t Table) Empty() string {
	if t.EmptyMessage != "" {
		return t.EmptyMessage
	}
	return DefaultEmptyMessage
}

// Cells renders every column of row.
func (t Table) Cells(row any) []template.HTML {
	cells := make([]template.HTML, len(t.Columns))
	for i, c := range t.Columns {
		cells[i] = c.Cell(row)
	}
	return cells
}

// Cell renders the column for row.
func (c Column) Cell(row any) template.HTML {
	if c.Render != nil {
		return c.Render(row)
	}
	return template.HTML(template.HTMLEscapeString(FieldString(row, c.Key)))
}

// FieldString returns the named field of a struct (or pointer to struct)
// formatted for display. Unknown fields render as "".
func FieldString(row any, key string) string {
	v := reflect.ValueOf(row)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct || key == "" {
		return ""
	}
	f := v.FieldByName(key)
	if !f.IsValid() || !f.CanInterface() {
		return ""
	}
	switch val := f.Interface().(type) {
	case string:
		return val
	case time.Time:
		return FormatDate(val)
	case []string:
		return strings.Join(val, ", ")
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
