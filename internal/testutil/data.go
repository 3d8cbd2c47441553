package testutil

import (
	"fmt"
	"strings"
)

// GenerateInserts returns n single-row INSERT statements into table, one per
// line. Row i carries (i, 'name_i').
func GenerateInserts(table string, n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "INSERT INTO %s (id, name) VALUES (%d, 'name_%d');\n", table, i, i)
	}
	return b.String()
}

// GenerateMultiRowInsert returns one INSERT statement carrying n rows.
func GenerateMultiRowInsert(table string, n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (id, name) VALUES ", table)
	for i := 1; i <= n; i++ {
		if i > 1 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "(%d, 'name_%d')", i, i)
	}
	b.WriteString(";\n")
	return b.String()
}

// ExpectedRows returns the COPY data lines GenerateInserts produces for
// rows from..to inclusive.
func ExpectedRows(from, to int) string {
	var b strings.Builder
	for i := from; i <= to; i++ {
		fmt.Fprintf(&b, "%d\tname_%d\n", i, i)
	}
	return b.String()
}
