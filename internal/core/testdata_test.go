package core

import (
	"fmt"
	"strings"
)

// sampleRow returns a well-formed data row whose external id is n.
func sampleRow(n int) []string {
	return []string{
		fmt.Sprintf("%d", 100000+n), // Emp ID
		"Mrs.",
		"Serafina",
		"I",
		"Bumgarner",
		"F",
		fmt.Sprintf("serafina.bumgarner%d@exxonmobil.com", n),
		"9/21/1982",
		"1:53:14 AM",
		"34.87",
		"2/1/2008",
		"9.49",
		"212-376-9125",
		"Clymer",
		"Chautauqua",
		"Clymer",
		"14724",
		"Northeast",
		"sibumgarner",
	}
}

// sampleCSV renders a header plus n data rows.
func sampleCSV(n int) string {
	var b strings.Builder
	b.WriteString(strings.Join(HeaderRow(), ",") + "\n")
	for i := 1; i <= n; i++ {
		b.WriteString(strings.Join(sampleRow(i), ",") + "\n")
	}
	return b.String()
}
