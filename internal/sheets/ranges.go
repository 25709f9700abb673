package sheets

import (
	"fmt"
	"regexp"
	"strings"
)

// Column span covered by a catalog row.
const (
	FirstColumn = "A"
	LastColumn  = "L"
)

// cellRef matches a bare A1 reference such as "A:L", "A2:L9" or "B".
var cellRef = regexp.MustCompile(`^[A-Z]{1,3}[0-9]*(:[A-Z]{1,3}[0-9]*)?$`)

// plainName matches tab names that can be written without quotes.
var plainName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SheetName extracts the tab name from an A1 locator.
// Locators without a tab ("A:L") address the first sheet and yield "".
//
// Examples:
//
//	"'Vinyl Collection'!A:L" -> "Vinyl Collection"
//	"Vinyl_Collection!A:L"   -> "Vinyl_Collection"
//	"Vinyl_Collection"       -> "Vinyl_Collection"
//	"A:L"                    -> ""
func SheetName(locator string) string {
	locator = strings.TrimSpace(locator)
	name := locator
	if i := strings.LastIndex(locator, "!"); i >= 0 {
		name = locator[:i]
	} else if cellRef.MatchString(locator) {
		return ""
	}
	return unquote(name)
}

// RowRange builds the single-row range for row n (1-based) of the tab addressed by locator.
// Example: ("'Vinyl_Collection'!A:L", 5) -> "Vinyl_Collection!A5:L5"
func RowRange(locator string, n int) string {
	cols := fmt.Sprintf("%s%d:%s%d", FirstColumn, n, LastColumn, n)
	sheet := SheetName(locator)
	if sheet == "" {
		return cols
	}
	return QuoteSheet(sheet) + "!" + cols
}

// QuoteSheet quotes a tab name for use in an A1 locator when it needs it.
func QuoteSheet(name string) string {
	if plainName.MatchString(name) {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func unquote(name string) string {
	if len(name) >= 2 && strings.HasPrefix(name, "'") && strings.HasSuffix(name, "'") {
		return strings.ReplaceAll(name[1:len(name)-1], "''", "'")
	}
	return name
}
