package gridsheet

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// CellRef identifies a single cell by 0-based row and column indices.
type CellRef struct {
	Row int
	Col int
}

// NewCellRef creates a CellRef with explicit row and column.
func NewCellRef(row, col int) CellRef {
	return CellRef{Row: row, Col: col}
}

// ParseCellRef parses an A1-style cell reference like "B3" or "$A$1".
func ParseCellRef(s string) (CellRef, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "$", ""))
	if s == "" {
		return CellRef{}, fmt.Errorf("empty cell reference")
	}
	col, row, err := excelize.CellNameToCoordinates(s)
	if err != nil {
		return CellRef{}, fmt.Errorf("invalid cell reference %q: %w", s, err)
	}
	return CellRef{Row: row - 1, Col: col - 1}, nil
}

// String formats the CellRef in A1 notation.
func (c CellRef) String() string {
	name, err := excelize.CoordinatesToCellName(c.Col+1, c.Row+1)
	if err != nil {
		return fmt.Sprintf("R%dC%d", c.Row, c.Col)
	}
	return name
}

// ColName returns the column name of this reference ("A", "Z", "AA").
func (c CellRef) ColName() string {
	name, err := excelize.ColumnNumberToName(c.Col + 1)
	if err != nil {
		return ""
	}
	return name
}

// Region is a rectangular row-by-column range, inclusive on both ends.
type Region struct {
	First CellRef
	Last  CellRef
}

// NewRegion creates a Region from two corner references, normalizing the
// corners so First is the top-left and Last the bottom-right.
func NewRegion(first, last CellRef) Region {
	return Region{First: first, Last: last}.Normalize()
}

// ParseRegion parses a range reference like "A1:C5". A single cell reference
// like "B2" yields a 1x1 region.
func ParseRegion(s string) (Region, error) {
	s = strings.TrimSpace(s)
	parts := strings.SplitN(s, ":", 2)
	first, err := ParseCellRef(parts[0])
	if err != nil {
		return Region{}, fmt.Errorf("invalid region %q: %w", s, err)
	}
	if len(parts) == 1 {
		return Region{First: first, Last: first}, nil
	}
	last, err := ParseCellRef(parts[1])
	if err != nil {
		return Region{}, fmt.Errorf("invalid region %q: %w", s, err)
	}
	return NewRegion(first, last), nil
}

// String formats the Region as "A1:C5".
func (r Region) String() string {
	return r.First.String() + ":" + r.Last.String()
}

// Normalize returns an equivalent region with First at the top-left corner.
func (r Region) Normalize() Region {
	if r.First.Row > r.Last.Row {
		r.First.Row, r.Last.Row = r.Last.Row, r.First.Row
	}
	if r.First.Col > r.Last.Col {
		r.First.Col, r.Last.Col = r.Last.Col, r.First.Col
	}
	return r
}

// Contains returns true if the given cell lies within the region.
func (r Region) Contains(ref CellRef) bool {
	return ref.Row >= r.First.Row && ref.Row <= r.Last.Row &&
		ref.Col >= r.First.Col && ref.Col <= r.Last.Col
}

// Overlaps returns true if the two regions share at least one cell.
func (r Region) Overlaps(other Region) bool {
	return r.First.Row <= other.Last.Row && r.Last.Row >= other.First.Row &&
		r.First.Col <= other.Last.Col && r.Last.Col >= other.First.Col
}

// Rows returns the row span of the region.
func (r Region) Rows() int {
	return r.Last.Row - r.First.Row + 1
}

// Cols returns the column span of the region.
func (r Region) Cols() int {
	return r.Last.Col - r.First.Col + 1
}

// Size returns the dimensions of the region.
func (r Region) Size() Size {
	return Size{Width: r.Cols(), Height: r.Rows()}
}

// RowInterval returns the region's row span as an Interval.
func (r Region) RowInterval() Interval {
	return Interval{Start: r.First.Row, End: r.Last.Row}
}

// ColInterval returns the region's column span as an Interval.
func (r Region) ColInterval() Interval {
	return Interval{Start: r.First.Col, End: r.Last.Col}
}

// Size represents width (columns) and height (rows).
type Size struct {
	Width  int
	Height int
}

// String formats the Size as "(WxH)".
func (s Size) String() string {
	return fmt.Sprintf("(%dx%d)", s.Width, s.Height)
}

// Interval is a 1-D index range, inclusive on both ends. Overlay stores use
// intervals to key attributes by contiguous row or column spans.
type Interval struct {
	Start int
	End   int
}

// NewInterval creates an Interval, swapping the bounds if reversed.
func NewInterval(start, end int) Interval {
	if start > end {
		start, end = end, start
	}
	return Interval{Start: start, End: end}
}

// Len returns the number of indices covered by the interval.
func (iv Interval) Len() int {
	return iv.End - iv.Start + 1
}

// Contains returns true if index i lies within the interval.
func (iv Interval) Contains(i int) bool {
	return i >= iv.Start && i <= iv.End
}

// Overlaps returns true if the two intervals share at least one index.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start <= other.End && iv.End >= other.Start
}

// String formats the Interval as "[start..end]".
func (iv Interval) String() string {
	return fmt.Sprintf("[%d..%d]", iv.Start, iv.End)
}
