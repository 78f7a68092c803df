package gridsheet

import (
	"iter"
	"sort"
)

// cellEntry is the stored state of one occupied position. Entries exist only
// for cells that have been written; GetCell materializes empty views for the
// rest.
type cellEntry struct {
	value   CellValue
	formula *CellFormula
	format  *Format
}

func (e *cellEntry) isEmpty() bool {
	return e.value.IsEmpty() && e.formula == nil && e.format == nil
}

// capturedCell is one (position, prior state) pair inside a restore payload.
type capturedCell struct {
	ref     CellRef
	value   CellValue
	formula *CellFormula
	format  *Format
}

type storeAxis int

const (
	axisRow storeAxis = iota
	axisCol
)

// CellRestoreData is the opaque snapshot produced by a structural removal.
// It captures the removed band's position and every cell that was deleted,
// sized proportionally to the edit. Applying it through Restore exactly
// reverses the removal that produced it; it must be applied at most once.
type CellRestoreData struct {
	axis  storeAxis
	index int
	count int
	cells []capturedCell
}

// CellStore is a sparse 2-D cell store keyed by (row, col). Memory is
// proportional to the number of occupied cells, not the sheet dimensions.
type CellStore struct {
	cells   map[CellRef]*cellEntry
	numRows int
	numCols int
}

// NewCellStore creates a CellStore with the given logical dimensions.
func NewCellStore(rows, cols int) *CellStore {
	return &CellStore{
		cells:   make(map[CellRef]*cellEntry),
		numRows: rows,
		numCols: cols,
	}
}

// NumRows returns the logical row count.
func (st *CellStore) NumRows() int { return st.numRows }

// NumCols returns the logical column count.
func (st *CellStore) NumCols() int { return st.numCols }

// InBounds returns true if the reference lies inside the store's dimensions.
func (st *CellStore) InBounds(ref CellRef) bool {
	return ref.Row >= 0 && ref.Row < st.numRows && ref.Col >= 0 && ref.Col < st.numCols
}

// GetCell returns a view of the cell at (row, col). It never fails; unset
// positions yield an empty-value cell and create no persistent entry.
func (st *CellStore) GetCell(row, col int) Cell {
	ref := NewCellRef(row, col)
	e, ok := st.cells[ref]
	if !ok {
		return Cell{Ref: ref, Value: EmptyValue()}
	}
	return Cell{Ref: ref, Value: e.value, Formula: e.formula, Format: e.format}
}

// SetValue writes a plain value at ref, replacing any formula.
func (st *CellStore) SetValue(ref CellRef, v CellValue) {
	e := st.entry(ref)
	e.value = v
	e.formula = nil
	st.dropIfEmpty(ref, e)
}

// SetFormula attaches a formula at ref. The cell value holds the last
// computed result and is updated by recalculation.
func (st *CellStore) SetFormula(ref CellRef, f *CellFormula) {
	e := st.entry(ref)
	e.formula = f
	if f == nil {
		st.dropIfEmpty(ref, e)
	}
}

// SetComputedValue records a formula's evaluation result without touching the
// formula itself.
func (st *CellStore) SetComputedValue(ref CellRef, v CellValue) {
	if e, ok := st.cells[ref]; ok {
		e.value = v
	}
}

// SetFormat sets the format reference at ref. A nil format clears it.
func (st *CellStore) SetFormat(ref CellRef, f *Format) {
	e := st.entry(ref)
	e.format = f
	st.dropIfEmpty(ref, e)
}

// Clear resets the cell's value to empty and removes its formula. The format
// is left in place; entries with no remaining state are dropped.
func (st *CellStore) Clear(ref CellRef) {
	e, ok := st.cells[ref]
	if !ok {
		return
	}
	e.value = EmptyValue()
	e.formula = nil
	st.dropIfEmpty(ref, e)
}

func (st *CellStore) entry(ref CellRef) *cellEntry {
	if e, ok := st.cells[ref]; ok {
		return e
	}
	e := &cellEntry{value: EmptyValue()}
	st.cells[ref] = e
	return e
}

func (st *CellStore) dropIfEmpty(ref CellRef, e *cellEntry) {
	if e.isEmpty() {
		delete(st.cells, ref)
	}
}

// RemoveRowAt deletes count rows starting at index, shifting higher rows down.
// The returned restore data captures every deleted cell. Out-of-range indices
// and non-positive counts are no-ops reported by the false result.
func (st *CellStore) RemoveRowAt(index, count int) (CellRestoreData, bool) {
	if index < 0 || count <= 0 || index >= st.numRows {
		return CellRestoreData{}, false
	}
	if index+count > st.numRows {
		count = st.numRows - index
	}
	rd := CellRestoreData{axis: axisRow, index: index, count: count}
	st.shiftOut(index, count, func(ref CellRef) int { return ref.Row }, func(ref CellRef, d int) CellRef {
		ref.Row += d
		return ref
	}, &rd)
	st.numRows -= count
	return rd, true
}

// RemoveColAt deletes count columns starting at index, shifting higher
// columns down. See RemoveRowAt.
func (st *CellStore) RemoveColAt(index, count int) (CellRestoreData, bool) {
	if index < 0 || count <= 0 || index >= st.numCols {
		return CellRestoreData{}, false
	}
	if index+count > st.numCols {
		count = st.numCols - index
	}
	rd := CellRestoreData{axis: axisCol, index: index, count: count}
	st.shiftOut(index, count, func(ref CellRef) int { return ref.Col }, func(ref CellRef, d int) CellRef {
		ref.Col += d
		return ref
	}, &rd)
	st.numCols -= count
	return rd, true
}

// shiftOut deletes the band [index, index+count) along one axis, capturing
// deleted entries into rd, and shifts entries past the band down by count.
func (st *CellStore) shiftOut(index, count int, axisOf func(CellRef) int, move func(CellRef, int) CellRef, rd *CellRestoreData) {
	moved := make(map[CellRef]*cellEntry)
	for ref, e := range st.cells {
		i := axisOf(ref)
		switch {
		case i < index:
			continue
		case i < index+count:
			rd.cells = append(rd.cells, capturedCell{ref: ref, value: e.value, formula: e.formula, format: e.format})
			delete(st.cells, ref)
		default:
			moved[move(ref, -count)] = e
			delete(st.cells, ref)
		}
	}
	for ref, e := range moved {
		st.cells[ref] = e
	}
	sort.Slice(rd.cells, func(a, b int) bool {
		ca, cb := rd.cells[a].ref, rd.cells[b].ref
		if ca.Row != cb.Row {
			return ca.Row < cb.Row
		}
		return ca.Col < cb.Col
	})
}

// InsertRowAt opens count empty rows at index, shifting existing rows up.
func (st *CellStore) InsertRowAt(index, count int) bool {
	if index < 0 || count <= 0 || index > st.numRows {
		return false
	}
	st.shiftIn(index, count, func(ref CellRef) int { return ref.Row }, func(ref CellRef, d int) CellRef {
		ref.Row += d
		return ref
	})
	st.numRows += count
	return true
}

// InsertColAt opens count empty columns at index, shifting existing columns.
func (st *CellStore) InsertColAt(index, count int) bool {
	if index < 0 || count <= 0 || index > st.numCols {
		return false
	}
	st.shiftIn(index, count, func(ref CellRef) int { return ref.Col }, func(ref CellRef, d int) CellRef {
		ref.Col += d
		return ref
	})
	st.numCols += count
	return true
}

func (st *CellStore) shiftIn(index, count int, axisOf func(CellRef) int, move func(CellRef, int) CellRef) {
	moved := make(map[CellRef]*cellEntry)
	for ref, e := range st.cells {
		if axisOf(ref) >= index {
			moved[move(ref, count)] = e
			delete(st.cells, ref)
		}
	}
	for ref, e := range moved {
		st.cells[ref] = e
	}
}

// Restore exactly reverses the removal that produced rd: it reopens the
// removed band and reinstates every captured cell. The single-apply contract
// holds; replaying a payload twice is undefined.
func (st *CellStore) Restore(rd CellRestoreData) {
	if rd.axis == axisRow {
		st.InsertRowAt(rd.index, rd.count)
	} else {
		st.InsertColAt(rd.index, rd.count)
	}
	st.RestoreCells(rd)
}

// RestoreCells reinstates the captured cell payloads without shifting
// structure. Structural commands use this after reopening rows or columns
// themselves, so overlay intervals can be restored in between.
func (st *CellStore) RestoreCells(rd CellRestoreData) {
	for _, c := range rd.cells {
		st.cells[c.ref] = &cellEntry{value: c.value, formula: c.formula, format: c.format}
	}
}

// restoreValueAndFormula reinstates a captured (value, formula) pair, leaving
// the format untouched. Used by value-level undo.
func (st *CellStore) restoreValueAndFormula(ref CellRef, v CellValue, f *CellFormula) {
	e := st.entry(ref)
	e.value = v
	e.formula = f
	st.dropIfEmpty(ref, e)
}

// NonEmptyCells returns a lazy row-major sequence of positions inside region
// holding a non-empty value or a non-nil format.
func (st *CellStore) NonEmptyCells(region Region) iter.Seq[CellRef] {
	region = region.Normalize()
	var refs []CellRef
	for ref, e := range st.cells {
		if region.Contains(ref) && (!e.value.IsEmpty() || e.format != nil || e.formula != nil) {
			refs = append(refs, ref)
		}
	}
	sort.Slice(refs, func(a, b int) bool {
		if refs[a].Row != refs[b].Row {
			return refs[a].Row < refs[b].Row
		}
		return refs[a].Col < refs[b].Col
	})
	return func(yield func(CellRef) bool) {
		for _, ref := range refs {
			if !yield(ref) {
				return
			}
		}
	}
}

// FormulaCells returns the positions of all formula cells in row-major order.
func (st *CellStore) FormulaCells() []CellRef {
	var refs []CellRef
	for ref, e := range st.cells {
		if e.formula != nil {
			refs = append(refs, ref)
		}
	}
	sort.Slice(refs, func(a, b int) bool {
		if refs[a].Row != refs[b].Row {
			return refs[a].Row < refs[b].Row
		}
		return refs[a].Col < refs[b].Col
	})
	return refs
}

// VisibleRows returns the rows of region whose cell in the given column
// matches the filter predicate.
func (st *CellStore) VisibleRows(region Region, col int, filter ColumnFilter) []int {
	region = region.Normalize()
	var rows []int
	for row := region.First.Row; row <= region.Last.Row; row++ {
		if filter.Match(st.GetCell(row, col)) {
			rows = append(rows, row)
		}
	}
	return rows
}
