package gridsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sheetSnapshot captures the observable state of every store for round-trip
// comparisons.
type sheetSnapshot struct {
	numRows int
	numCols int
	cells   map[CellRef]Cell
	widths  map[int]ColumnInfo
	formats map[int]*Format
	merges  []Region
}

func snapshot(t *testing.T, s *Sheet) sheetSnapshot {
	t.Helper()
	snap := sheetSnapshot{
		numRows: s.NumRows(),
		numCols: s.NumCols(),
		cells:   make(map[CellRef]Cell),
		widths:  make(map[int]ColumnInfo),
		formats: make(map[int]*Format),
		merges:  s.Merges().Regions(),
	}
	all := NewRegion(NewCellRef(0, 0), NewCellRef(s.NumRows()-1, s.NumCols()-1))
	for ref := range s.Store().NonEmptyCells(all) {
		snap.cells[ref] = s.CellAt(ref.Row, ref.Col)
	}
	for col := 0; col < s.NumCols(); col++ {
		if info, ok := s.ColumnInfo().Lookup(col); ok {
			snap.widths[col] = info
		}
		if f, ok := s.Formats().Lookup(col); ok {
			snap.formats[col] = f
		}
	}
	return snap
}

// buildTestSheet populates values, formats, widths and a merge the way a
// small real sheet would look.
func buildTestSheet(t *testing.T) *Sheet {
	t.Helper()
	s := NewSheet(WithDimensions(20, 10))
	require.True(t, s.SetCellValue(0, 0, "name"))
	require.True(t, s.SetCellValue(0, 1, "qty"))
	require.True(t, s.SetCellValue(1, 0, "bolts"))
	require.True(t, s.SetCellValue(1, 1, 250))
	require.True(t, s.SetCellValue(2, 0, "nuts"))
	require.True(t, s.SetCellValue(2, 1, 120))
	require.True(t, s.SetCellFormula(3, 1, "=B2+B3"))
	require.True(t, s.ExecuteCommand(NewSetFormatCommand(region("A1:B1"), &Format{Bold: true})))
	require.True(t, s.ExecuteCommand(NewMergeCommand(region("D1:E2"))))
	s.ColumnInfo().Set(NewInterval(0, 1), ColumnInfo{Width: 18})
	return s
}

func TestCommands_ExecuteUndoRoundTrip(t *testing.T) {
	commands := map[string]func() UndoableCommand{
		"setValue":     func() UndoableCommand { return NewSetValueCommand(ref("B2"), NumberValue(999)) },
		"setFormula":   func() UndoableCommand { return NewSetFormulaCommand(ref("C5"), "=B2*2") },
		"clearRegion":  func() UndoableCommand { return NewClearRegionCommand(region("A1:B3")) },
		"setFormat":    func() UndoableCommand { return NewSetFormatCommand(region("A2:B3"), &Format{FillColor: "FFEEEE"}) },
		"removeColumn": func() UndoableCommand { return NewRemoveColumnCommand(1, 1) },
		"removeRow":    func() UndoableCommand { return NewRemoveRowCommand(1, 2) },
		"insertColumn": func() UndoableCommand { return NewInsertColumnCommand(1, 2) },
		"insertRow":    func() UndoableCommand { return NewInsertRowCommand(0, 1) },
		"merge":        func() UndoableCommand { return NewMergeCommand(region("F5:G6")) },
		"unmerge":      func() UndoableCommand { return NewUnmergeCommand(ref("D1")) },
	}

	for name, build := range commands {
		t.Run(name, func(t *testing.T) {
			s := buildTestSheet(t)
			before := snapshot(t, s)

			cmd := build()
			require.True(t, s.ExecuteCommand(cmd))
			require.True(t, s.Undo())

			assert.Equal(t, before, snapshot(t, s), "undo must restore the exact prior state")
		})
	}
}

func TestCommands_ExecuteUndoRedoIdempotent(t *testing.T) {
	commands := map[string]func() UndoableCommand{
		"setValue":     func() UndoableCommand { return NewSetValueCommand(ref("B2"), NumberValue(999)) },
		"clearRegion":  func() UndoableCommand { return NewClearRegionCommand(region("A1:B3")) },
		"removeColumn": func() UndoableCommand { return NewRemoveColumnCommand(0, 2) },
		"removeRow":    func() UndoableCommand { return NewRemoveRowCommand(0, 2) },
		"insertColumn": func() UndoableCommand { return NewInsertColumnCommand(2, 1) },
		"merge":        func() UndoableCommand { return NewMergeCommand(region("F5:G6")) },
	}

	for name, build := range commands {
		t.Run(name, func(t *testing.T) {
			s := buildTestSheet(t)

			require.True(t, s.ExecuteCommand(build()))
			after := snapshot(t, s)

			require.True(t, s.Undo())
			require.True(t, s.Redo())

			assert.Equal(t, after, snapshot(t, s), "redo must reproduce the first execution exactly")
		})
	}
}

func TestRemoveColumn_ReconstructsContentsFormatsWidths(t *testing.T) {
	s := buildTestSheet(t)
	before := snapshot(t, s)

	require.True(t, s.RemoveCols(0, 2))
	assert.Equal(t, 8, s.NumCols())
	assert.True(t, s.CellValueAt(1, 0).IsEmpty(), "removed columns leave shifted-in data")

	require.True(t, s.Undo())
	after := snapshot(t, s)
	assert.Equal(t, before, after)

	// Widths survive the round trip explicitly.
	info, ok := s.ColumnInfo().Lookup(0)
	require.True(t, ok)
	assert.Equal(t, 18.0, info.Width)
}

func TestRemoveColumn_ShiftsMergeAndFormulaCells(t *testing.T) {
	s := NewSheet(WithDimensions(10, 10))
	require.True(t, s.SetCellValue(0, 2, 7)) // C1
	require.True(t, s.ExecuteCommand(NewMergeCommand(region("E1:F2"))))

	require.True(t, s.RemoveCols(0, 1))
	assert.Equal(t, NumberValue(7), s.CellValueAt(0, 1)) // C1 now at B1
	m, ok := s.Merges().MergedAt(ref("D1"))
	require.True(t, ok)
	assert.Equal(t, region("D1:E2"), m)
}

func TestClearRegion_EmptyRegionIsNoOp(t *testing.T) {
	s := NewSheet(WithDimensions(10, 10))
	assert.False(t, s.ClearRegion(region("A1:C3")), "nothing to clear")
	assert.Zero(t, s.History().Len())
}

func TestSheet_Recalculate(t *testing.T) {
	s := NewSheet(WithDimensions(10, 10))
	require.True(t, s.SetCellValue(0, 0, 2))  // A1
	require.True(t, s.SetCellValue(1, 0, 3))  // A2
	require.True(t, s.SetCellFormula(0, 1, "=A1+A2"))   // B1
	require.True(t, s.SetCellFormula(1, 1, "=B1*10"))   // B2

	s.Recalculate()
	assert.Equal(t, NumberValue(5), s.CellValueAt(0, 1))
	assert.Equal(t, NumberValue(50), s.CellValueAt(1, 1))

	// Recalculation reflects later edits.
	require.True(t, s.SetCellValue(0, 0, 10))
	s.Recalculate()
	assert.Equal(t, NumberValue(13), s.CellValueAt(0, 1))
	assert.Equal(t, NumberValue(130), s.CellValueAt(1, 1))
}

func TestSheet_Recalculate_CircularReference(t *testing.T) {
	s := NewSheet(WithDimensions(10, 10))
	require.True(t, s.SetCellFormula(0, 0, "=B1+1")) // A1
	require.True(t, s.SetCellFormula(0, 1, "=A1+1")) // B1
	require.True(t, s.SetCellFormula(0, 2, "=A1*2")) // C1 depends on the cycle

	s.Recalculate()
	assert.Equal(t, ErrorValue(ErrCircular), s.CellValueAt(0, 0))
	assert.Equal(t, ErrorValue(ErrCircular), s.CellValueAt(0, 1))
	assert.Equal(t, ErrorValue(ErrCircular), s.CellValueAt(0, 2), "error propagates to dependents")
}

func TestSheet_Validate(t *testing.T) {
	s := NewSheet(WithDimensions(10, 10))
	s.Validations().Set(NewInterval(1, 1), ValidationRule{Expr: "value > 0"})
	require.True(t, s.SetCellValue(0, 1, 5))
	require.True(t, s.SetCellValue(1, 1, -2))
	require.True(t, s.SetCellValue(2, 0, -9)) // other column, no rule

	failed := s.Validate(region("A1:C5"))
	assert.Equal(t, []CellRef{ref("B2")}, failed)
}

func TestSheet_UndoAfterStructuralAndValueEdits(t *testing.T) {
	s := NewSheet(WithDimensions(10, 10))
	require.True(t, s.SetCellValue(0, 0, "a"))
	initial := snapshot(t, s)

	require.True(t, s.InsertCols(0, 1))
	require.True(t, s.SetCellValue(0, 0, "new"))
	require.True(t, s.RemoveRows(0, 1))

	require.True(t, s.Undo())
	require.True(t, s.Undo())
	require.True(t, s.Undo())
	assert.Equal(t, initial, snapshot(t, s))
}
