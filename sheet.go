package gridsheet

// Sheet is the facade tying the cell store, overlay stores, command history
// and formula evaluation together. A Sheet and its stores belong to a single
// logical thread of control; nothing here locks. Commands receive the sheet
// only for the duration of Execute and Undo and must not retain it.
type Sheet struct {
	store       *CellStore
	formats     *FormatStore
	validations *ValidationStore
	columnInfo  *ColumnInfoStore
	merges      *MergeStore
	history     *History
	registry    *CommandRegistry
}

// NewSheet creates a Sheet with the given options.
func NewSheet(opts ...Option) *Sheet {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	s := &Sheet{
		store:       NewCellStore(o.numRows, o.numCols),
		formats:     NewFormatStore(),
		validations: NewValidationStore(),
		columnInfo:  NewColumnInfoStore(),
		merges:      NewMergeStore(),
		history:     NewHistory(),
		registry:    NewCommandRegistry(),
	}
	for name, factory := range o.customCommands {
		s.registry.Register(name, factory)
	}
	return s
}

// NumRows returns the logical row count.
func (s *Sheet) NumRows() int { return s.store.NumRows() }

// NumCols returns the logical column count.
func (s *Sheet) NumCols() int { return s.store.NumCols() }

// Store returns the cell store.
func (s *Sheet) Store() *CellStore { return s.store }

// Formats returns the column format overlay store.
func (s *Sheet) Formats() *FormatStore { return s.formats }

// Validations returns the validation overlay store.
func (s *Sheet) Validations() *ValidationStore { return s.validations }

// ColumnInfo returns the column sizing overlay store.
func (s *Sheet) ColumnInfo() *ColumnInfoStore { return s.columnInfo }

// Merges returns the merged-region store.
func (s *Sheet) Merges() *MergeStore { return s.merges }

// History returns the command history.
func (s *Sheet) History() *History { return s.history }

// Registry returns the command registry.
func (s *Sheet) Registry() *CommandRegistry { return s.registry }

// ExecuteCommand runs a command against the sheet. Failed (no-op) commands
// are not recorded: the history only ever holds commands that mutated state.
func (s *Sheet) ExecuteCommand(c UndoableCommand) bool {
	if !c.Execute(s) {
		return false
	}
	s.history.Push(c)
	return true
}

// ExecuteNamed constructs a command by registry name and executes it. The
// boolean result is the command's success flag; the error reports a factory
// failure (unknown name, malformed attributes).
func (s *Sheet) ExecuteNamed(name string, attrs map[string]string) (bool, error) {
	c, err := s.registry.Create(name, attrs)
	if err != nil {
		return false, err
	}
	return s.ExecuteCommand(c), nil
}

// Undo reverses the most recent executed command.
func (s *Sheet) Undo() bool { return s.history.Undo(s) }

// Redo re-executes the most recently undone command.
func (s *Sheet) Redo() bool { return s.history.Redo(s) }

// CanUndo reports whether an undoable command exists.
func (s *Sheet) CanUndo() bool { return s.history.CanUndo() }

// CanRedo reports whether a redoable command exists.
func (s *Sheet) CanRedo() bool { return s.history.CanRedo() }

// CellAt returns a view of the cell at (row, col).
func (s *Sheet) CellAt(row, col int) Cell {
	return s.store.GetCell(row, col)
}

// CellValueAt returns the value at (row, col).
func (s *Sheet) CellValueAt(row, col int) CellValue {
	return s.store.GetCell(row, col).Value
}

// SetCellValue writes a value at (row, col) as an undoable command.
func (s *Sheet) SetCellValue(row, col int, v any) bool {
	return s.ExecuteCommand(NewSetValueCommand(NewCellRef(row, col), ValueOf(v)))
}

// SetCellFormula attaches a formula at (row, col) as an undoable command.
func (s *Sheet) SetCellFormula(row, col int, text string) bool {
	return s.ExecuteCommand(NewSetFormulaCommand(NewCellRef(row, col), text))
}

// ClearRegion clears a region as an undoable command.
func (s *Sheet) ClearRegion(r Region) bool {
	return s.ExecuteCommand(NewClearRegionCommand(r))
}

// InsertRows opens count empty rows at index as an undoable command.
func (s *Sheet) InsertRows(index, count int) bool {
	return s.ExecuteCommand(NewInsertRowCommand(index, count))
}

// RemoveRows deletes count rows at index as an undoable command.
func (s *Sheet) RemoveRows(index, count int) bool {
	return s.ExecuteCommand(NewRemoveRowCommand(index, count))
}

// InsertCols opens count empty columns at index as an undoable command.
func (s *Sheet) InsertCols(index, count int) bool {
	return s.ExecuteCommand(NewInsertColumnCommand(index, count))
}

// RemoveCols deletes count columns at index as an undoable command.
func (s *Sheet) RemoveCols(index, count int) bool {
	return s.ExecuteCommand(NewRemoveColumnCommand(index, count))
}

// Recalculate runs one evaluation pass over every formula cell in row-major
// order and stores the computed values. Each formula executes at most once;
// circular references resolve to an error value. The pass context is created
// fresh and discarded, so no state leaks between passes.
func (s *Sheet) Recalculate() {
	ctx := NewExecutionContext()
	defer ctx.Clear()
	ev := &evaluator{store: s.store, ctx: ctx}
	for _, ref := range s.store.FormulaCells() {
		cell := s.store.GetCell(ref.Row, ref.Col)
		if cell.Formula == nil {
			continue
		}
		v := ev.eval(cell.Formula)
		s.store.SetComputedValue(ref, v)
	}
}

// Validate checks every non-empty cell in the region against the validation
// rules covering its column. It returns the positions that fail.
func (s *Sheet) Validate(region Region) []CellRef {
	var failed []CellRef
	for ref := range s.store.NonEmptyCells(region) {
		rule, ok := s.validations.Lookup(ref.Col)
		if !ok {
			continue
		}
		cell := s.store.GetCell(ref.Row, ref.Col)
		if cell.Value.IsEmpty() {
			continue
		}
		pass, err := rule.Check(cell.Value)
		if err != nil || !pass {
			failed = append(failed, ref)
		}
	}
	return failed
}
