package gridsheet

import (
	"fmt"
	"strconv"
)

// SetValueCommand writes a plain value to one cell, replacing any formula.
type SetValueCommand struct {
	Ref   CellRef
	Value CellValue

	prevValue   CellValue
	prevFormula *CellFormula
}

// NewSetValueCommand creates a SetValueCommand.
func NewSetValueCommand(ref CellRef, v CellValue) *SetValueCommand {
	return &SetValueCommand{Ref: ref, Value: v}
}

func (c *SetValueCommand) Name() string { return "setValue" }

func (c *SetValueCommand) Execute(s *Sheet) bool {
	if !s.store.InBounds(c.Ref) {
		return false
	}
	cell := s.store.GetCell(c.Ref.Row, c.Ref.Col)
	c.prevValue = cell.Value
	c.prevFormula = cell.Formula
	s.store.SetValue(c.Ref, c.Value)
	return true
}

func (c *SetValueCommand) Undo(s *Sheet) bool {
	s.store.restoreValueAndFormula(c.Ref, c.prevValue, c.prevFormula)
	return true
}

func newSetValueCommandFromAttrs(attrs map[string]string) (UndoableCommand, error) {
	ref, err := ParseCellRef(attrs["cell"])
	if err != nil {
		return nil, fmt.Errorf("setValue: %w", err)
	}
	return NewSetValueCommand(ref, parseLiteral(attrs["value"])), nil
}

// SetFormulaCommand attaches a formula to one cell. The formula is reparsed
// on every Execute so redo recaptures state exactly like the first run.
type SetFormulaCommand struct {
	Ref  CellRef
	Text string

	prevValue   CellValue
	prevFormula *CellFormula
}

// NewSetFormulaCommand creates a SetFormulaCommand from formula text.
func NewSetFormulaCommand(ref CellRef, text string) *SetFormulaCommand {
	return &SetFormulaCommand{Ref: ref, Text: text}
}

func (c *SetFormulaCommand) Name() string { return "setFormula" }

func (c *SetFormulaCommand) Execute(s *Sheet) bool {
	if !s.store.InBounds(c.Ref) {
		return false
	}
	f, err := ParseFormula(c.Text)
	if err != nil {
		return false
	}
	cell := s.store.GetCell(c.Ref.Row, c.Ref.Col)
	c.prevValue = cell.Value
	c.prevFormula = cell.Formula
	s.store.SetFormula(c.Ref, f)
	return true
}

func (c *SetFormulaCommand) Undo(s *Sheet) bool {
	s.store.restoreValueAndFormula(c.Ref, c.prevValue, c.prevFormula)
	return true
}

func newSetFormulaCommandFromAttrs(attrs map[string]string) (UndoableCommand, error) {
	ref, err := ParseCellRef(attrs["cell"])
	if err != nil {
		return nil, fmt.Errorf("setFormula: %w", err)
	}
	if attrs["formula"] == "" {
		return nil, fmt.Errorf("setFormula: missing formula attribute")
	}
	return NewSetFormulaCommand(ref, attrs["formula"]), nil
}

// ClearRegionCommand resets every non-empty cell in a region to the empty
// value, dropping formulas but keeping formats.
type ClearRegionCommand struct {
	Region Region

	cleared []capturedCell
}

// NewClearRegionCommand creates a ClearRegionCommand.
func NewClearRegionCommand(r Region) *ClearRegionCommand {
	return &ClearRegionCommand{Region: r.Normalize()}
}

func (c *ClearRegionCommand) Name() string { return "clearRegion" }

func (c *ClearRegionCommand) Execute(s *Sheet) bool {
	region, ok := clampRegion(c.Region, s.store)
	if !ok {
		return false
	}
	c.cleared = c.cleared[:0]
	for ref := range s.store.NonEmptyCells(region) {
		cell := s.store.GetCell(ref.Row, ref.Col)
		if cell.Value.IsEmpty() && cell.Formula == nil {
			continue
		}
		c.cleared = append(c.cleared, capturedCell{ref: ref, value: cell.Value, formula: cell.Formula})
		s.store.Clear(ref)
	}
	return len(c.cleared) > 0
}

func (c *ClearRegionCommand) Undo(s *Sheet) bool {
	for _, cc := range c.cleared {
		s.store.restoreValueAndFormula(cc.ref, cc.value, cc.formula)
	}
	return true
}

func newClearRegionCommandFromAttrs(attrs map[string]string) (UndoableCommand, error) {
	r, err := ParseRegion(attrs["region"])
	if err != nil {
		return nil, fmt.Errorf("clearRegion: %w", err)
	}
	return NewClearRegionCommand(r), nil
}

// capturedFormat is one (position, prior format) pair for format undo.
type capturedFormat struct {
	ref    CellRef
	format *Format
}

// SetFormatCommand applies one format to every cell of a region.
type SetFormatCommand struct {
	Region Region
	Format *Format

	prev []capturedFormat
}

// NewSetFormatCommand creates a SetFormatCommand. A nil format clears cell
// formats in the region.
func NewSetFormatCommand(r Region, f *Format) *SetFormatCommand {
	return &SetFormatCommand{Region: r.Normalize(), Format: f}
}

func (c *SetFormatCommand) Name() string { return "setFormat" }

func (c *SetFormatCommand) Execute(s *Sheet) bool {
	region, ok := clampRegion(c.Region, s.store)
	if !ok {
		return false
	}
	c.prev = c.prev[:0]
	for row := region.First.Row; row <= region.Last.Row; row++ {
		for col := region.First.Col; col <= region.Last.Col; col++ {
			ref := NewCellRef(row, col)
			c.prev = append(c.prev, capturedFormat{ref: ref, format: s.store.GetCell(row, col).Format})
			s.store.SetFormat(ref, c.Format)
		}
	}
	return true
}

func (c *SetFormatCommand) Undo(s *Sheet) bool {
	for _, p := range c.prev {
		s.store.SetFormat(p.ref, p.format)
	}
	return true
}

func newSetFormatCommandFromAttrs(attrs map[string]string) (UndoableCommand, error) {
	r, err := ParseRegion(attrs["region"])
	if err != nil {
		return nil, fmt.Errorf("setFormat: %w", err)
	}
	f := &Format{
		NumFmt:    attrs["numfmt"],
		Bold:      attrs["bold"] == "true",
		FillColor: attrs["fill"],
	}
	return NewSetFormatCommand(r, f), nil
}

// RemoveColumnCommand deletes a contiguous column range, capturing cells,
// overlay spans, column info and merges so undo reconstructs them exactly.
type RemoveColumnCommand struct {
	Index int
	Count int

	cells       CellRestoreData
	formats     IntervalRestoreData[*Format]
	validations IntervalRestoreData[ValidationRule]
	colInfo     IntervalRestoreData[ColumnInfo]
	merges      MergeRestoreData
}

// NewRemoveColumnCommand creates a RemoveColumnCommand.
func NewRemoveColumnCommand(index, count int) *RemoveColumnCommand {
	return &RemoveColumnCommand{Index: index, Count: count}
}

func (c *RemoveColumnCommand) Name() string { return "removeColumn" }

func (c *RemoveColumnCommand) Execute(s *Sheet) bool {
	rd, ok := s.store.RemoveColAt(c.Index, c.Count)
	if !ok {
		return false
	}
	c.cells = rd
	c.formats = s.formats.Remove(c.Index, rd.count)
	c.validations = s.validations.Remove(c.Index, rd.count)
	c.colInfo = s.columnInfo.Remove(c.Index, rd.count)
	c.merges = s.merges.RemoveCols(c.Index, rd.count)
	return true
}

// Undo reverses the removal substeps in inverse order: structure first, then
// the overlay stores, then the cell payloads. Later restores depend on the
// columns already being back in place.
func (c *RemoveColumnCommand) Undo(s *Sheet) bool {
	s.store.InsertColAt(c.cells.index, c.cells.count)
	s.merges.Restore(c.merges)
	s.columnInfo.Restore(c.colInfo)
	s.validations.Restore(c.validations)
	s.formats.Restore(c.formats)
	s.store.RestoreCells(c.cells)
	return true
}

func newRemoveColumnCommandFromAttrs(attrs map[string]string) (UndoableCommand, error) {
	index, count, err := parseIndexCount(attrs)
	if err != nil {
		return nil, fmt.Errorf("removeColumn: %w", err)
	}
	return NewRemoveColumnCommand(index, count), nil
}

// RemoveRowCommand deletes a contiguous row range. Column-axis overlays are
// unaffected by row removal; only cells and merges are captured.
type RemoveRowCommand struct {
	Index int
	Count int

	cells  CellRestoreData
	merges MergeRestoreData
}

// NewRemoveRowCommand creates a RemoveRowCommand.
func NewRemoveRowCommand(index, count int) *RemoveRowCommand {
	return &RemoveRowCommand{Index: index, Count: count}
}

func (c *RemoveRowCommand) Name() string { return "removeRow" }

func (c *RemoveRowCommand) Execute(s *Sheet) bool {
	rd, ok := s.store.RemoveRowAt(c.Index, c.Count)
	if !ok {
		return false
	}
	c.cells = rd
	c.merges = s.merges.RemoveRows(c.Index, rd.count)
	return true
}

func (c *RemoveRowCommand) Undo(s *Sheet) bool {
	s.store.InsertRowAt(c.cells.index, c.cells.count)
	s.merges.Restore(c.merges)
	s.store.RestoreCells(c.cells)
	return true
}

func newRemoveRowCommandFromAttrs(attrs map[string]string) (UndoableCommand, error) {
	index, count, err := parseIndexCount(attrs)
	if err != nil {
		return nil, fmt.Errorf("removeRow: %w", err)
	}
	return NewRemoveRowCommand(index, count), nil
}

// InsertColumnCommand opens empty columns, shifting existing data right.
type InsertColumnCommand struct {
	Index int
	Count int
}

// NewInsertColumnCommand creates an InsertColumnCommand.
func NewInsertColumnCommand(index, count int) *InsertColumnCommand {
	return &InsertColumnCommand{Index: index, Count: count}
}

func (c *InsertColumnCommand) Name() string { return "insertColumn" }

func (c *InsertColumnCommand) Execute(s *Sheet) bool {
	if !s.store.InsertColAt(c.Index, c.Count) {
		return false
	}
	s.formats.Insert(c.Index, c.Count)
	s.validations.Insert(c.Index, c.Count)
	s.columnInfo.Insert(c.Index, c.Count)
	s.merges.InsertCols(c.Index, c.Count)
	return true
}

// Undo removes the inserted columns. They are empty at undo time: any edits
// made after the insertion sit later in the history and are undone first.
func (c *InsertColumnCommand) Undo(s *Sheet) bool {
	s.merges.RemoveCols(c.Index, c.Count)
	s.columnInfo.Remove(c.Index, c.Count)
	s.validations.Remove(c.Index, c.Count)
	s.formats.Remove(c.Index, c.Count)
	_, ok := s.store.RemoveColAt(c.Index, c.Count)
	return ok
}

func newInsertColumnCommandFromAttrs(attrs map[string]string) (UndoableCommand, error) {
	index, count, err := parseIndexCount(attrs)
	if err != nil {
		return nil, fmt.Errorf("insertColumn: %w", err)
	}
	return NewInsertColumnCommand(index, count), nil
}

// InsertRowCommand opens empty rows, shifting existing data down.
type InsertRowCommand struct {
	Index int
	Count int
}

// NewInsertRowCommand creates an InsertRowCommand.
func NewInsertRowCommand(index, count int) *InsertRowCommand {
	return &InsertRowCommand{Index: index, Count: count}
}

func (c *InsertRowCommand) Name() string { return "insertRow" }

func (c *InsertRowCommand) Execute(s *Sheet) bool {
	if !s.store.InsertRowAt(c.Index, c.Count) {
		return false
	}
	s.merges.InsertRows(c.Index, c.Count)
	return true
}

func (c *InsertRowCommand) Undo(s *Sheet) bool {
	s.merges.RemoveRows(c.Index, c.Count)
	_, ok := s.store.RemoveRowAt(c.Index, c.Count)
	return ok
}

func newInsertRowCommandFromAttrs(attrs map[string]string) (UndoableCommand, error) {
	index, count, err := parseIndexCount(attrs)
	if err != nil {
		return nil, fmt.Errorf("insertRow: %w", err)
	}
	return NewInsertRowCommand(index, count), nil
}

// MergeCommand registers a merged region.
type MergeCommand struct {
	Region Region
}

// NewMergeCommand creates a MergeCommand.
func NewMergeCommand(r Region) *MergeCommand {
	return &MergeCommand{Region: r.Normalize()}
}

func (c *MergeCommand) Name() string { return "merge" }

func (c *MergeCommand) Execute(s *Sheet) bool {
	if !s.store.InBounds(c.Region.First) || !s.store.InBounds(c.Region.Last) {
		return false
	}
	return s.merges.Add(c.Region)
}

func (c *MergeCommand) Undo(s *Sheet) bool {
	return s.merges.Delete(c.Region)
}

func newMergeCommandFromAttrs(attrs map[string]string) (UndoableCommand, error) {
	r, err := ParseRegion(attrs["region"])
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	return NewMergeCommand(r), nil
}

// UnmergeCommand removes the merge containing a cell.
type UnmergeCommand struct {
	Ref CellRef

	removed Region
}

// NewUnmergeCommand creates an UnmergeCommand.
func NewUnmergeCommand(ref CellRef) *UnmergeCommand {
	return &UnmergeCommand{Ref: ref}
}

func (c *UnmergeCommand) Name() string { return "unmerge" }

func (c *UnmergeCommand) Execute(s *Sheet) bool {
	m, ok := s.merges.MergedAt(c.Ref)
	if !ok {
		return false
	}
	c.removed = m
	return s.merges.Delete(m)
}

func (c *UnmergeCommand) Undo(s *Sheet) bool {
	return s.merges.Add(c.removed)
}

func newUnmergeCommandFromAttrs(attrs map[string]string) (UndoableCommand, error) {
	ref, err := ParseCellRef(attrs["cell"])
	if err != nil {
		return nil, fmt.Errorf("unmerge: %w", err)
	}
	return NewUnmergeCommand(ref), nil
}

// clampRegion intersects a region with the store's bounds. The second result
// is false when nothing remains.
func clampRegion(r Region, st *CellStore) (Region, bool) {
	r = r.Normalize()
	if r.First.Row >= st.NumRows() || r.First.Col >= st.NumCols() || r.Last.Row < 0 || r.Last.Col < 0 {
		return Region{}, false
	}
	if r.First.Row < 0 {
		r.First.Row = 0
	}
	if r.First.Col < 0 {
		r.First.Col = 0
	}
	if r.Last.Row >= st.NumRows() {
		r.Last.Row = st.NumRows() - 1
	}
	if r.Last.Col >= st.NumCols() {
		r.Last.Col = st.NumCols() - 1
	}
	return r, true
}

// parseLiteral converts an attribute string into a typed cell value: number,
// boolean, or text.
func parseLiteral(s string) CellValue {
	if s == "" {
		return EmptyValue()
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return NumberValue(n)
	}
	switch s {
	case "true", "TRUE":
		return BoolValue(true)
	case "false", "FALSE":
		return BoolValue(false)
	}
	return TextValue(s)
}

func parseIndexCount(attrs map[string]string) (index, count int, err error) {
	index, err = strconv.Atoi(attrs["index"])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid index %q", attrs["index"])
	}
	count = 1
	if attrs["count"] != "" {
		count, err = strconv.Atoi(attrs["count"])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid count %q", attrs["count"])
		}
	}
	return index, count, nil
}
