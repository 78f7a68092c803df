package gridsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_UndoRedo(t *testing.T) {
	s := NewSheet(WithDimensions(10, 10))

	require.True(t, s.SetCellValue(0, 0, 1))
	require.True(t, s.SetCellValue(0, 0, 2))
	assert.Equal(t, NumberValue(2), s.CellValueAt(0, 0))

	require.True(t, s.Undo())
	assert.Equal(t, NumberValue(1), s.CellValueAt(0, 0))

	require.True(t, s.Redo())
	assert.Equal(t, NumberValue(2), s.CellValueAt(0, 0))
}

func TestHistory_UndoRedoAtBounds(t *testing.T) {
	s := NewSheet(WithDimensions(10, 10))
	assert.False(t, s.Undo())
	assert.False(t, s.Redo())

	require.True(t, s.SetCellValue(0, 0, 1))
	require.True(t, s.Undo())
	assert.False(t, s.Undo())
	require.True(t, s.Redo())
	assert.False(t, s.Redo())
}

func TestHistory_NewCommandDiscardsRedoTail(t *testing.T) {
	s := NewSheet(WithDimensions(10, 10))

	require.True(t, s.SetCellValue(0, 0, 1)) // A
	require.True(t, s.SetCellValue(0, 0, 2)) // B
	require.True(t, s.Undo())                // back to A's state
	require.True(t, s.SetCellValue(0, 0, 3)) // C discards B permanently

	assert.False(t, s.CanRedo())
	assert.Equal(t, 2, s.History().Len())
	assert.Equal(t, NumberValue(3), s.CellValueAt(0, 0))

	// Unwinding and replaying never resurfaces B.
	require.True(t, s.Undo())
	require.True(t, s.Redo())
	assert.Equal(t, NumberValue(3), s.CellValueAt(0, 0))
}

func TestHistory_FailedCommandNotRecorded(t *testing.T) {
	s := NewSheet(WithDimensions(10, 5))

	assert.False(t, s.ExecuteCommand(NewRemoveColumnCommand(5, 1)))
	assert.False(t, s.ExecuteCommand(NewRemoveColumnCommand(0, 0)))
	assert.False(t, s.ExecuteCommand(NewRemoveColumnCommand(0, -2)))
	assert.Zero(t, s.History().Len())
	assert.False(t, s.CanUndo())
}

func TestCommandRegistry_CreateBuiltins(t *testing.T) {
	r := NewCommandRegistry()

	c, err := r.Create("setValue", map[string]string{"cell": "B2", "value": "42"})
	require.NoError(t, err)
	cmd, ok := c.(*SetValueCommand)
	require.True(t, ok)
	assert.Equal(t, ref("B2"), cmd.Ref)
	assert.Equal(t, NumberValue(42), cmd.Value)

	c, err = r.Create("removeColumn", map[string]string{"index": "2", "count": "3"})
	require.NoError(t, err)
	rm, ok := c.(*RemoveColumnCommand)
	require.True(t, ok)
	assert.Equal(t, 2, rm.Index)
	assert.Equal(t, 3, rm.Count)
}

func TestCommandRegistry_UnknownCommand(t *testing.T) {
	r := NewCommandRegistry()
	_, err := r.Create("fillDown", nil)
	assert.Error(t, err)
}

func TestCommandRegistry_BadAttrs(t *testing.T) {
	r := NewCommandRegistry()
	_, err := r.Create("setValue", map[string]string{"cell": "nope"})
	assert.Error(t, err)
	_, err = r.Create("removeRow", map[string]string{"index": "x"})
	assert.Error(t, err)
	_, err = r.Create("setFormula", map[string]string{"cell": "A1"})
	assert.Error(t, err)
}

func TestSheet_ExecuteNamed(t *testing.T) {
	s := NewSheet(WithDimensions(10, 10))

	ok, err := s.ExecuteNamed("setValue", map[string]string{"cell": "A1", "value": "hello"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, TextValue("hello"), s.CellValueAt(0, 0))

	ok, err = s.ExecuteNamed("removeColumn", map[string]string{"index": "99"})
	require.NoError(t, err)
	assert.False(t, ok, "out-of-range command reports no-op")
}

// countingCommand tracks Execute/Undo calls for extension-point tests.
type countingCommand struct {
	executes int
	undos    int
}

func (c *countingCommand) Name() string { return "counting" }

func (c *countingCommand) Execute(s *Sheet) bool {
	c.executes++
	return true
}

func (c *countingCommand) Undo(s *Sheet) bool {
	c.undos++
	return true
}

func TestSheet_CustomCommand(t *testing.T) {
	cc := &countingCommand{}
	s := NewSheet(
		WithDimensions(5, 5),
		WithCommand("counting", func(attrs map[string]string) (UndoableCommand, error) {
			return cc, nil
		}),
	)

	ok, err := s.ExecuteNamed("counting", nil)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, s.Undo())
	require.True(t, s.Redo())

	assert.Equal(t, 2, cc.executes, "redo re-invokes Execute")
	assert.Equal(t, 1, cc.undos)
}
