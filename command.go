package gridsheet

import "fmt"

// UndoableCommand is the extension point for undoable sheet mutations.
//
// Execute captures whatever restore data it needs before mutating any store,
// then applies the mutation. It returns false for a no-op (invalid index,
// non-positive count) and in that case must not have touched any store; the
// sheet skips pushing failed commands onto history. Undo exactly reverses
// Execute, performing its substeps in inverse order. Redo re-invokes Execute,
// which therefore must be safe to run again against the state Undo restored.
type UndoableCommand interface {
	Name() string
	Execute(s *Sheet) bool
	Undo(s *Sheet) bool
}

// History is a linear undo/redo stack. Commands before the cursor are
// undoable, commands at and after it are redoable, and pushing a new command
// discards the redo tail permanently.
type History struct {
	commands []UndoableCommand
	cursor   int
}

// NewHistory creates an empty History.
func NewHistory() *History {
	return &History{}
}

// Push records an executed command, truncating any redoable tail.
func (h *History) Push(c UndoableCommand) {
	h.commands = append(h.commands[:h.cursor], c)
	h.cursor++
}

// Undo reverses the most recent executed command.
func (h *History) Undo(s *Sheet) bool {
	if h.cursor == 0 {
		return false
	}
	c := h.commands[h.cursor-1]
	if !c.Undo(s) {
		return false
	}
	h.cursor--
	return true
}

// Redo re-executes the most recently undone command.
func (h *History) Redo(s *Sheet) bool {
	if h.cursor == len(h.commands) {
		return false
	}
	c := h.commands[h.cursor]
	if !c.Execute(s) {
		return false
	}
	h.cursor++
	return true
}

// CanUndo returns true if at least one command is undoable.
func (h *History) CanUndo() bool { return h.cursor > 0 }

// CanRedo returns true if at least one command is redoable.
func (h *History) CanRedo() bool { return h.cursor < len(h.commands) }

// Len returns the number of recorded commands, undone ones included.
func (h *History) Len() int { return len(h.commands) }

// CommandFactory creates an UndoableCommand from string attributes, so hosts
// can construct commands by name (menu items, macros, scripts).
type CommandFactory func(attrs map[string]string) (UndoableCommand, error)

// CommandRegistry maps command names to their factories.
type CommandRegistry struct {
	factories map[string]CommandFactory
}

// NewCommandRegistry creates a registry with the built-in commands.
func NewCommandRegistry() *CommandRegistry {
	r := &CommandRegistry{
		factories: make(map[string]CommandFactory),
	}
	r.Register("setValue", newSetValueCommandFromAttrs)
	r.Register("setFormula", newSetFormulaCommandFromAttrs)
	r.Register("clearRegion", newClearRegionCommandFromAttrs)
	r.Register("setFormat", newSetFormatCommandFromAttrs)
	r.Register("removeColumn", newRemoveColumnCommandFromAttrs)
	r.Register("removeRow", newRemoveRowCommandFromAttrs)
	r.Register("insertColumn", newInsertColumnCommandFromAttrs)
	r.Register("insertRow", newInsertRowCommandFromAttrs)
	r.Register("merge", newMergeCommandFromAttrs)
	r.Register("unmerge", newUnmergeCommandFromAttrs)
	return r
}

// Register adds a command factory.
func (r *CommandRegistry) Register(name string, factory CommandFactory) {
	r.factories[name] = factory
}

// Create creates a command from its registered name and attributes.
func (r *CommandRegistry) Create(name string, attrs map[string]string) (UndoableCommand, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown command %q", name)
	}
	return factory(attrs)
}
