package gridsheet

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// refPattern matches A1-style cell references inside a formula body.
var refPattern = regexp.MustCompile(`\$?[A-Z]{1,3}\$?[0-9]+`)

// programCache caches compiled programs by formula text. Programs are
// immutable and safe to share between formula instances.
var programCache sync.Map // formula text → *vm.Program

// CellFormula is a parsed formula bound to the cell references it depends on.
// It is immutable once parsed. Identity is per-instance: two formulas with the
// same text are distinct entities, and the execution context keys its maps by
// *CellFormula pointer.
type CellFormula struct {
	text    string
	program *vm.Program
	refs    []CellRef
}

// ParseFormula parses a formula like "=A1+B2*2" or "A1+B2*2". The body is an
// expression whose free variables are A1-style cell references; references
// are extracted as the formula's dependencies.
func ParseFormula(text string) (*CellFormula, error) {
	body := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "="))
	if body == "" {
		return nil, fmt.Errorf("empty formula")
	}
	body = strings.ReplaceAll(body, "$", "")

	program, err := compileFormula(body)
	if err != nil {
		return nil, fmt.Errorf("compile formula %q: %w", text, err)
	}

	var refs []CellRef
	seen := make(map[CellRef]struct{})
	for _, m := range refPattern.FindAllString(body, -1) {
		ref, err := ParseCellRef(m)
		if err != nil {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}

	return &CellFormula{text: body, program: program, refs: refs}, nil
}

func compileFormula(body string) (*vm.Program, error) {
	if cached, ok := programCache.Load(body); ok {
		return cached.(*vm.Program), nil
	}
	program, err := expr.Compile(body, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}
	programCache.Store(body, program)
	return program, nil
}

// Text returns the formula body without the leading "=".
func (f *CellFormula) Text() string { return f.text }

// Refs returns the cell references the formula depends on, in order of first
// appearance. The slice must not be modified.
func (f *CellFormula) Refs() []CellRef { return f.refs }

// String formats the formula with a leading "=".
func (f *CellFormula) String() string { return "=" + f.text }

// ExecutionContext tracks one recalculation pass over the formula dependency
// graph: the order formulas finished in, their memoized results, and an
// explicit stack of formulas currently being evaluated. The executing stack
// and the executed set are disjoint at all times. A context must not be
// reused across passes without Clear.
type ExecutionContext struct {
	order        []*CellFormula
	executed     map[*CellFormula]CellValue
	executing    []*CellFormula
	executingSet map[*CellFormula]struct{}
}

// NewExecutionContext creates an empty ExecutionContext.
func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{
		executed:     make(map[*CellFormula]CellValue),
		executingSet: make(map[*CellFormula]struct{}),
	}
}

// IsExecuting returns true if f is on the in-progress stack. The evaluator
// checks this before descending into a dependency; a true result for a
// formula about to be evaluated again signals a circular reference.
func (c *ExecutionContext) IsExecuting(f *CellFormula) bool {
	_, ok := c.executingSet[f]
	return ok
}

// SetExecuting pushes f onto the in-progress stack.
func (c *ExecutionContext) SetExecuting(f *CellFormula) {
	c.executing = append(c.executing, f)
	c.executingSet[f] = struct{}{}
}

// FinishCurrentExecuting pops the most recently pushed formula, records its
// final value, and appends it to the execution-order log. Evaluation is a
// call-stack-shaped recursion, so the top of the stack is always the formula
// finishing.
func (c *ExecutionContext) FinishCurrentExecuting(v CellValue) *CellFormula {
	n := len(c.executing)
	if n == 0 {
		return nil
	}
	f := c.executing[n-1]
	c.executing = c.executing[:n-1]
	delete(c.executingSet, f)
	c.executed[f] = v
	c.order = append(c.order, f)
	return f
}

// TryGetExecutedValue returns the memoized result of a formula already
// finished in this pass. A formula never recomputes within one pass.
func (c *ExecutionContext) TryGetExecutedValue(f *CellFormula) (CellValue, bool) {
	v, ok := c.executed[f]
	return v, ok
}

// ExecutionOrder returns the formulas in the order they finished. The slice
// is a copy.
func (c *ExecutionContext) ExecutionOrder() []*CellFormula {
	out := make([]*CellFormula, len(c.order))
	copy(out, c.order)
	return out
}

// ExecutingDepth returns the current in-progress stack depth.
func (c *ExecutionContext) ExecutingDepth() int {
	return len(c.executing)
}

// Clear resets all pass state so the context can start a fresh pass.
func (c *ExecutionContext) Clear() {
	c.order = nil
	c.executed = make(map[*CellFormula]CellValue)
	c.ClearExecuting()
}

// ClearExecuting drops the in-progress stack only.
func (c *ExecutionContext) ClearExecuting() {
	c.executing = nil
	c.executingSet = make(map[*CellFormula]struct{})
}

// evaluator performs one depth-first recalculation pass over the store's
// formula cells, with memoization and stack-based cycle detection.
type evaluator struct {
	store *CellStore
	ctx   *ExecutionContext
}

// eval evaluates one formula, reusing memoized results and short-circuiting
// circular references to an error value instead of recursing.
func (ev *evaluator) eval(f *CellFormula) CellValue {
	if v, ok := ev.ctx.TryGetExecutedValue(f); ok {
		return v
	}
	if ev.ctx.IsExecuting(f) {
		return ErrorValue(ErrCircular)
	}
	ev.ctx.SetExecuting(f)

	env := make(map[string]any, len(f.refs))
	var depErr *CellValue
	for _, ref := range f.refs {
		dv := ev.resolve(ref)
		if dv.Kind == KindError && depErr == nil {
			e := dv
			depErr = &e
		}
		env[ref.String()] = envValue(dv)
	}

	var result CellValue
	if depErr != nil {
		result = *depErr
	} else {
		out, err := expr.Run(f.program, env)
		if err != nil {
			result = ErrorValue(ErrEval)
		} else {
			result = ValueOf(out)
		}
	}
	ev.ctx.FinishCurrentExecuting(result)
	return result
}

// resolve produces the value of a dependency cell, recursing into its formula
// if it has one.
func (ev *evaluator) resolve(ref CellRef) CellValue {
	cell := ev.store.GetCell(ref.Row, ref.Col)
	if cell.Formula == nil {
		return cell.Value
	}
	return ev.eval(cell.Formula)
}

// envValue maps a cell value onto the expression environment. Empty cells
// evaluate as 0, matching spreadsheet arithmetic.
func envValue(v CellValue) any {
	if v.IsEmpty() {
		return float64(0)
	}
	return v.Data
}
