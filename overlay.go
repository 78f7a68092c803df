package gridsheet

import (
	"fmt"
	"sort"

	"github.com/expr-lang/expr"
)

// intervalEntry associates one attribute value with a contiguous index span.
type intervalEntry[T any] struct {
	iv  Interval
	val T
}

// intervalStore is the shared machinery behind the 1-D overlay stores. It
// keeps non-overlapping entries sorted by interval start; memory is
// proportional to the number of distinct spans, not the sheet size.
type intervalStore[T any] struct {
	entries []intervalEntry[T]
}

// IntervalRestoreData is the opaque snapshot produced by a structural removal
// on an overlay store, sufficient to reconstruct clipped and deleted spans.
type IntervalRestoreData[T any] struct {
	index     int
	count     int
	originals []intervalEntry[T]
	remnants  []intervalEntry[T]
}

// Set associates val with the given interval, overwriting overlapping spans.
func (st *intervalStore[T]) Set(iv Interval, val T) {
	st.clip(iv)
	st.entries = append(st.entries, intervalEntry[T]{iv: iv, val: val})
	st.sortEntries()
}

// clip removes the covered portion of any entry overlapping iv, keeping the
// uncovered remnants.
func (st *intervalStore[T]) clip(iv Interval) {
	var kept []intervalEntry[T]
	for _, e := range st.entries {
		if !e.iv.Overlaps(iv) {
			kept = append(kept, e)
			continue
		}
		if e.iv.Start < iv.Start {
			kept = append(kept, intervalEntry[T]{iv: Interval{Start: e.iv.Start, End: iv.Start - 1}, val: e.val})
		}
		if e.iv.End > iv.End {
			kept = append(kept, intervalEntry[T]{iv: Interval{Start: iv.End + 1, End: e.iv.End}, val: e.val})
		}
	}
	st.entries = kept
}

// Lookup returns the attribute covering index i, if any.
func (st *intervalStore[T]) Lookup(i int) (T, bool) {
	for _, e := range st.entries {
		if e.iv.Contains(i) {
			return e.val, true
		}
	}
	var zero T
	return zero, false
}

// Len returns the number of stored spans.
func (st *intervalStore[T]) Len() int {
	return len(st.entries)
}

// Remove deletes the index band [index, index+count) from the axis: spans
// fully inside are dropped, spans straddling the band are shrunk, and spans
// past it shift down. The returned restore data inverts all three effects.
func (st *intervalStore[T]) Remove(index, count int) IntervalRestoreData[T] {
	rd := IntervalRestoreData[T]{index: index, count: count}
	band := Interval{Start: index, End: index + count - 1}
	var kept []intervalEntry[T]
	for _, e := range st.entries {
		switch {
		case e.iv.End < index:
			kept = append(kept, e)
		case e.iv.Start >= index+count:
			kept = append(kept, intervalEntry[T]{iv: Interval{Start: e.iv.Start - count, End: e.iv.End - count}, val: e.val})
		default:
			rd.originals = append(rd.originals, e)
			remaining := e.iv.Len() - overlapLen(e.iv, band)
			if remaining > 0 {
				start := e.iv.Start
				if start > index {
					start = index
				}
				remnant := intervalEntry[T]{iv: Interval{Start: start, End: start + remaining - 1}, val: e.val}
				rd.remnants = append(rd.remnants, remnant)
				kept = append(kept, remnant)
			}
		}
	}
	st.entries = kept
	st.sortEntries()
	return rd
}

// Insert opens an index band of the given width: spans past index shift up
// and spans straddling index grow by count.
func (st *intervalStore[T]) Insert(index, count int) {
	for i := range st.entries {
		e := &st.entries[i]
		switch {
		case e.iv.Start >= index:
			e.iv.Start += count
			e.iv.End += count
		case e.iv.End >= index:
			e.iv.End += count
		}
	}
}

// ShiftLeft moves the start and end of every span at or past index down by
// count without altering associated values.
func (st *intervalStore[T]) ShiftLeft(index, count int) {
	for i := range st.entries {
		e := &st.entries[i]
		if e.iv.Start >= index {
			e.iv.Start -= count
			e.iv.End -= count
		}
	}
	st.sortEntries()
}

// ShiftRight moves every span at or past index up by count.
func (st *intervalStore[T]) ShiftRight(index, count int) {
	for i := range st.entries {
		e := &st.entries[i]
		if e.iv.Start >= index {
			e.iv.Start += count
			e.iv.End += count
		}
	}
	st.sortEntries()
}

// Restore exactly reverses the Remove that produced rd: remnants are dropped,
// shifted spans move back up, and the original spans are reinstated.
func (st *intervalStore[T]) Restore(rd IntervalRestoreData[T]) {
	for _, r := range rd.remnants {
		st.deleteExact(r.iv)
	}
	st.ShiftRight(rd.index, rd.count)
	st.entries = append(st.entries, rd.originals...)
	st.sortEntries()
}

func (st *intervalStore[T]) deleteExact(iv Interval) {
	for i, e := range st.entries {
		if e.iv == iv {
			st.entries = append(st.entries[:i], st.entries[i+1:]...)
			return
		}
	}
}

func (st *intervalStore[T]) sortEntries() {
	sort.Slice(st.entries, func(a, b int) bool {
		return st.entries[a].iv.Start < st.entries[b].iv.Start
	})
}

func overlapLen(a, b Interval) int {
	start := a.Start
	if b.Start > start {
		start = b.Start
	}
	end := a.End
	if b.End < end {
		end = b.End
	}
	if end < start {
		return 0
	}
	return end - start + 1
}

// FormatStore tracks column-span default formats.
type FormatStore struct {
	intervalStore[*Format]
}

// NewFormatStore creates an empty FormatStore.
func NewFormatStore() *FormatStore { return &FormatStore{} }

// ValidationRule constrains cell values over a column span. Expr is an
// expression over the variable "value"; a cell passes when it evaluates true.
type ValidationRule struct {
	Expr string
}

// Check evaluates the rule against a cell value.
func (r ValidationRule) Check(v CellValue) (bool, error) {
	out, err := expr.Eval(r.Expr, map[string]any{"value": v.Data})
	if err != nil {
		return false, fmt.Errorf("evaluate validation %q: %w", r.Expr, err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("validation %q evaluated to %T, expected bool", r.Expr, out)
	}
	return b, nil
}

// ValidationStore tracks validation rules over column spans.
type ValidationStore struct {
	intervalStore[ValidationRule]
}

// NewValidationStore creates an empty ValidationStore.
func NewValidationStore() *ValidationStore { return &ValidationStore{} }

// ColumnInfo holds per-column sizing attributes.
type ColumnInfo struct {
	Width  float64
	Hidden bool
}

// ColumnInfoStore tracks column widths and visibility over column spans.
type ColumnInfoStore struct {
	intervalStore[ColumnInfo]
}

// NewColumnInfoStore creates an empty ColumnInfoStore.
func NewColumnInfoStore() *ColumnInfoStore { return &ColumnInfoStore{} }
