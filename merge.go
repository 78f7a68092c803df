package gridsheet

import "sort"

// MergeRestoreData is the opaque snapshot produced by a structural removal on
// the merge store, capturing the original bounds of every merge the removal
// deleted or shrunk.
type MergeRestoreData struct {
	axis      storeAxis
	index     int
	count     int
	originals []Region
	remnants  []Region
}

// MergeStore tracks merged regions. Regions never overlap; Add rejects a
// merge that intersects an existing one.
type MergeStore struct {
	regions []Region
}

// NewMergeStore creates an empty MergeStore.
func NewMergeStore() *MergeStore {
	return &MergeStore{}
}

// Regions returns the merged regions in row-major order of their top-left
// corner. The slice is a copy.
func (st *MergeStore) Regions() []Region {
	out := make([]Region, len(st.regions))
	copy(out, st.regions)
	return out
}

// Len returns the number of merged regions.
func (st *MergeStore) Len() int {
	return len(st.regions)
}

// Add registers a merged region. It returns false if the region is a single
// cell or overlaps an existing merge.
func (st *MergeStore) Add(r Region) bool {
	r = r.Normalize()
	if r.Rows() == 1 && r.Cols() == 1 {
		return false
	}
	for _, m := range st.regions {
		if m.Overlaps(r) {
			return false
		}
	}
	st.regions = append(st.regions, r)
	st.sortRegions()
	return true
}

// Delete removes the exact region from the store.
func (st *MergeStore) Delete(r Region) bool {
	r = r.Normalize()
	for i, m := range st.regions {
		if m == r {
			st.regions = append(st.regions[:i], st.regions[i+1:]...)
			return true
		}
	}
	return false
}

// MergedAt returns the merge containing ref, if any.
func (st *MergeStore) MergedAt(ref CellRef) (Region, bool) {
	for _, m := range st.regions {
		if m.Contains(ref) {
			return m, true
		}
	}
	return Region{}, false
}

// RemoveCols deletes the column band [index, index+count): merges fully
// inside are dropped, straddling merges shrink, and merges past the band
// shift left. The restore data inverts all three effects.
func (st *MergeStore) RemoveCols(index, count int) MergeRestoreData {
	return st.remove(axisCol, index, count)
}

// RemoveRows deletes the row band [index, index+count). See RemoveCols.
func (st *MergeStore) RemoveRows(index, count int) MergeRestoreData {
	return st.remove(axisRow, index, count)
}

func (st *MergeStore) remove(axis storeAxis, index, count int) MergeRestoreData {
	rd := MergeRestoreData{axis: axis, index: index, count: count}
	band := Interval{Start: index, End: index + count - 1}
	var kept []Region
	for _, m := range st.regions {
		span := m.ColInterval()
		if axis == axisRow {
			span = m.RowInterval()
		}
		switch {
		case span.End < index:
			kept = append(kept, m)
		case span.Start >= index+count:
			kept = append(kept, shiftRegion(m, axis, -count))
		default:
			rd.originals = append(rd.originals, m)
			remaining := span.Len() - overlapLen(span, band)
			if remaining > 1 || (remaining == 1 && crossLen(m, axis) > 1) {
				start := span.Start
				if start > index {
					start = index
				}
				remnant := withSpan(m, axis, Interval{Start: start, End: start + remaining - 1})
				rd.remnants = append(rd.remnants, remnant)
				kept = append(kept, remnant)
			}
		}
	}
	st.regions = kept
	st.sortRegions()
	return rd
}

// InsertCols opens count columns at index: merges past the band shift right
// and straddling merges widen.
func (st *MergeStore) InsertCols(index, count int) {
	st.insert(axisCol, index, count)
}

// InsertRows opens count rows at index. See InsertCols.
func (st *MergeStore) InsertRows(index, count int) {
	st.insert(axisRow, index, count)
}

func (st *MergeStore) insert(axis storeAxis, index, count int) {
	for i, m := range st.regions {
		span := m.ColInterval()
		if axis == axisRow {
			span = m.RowInterval()
		}
		switch {
		case span.Start >= index:
			st.regions[i] = shiftRegion(m, axis, count)
		case span.End >= index:
			span.End += count
			st.regions[i] = withSpan(m, axis, span)
		}
	}
	st.sortRegions()
}

// Restore exactly reverses the removal that produced rd.
func (st *MergeStore) Restore(rd MergeRestoreData) {
	for _, r := range rd.remnants {
		st.Delete(r)
	}
	for i, m := range st.regions {
		span := m.ColInterval()
		if rd.axis == axisRow {
			span = m.RowInterval()
		}
		if span.Start >= rd.index {
			st.regions[i] = shiftRegion(m, rd.axis, rd.count)
		}
	}
	st.regions = append(st.regions, rd.originals...)
	st.sortRegions()
}

func (st *MergeStore) sortRegions() {
	sort.Slice(st.regions, func(a, b int) bool {
		ra, rb := st.regions[a], st.regions[b]
		if ra.First.Row != rb.First.Row {
			return ra.First.Row < rb.First.Row
		}
		return ra.First.Col < rb.First.Col
	})
}

func shiftRegion(r Region, axis storeAxis, delta int) Region {
	if axis == axisRow {
		r.First.Row += delta
		r.Last.Row += delta
	} else {
		r.First.Col += delta
		r.Last.Col += delta
	}
	return r
}

func withSpan(r Region, axis storeAxis, span Interval) Region {
	if axis == axisRow {
		r.First.Row = span.Start
		r.Last.Row = span.End
	} else {
		r.First.Col = span.Start
		r.Last.Col = span.End
	}
	return r
}

// crossLen returns the region's span on the axis perpendicular to axis.
func crossLen(r Region, axis storeAxis) int {
	if axis == axisRow {
		return r.Cols()
	}
	return r.Rows()
}
