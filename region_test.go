package gridsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCellRef(t *testing.T) {
	tests := []struct {
		in  string
		row int
		col int
	}{
		{"A1", 0, 0},
		{"B3", 2, 1},
		{"$C$5", 4, 2},
		{"Z10", 9, 25},
		{"AA1", 0, 26},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			ref, err := ParseCellRef(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.row, ref.Row)
			assert.Equal(t, tt.col, ref.Col)
		})
	}
}

func TestParseCellRef_Invalid(t *testing.T) {
	for _, in := range []string{"", "1A", "!!", "A0"} {
		_, err := ParseCellRef(in)
		assert.Error(t, err, in)
	}
}

func TestCellRef_String(t *testing.T) {
	assert.Equal(t, "A1", NewCellRef(0, 0).String())
	assert.Equal(t, "AA10", NewCellRef(9, 26).String())
	assert.Equal(t, "AA", NewCellRef(0, 26).ColName())
}

func TestParseRegion(t *testing.T) {
	r, err := ParseRegion("A1:C5")
	require.NoError(t, err)
	assert.Equal(t, NewCellRef(0, 0), r.First)
	assert.Equal(t, NewCellRef(4, 2), r.Last)
	assert.Equal(t, 5, r.Rows())
	assert.Equal(t, 3, r.Cols())
	assert.Equal(t, "A1:C5", r.String())
}

func TestParseRegion_SingleCell(t *testing.T) {
	r, err := ParseRegion("B2")
	require.NoError(t, err)
	assert.Equal(t, r.First, r.Last)
	assert.Equal(t, Size{Width: 1, Height: 1}, r.Size())
}

func TestRegion_Normalize(t *testing.T) {
	r := NewRegion(NewCellRef(4, 2), NewCellRef(0, 0))
	assert.Equal(t, NewCellRef(0, 0), r.First)
	assert.Equal(t, NewCellRef(4, 2), r.Last)
}

func TestRegion_ContainsOverlaps(t *testing.T) {
	r, err := ParseRegion("B2:D4")
	require.NoError(t, err)
	assert.True(t, r.Contains(NewCellRef(1, 1)))
	assert.True(t, r.Contains(NewCellRef(3, 3)))
	assert.False(t, r.Contains(NewCellRef(0, 1)))
	assert.False(t, r.Contains(NewCellRef(1, 4)))

	other, err := ParseRegion("D4:F6")
	require.NoError(t, err)
	assert.True(t, r.Overlaps(other))

	disjoint, err := ParseRegion("E5:F6")
	require.NoError(t, err)
	assert.False(t, r.Overlaps(disjoint))
}

func TestInterval(t *testing.T) {
	iv := NewInterval(5, 2)
	assert.Equal(t, 2, iv.Start)
	assert.Equal(t, 5, iv.End)
	assert.Equal(t, 4, iv.Len())
	assert.True(t, iv.Contains(2))
	assert.True(t, iv.Contains(5))
	assert.False(t, iv.Contains(6))
	assert.True(t, iv.Overlaps(NewInterval(5, 9)))
	assert.False(t, iv.Overlaps(NewInterval(6, 9)))
}
