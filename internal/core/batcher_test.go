package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairWithID(id int64) Pair {
	return Pair{Employee: EmployeeRecord{ID: id}, Address: AddressRecord{EmployeeID: id}}
}

func TestBatcher_BatchCounts(t *testing.T) {
	tests := []struct {
		rows      int
		size      int
		wantSizes []int
	}{
		{rows: 0, size: 300, wantSizes: nil},
		{rows: 1, size: 300, wantSizes: []int{1}},
		{rows: 300, size: 300, wantSizes: []int{300}},
		{rows: 301, size: 300, wantSizes: []int{300, 1}},
		{rows: 900, size: 300, wantSizes: []int{300, 300, 300}},
		{rows: 7, size: 3, wantSizes: []int{3, 3, 1}},
	}

	for _, tt := range tests {
		b := NewBatcher(tt.size)
		var sizes []int
		for i := 1; i <= tt.rows; i++ {
			if batch, ok := b.Add(pairWithID(int64(i))); ok {
				sizes = append(sizes, batch.Len())
			}
		}
		if batch, ok := b.Flush(); ok {
			sizes = append(sizes, batch.Len())
		}
		assert.Equal(t, tt.wantSizes, sizes, "rows=%d size=%d", tt.rows, tt.size)
	}
}

func TestBatcher_PreservesOrderAndSequence(t *testing.T) {
	b := NewBatcher(2)

	_, ok := b.Add(pairWithID(1))
	require.False(t, ok)
	first, ok := b.Add(pairWithID(2))
	require.True(t, ok)
	_, ok = b.Add(pairWithID(3))
	require.False(t, ok)
	last, ok := b.Flush()
	require.True(t, ok)

	assert.Equal(t, 1, first.Seq)
	assert.Equal(t, 2, last.Seq)
	assert.Equal(t, []int64{1, 2}, []int64{first.Employees()[0].ID, first.Employees()[1].ID})
	assert.Equal(t, int64(3), last.Addresses()[0].EmployeeID)

	_, ok = b.Flush()
	assert.False(t, ok)
}

func TestBatcher_EmittedBatchIsNotReused(t *testing.T) {
	b := NewBatcher(1)
	first, _ := b.Add(pairWithID(1))
	_, _ = b.Add(pairWithID(2))
	assert.Equal(t, int64(1), first.Pairs[0].Employee.ID)
}

func TestBatcher_DefaultSize(t *testing.T) {
	assert.Equal(t, DefaultChunkSize, NewBatcher(0).Size())
	assert.Equal(t, DefaultChunkSize, NewBatcher(-5).Size())
}
