package render

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocatePagesRoundRobin(t *testing.T) {
	// Three files, budget 6: fair split.
	require.Equal(t, []int{2, 2, 2}, AllocatePages([]int{10, 10, 10}, 6))
}

func TestAllocatePagesShortFilesDonateBudget(t *testing.T) {
	// One-page file frees budget for the longer ones.
	alloc := AllocatePages([]int{1, 10, 10}, 6)
	require.Equal(t, []int{1, 3, 2}, alloc)
	require.Equal(t, 6, TotalPages(alloc))
}

func TestAllocatePagesUnknownCountGetsNothing(t *testing.T) {
	alloc := AllocatePages([]int{0, 4}, 6)
	require.Equal(t, []int{0, 4}, alloc)
}

func TestAllocatePagesBudgetExceedsPages(t *testing.T) {
	alloc := AllocatePages([]int{2, 1}, 6)
	require.Equal(t, []int{2, 1}, alloc)
}

func TestAllocatePagesZeroBudget(t *testing.T) {
	require.Equal(t, []int{0, 0}, AllocatePages([]int{3, 3}, 0))
}
