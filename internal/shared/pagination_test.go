package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPaginationClamps(t *testing.T) {
	p := NewPagination(0, 0, 120)
	require.Equal(t, Pagination{Page: 1, PerPage: DefaultPerPage, Total: 120, TotalPages: 3}, p)

	p = NewPagination(1, 10000, 1200)
	require.Equal(t, MaxPerPage, p.PerPage)
	require.Equal(t, 3, p.TotalPages)

	require.Equal(t, 0, NewPagination(1, 10, 0).TotalPages)
}

func TestPaginationWindow(t *testing.T) {
	start, end := NewPagination(3, 10, 25).Window()
	require.Equal(t, 20, start)
	require.Equal(t, 25, end)

	start, end = NewPagination(4, 10, 25).Window()
	require.Equal(t, 25, start)
	require.Equal(t, 25, end)
}
