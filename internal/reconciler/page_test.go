package reconciler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"tradeSync/internal/domain"
)

func TestPage(t *testing.T) {
	trades := []domain.Trade{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}, {ID: "5"}}

	tests := []struct {
		name        string
		size, index int
		want        []string
	}{
		{"first page", 2, 0, []string{"1", "2"}},
		{"middle page", 2, 1, []string{"3", "4"}},
		{"short last page", 2, 2, []string{"5"}},
		{"past the end", 2, 3, []string{}},
		{"negative index", 2, -1, []string{}},
		{"no paging", 0, 4, []string{"1", "2", "3", "4", "5"}},
		{"index times size overflows", 3, math.MaxInt/3 + 1, []string{}},
		{"huge index", 1, math.MaxInt, []string{}},
		{"huge size", math.MaxInt, 0, []string{"1", "2", "3", "4", "5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Page(trades, tt.size, tt.index)
			ids := make([]string, 0, len(got))
			for _, tr := range got {
				ids = append(ids, tr.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestPage_EmptySnapshot(t *testing.T) {
	assert.Empty(t, Page(nil, 10, 0))
	assert.Empty(t, Page([]domain.Trade{}, 10, 0))
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 3, PageCount(5, 2))
	assert.Equal(t, 1, PageCount(0, 10))
	assert.Equal(t, 1, PageCount(7, 0))
	assert.Equal(t, 2, PageCount(20, 10))
	assert.Equal(t, 1, PageCount(5, math.MaxInt))
}
