package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Normalize(t *testing.T) {
	t.Run("fills defaults", func(t *testing.T) {
		f := Filter{}
		f.Normalize()

		assert.Equal(t, 1, f.Page)
		assert.Equal(t, 10, f.Limit)
		assert.Equal(t, "created_at", f.OrderBy)
		assert.Equal(t, "desc", f.OrderDir)
		assert.NotNil(t, f.Filters)
	})

	t.Run("caps limit", func(t *testing.T) {
		f := Filter{Page: 3, Limit: 500}
		f.Normalize()

		assert.Equal(t, 3, f.Page)
		assert.Equal(t, MaxLimit, f.Limit)
	})

	t.Run("caps page so the offset cannot overflow", func(t *testing.T) {
		f := Filter{Page: 1 << 62, Limit: MaxLimit}
		f.Normalize()

		assert.Equal(t, MaxPage, f.Page)
		assert.Equal(t, (MaxPage-1)*MaxLimit, f.Offset())
		assert.Positive(t, f.Offset())
	})

	t.Run("offset is zero based", func(t *testing.T) {
		assert.Equal(t, 0, Filter{Page: 1, Limit: 10}.Offset())
		assert.Equal(t, 10, Filter{Page: 2, Limit: 10}.Offset())
		assert.Equal(t, 40, Filter{Page: 3, Limit: 20}.Offset())
	})
}

func TestNewPaginated(t *testing.T) {
	tests := []struct {
		name       string
		total      int64
		limit      int
		totalPages int
	}{
		{"exact multiple", 20, 10, 2},
		{"partial last page", 22, 10, 3},
		{"empty", 0, 10, 0},
		{"single short page", 3, 10, 1},
		{"zero limit", 5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPaginated([]int{}, tt.total, 1, tt.limit)
			assert.Equal(t, tt.totalPages, p.TotalPages)
			assert.Equal(t, tt.total, p.Total)
		})
	}
}
