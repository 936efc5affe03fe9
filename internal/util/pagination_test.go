package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		page, size int
		from, want int
	}{
		{"defaults", 0, 0, 0, 20},
		{"first page", 1, 10, 0, 10},
		{"third page", 3, 10, 20, 10},
		{"oversized clamped", 1, 500, 0, 20},
		{"negative page", -2, 10, 0, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, limit := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.from, from)
			assert.Equal(t, tt.want, limit)
		})
	}
}
