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
		from, lim  int
	}{
		{name: "first page", page: 1, size: 20, from: 0, lim: 20},
		{name: "third page", page: 3, size: 10, from: 20, lim: 10},
		{name: "zero page defaults to first", page: 0, size: 10, from: 0, lim: 10},
		{name: "negative page defaults to first", page: -4, size: 10, from: 0, lim: 10},
		{name: "zero size defaults", page: 2, size: 0, from: 10, lim: 10},
		{name: "oversized size defaults", page: 1, size: 1000, from: 0, lim: 10},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			from, limit := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.from, from)
			assert.Equal(t, tt.lim, limit)
		})
	}
}
