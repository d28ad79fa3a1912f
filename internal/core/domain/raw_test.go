package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewHarvestCursor(t *testing.T) {
	c := NewHarvestCursor(20)

	assert.Equal(t, 1, c.StartPosition)
	assert.Equal(t, 20, c.PageSize)
	assert.Equal(t, TotalUnknown, c.TotalMatched)
}

func TestHarvestCursor_Done(t *testing.T) {
	tests := []struct {
		name   string
		cursor HarvestCursor
		want   bool
	}{
		{"unknown total never done", HarvestCursor{StartPosition: 500, TotalMatched: TotalUnknown}, false},
		{"before end", HarvestCursor{StartPosition: 21, TotalMatched: 45}, false},
		{"exactly at last record", HarvestCursor{StartPosition: 45, TotalMatched: 45}, false},
		{"past end", HarvestCursor{StartPosition: 46, TotalMatched: 45}, true},
		{"empty result set", HarvestCursor{StartPosition: 1, TotalMatched: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cursor.Done())
		})
	}
}
