package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnionNames(t *testing.T) {
	jean := Name{Given: "Jean"}
	jeannot := Name{Given: "Jeannot"}

	tests := []struct {
		name     string
		into     []Name
		in       []Name
		expected []Name
	}{
		{
			name:     "empty target takes every name",
			in:       []Name{jean, jean},
			expected: []Name{jean, jean},
		},
		{
			name:     "same group twice is unchanged",
			into:     []Name{jean, jean, jeannot},
			in:       []Name{jean, jean, jeannot},
			expected: []Name{jean, jean, jeannot},
		},
		{
			name:     "larger count wins",
			into:     []Name{jean},
			in:       []Name{jeannot, jean, jean},
			expected: []Name{jean, jeannot, jean},
		},
		{
			name:     "smaller incoming count adds nothing",
			into:     []Name{jean, jean},
			in:       []Name{jean},
			expected: []Name{jean, jean},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UnionNames(tt.into, tt.in))
		})
	}
}
