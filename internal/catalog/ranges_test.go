package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYearRange(t *testing.T) {
	tests := []struct {
		in      string
		want    IntRange
		wantErr bool
	}{
		{"1999", IntRange{1999, 1999}, false},
		{"1990-2000", IntRange{1990, 2000}, false},
		{" 1990 - 2000 ", IntRange{1990, 2000}, false},
		{"2000-1990", IntRange{2000, 1990}, false},
		{"", IntRange{}, true},
		{"nineties", IntRange{}, true},
		{"1990-", IntRange{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseYearRange(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRatingRange(t *testing.T) {
	tests := []struct {
		in      string
		want    FloatRange
		wantErr bool
	}{
		{"7", FloatRange{7, 10}, false},
		{"6.5-8", FloatRange{6.5, 8}, false},
		{"0-4.9", FloatRange{0, 4.9}, false},
		{"11", FloatRange{}, true},
		{"5-12", FloatRange{}, true},
		{"good", FloatRange{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRatingRange(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
