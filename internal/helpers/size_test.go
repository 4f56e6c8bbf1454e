package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{"zero", 0, "0 Bytes"},
		{"negative", -5, "0 Bytes"},
		{"bytes", 1023, "1023 Bytes"},
		{"one kilobyte", 1024, "1 KB"},
		{"one and a half kilobytes", 1536, "1.5 KB"},
		{"three kilobytes", 3072, "3 KB"},
		{"one megabyte", 1048576, "1 MB"},
		{"rounded to two decimals", 1234567, "1.18 MB"},
		{"one gigabyte", 1 << 30, "1 GB"},
		{"one terabyte", 1 << 40, "1 TB"},
		{"petabytes stay in PB", 3 << 50, "3 PB"},
		{"beyond petabytes", 1 << 60, "1024 PB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFileSize(tt.bytes))
		})
	}
}

func TestFormatFileSize_UnitIncreasesAtBoundaries(t *testing.T) {
	prev := -1
	for k := 0; k < len(sizeUnits); k++ {
		var bytes int64 = 1
		for i := 0; i < k; i++ {
			bytes *= 1024
		}
		got := FormatFileSize(bytes)
		idx := -1
		for i, u := range sizeUnits {
			if len(got) > len(u) && got[len(got)-len(u):] == u {
				idx = i
			}
		}
		assert.Greater(t, idx, prev, "unit for %d bytes (%s)", bytes, got)
		prev = idx
	}
}
