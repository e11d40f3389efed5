package cache

import "testing"

func TestCacheEntry_IsStale(t *testing.T) {
	tests := []struct {
		name string
		now  int64
		want bool
	}{
		{name: "just inserted", now: 1000, want: false},
		{name: "one second before lifetime", now: 1119, want: false},
		{name: "exactly at lifetime", now: 1120, want: true},
		{name: "long expired", now: 5000, want: true},
	}

	entry := &CacheEntry{Timestamp: 1000}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := entry.IsStale(tt.now, 120); got != tt.want {
				t.Errorf("IsStale(%d) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestEntrySize(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		bytesPerChar uint64
		want         uint64
	}{
		{name: "empty", body: "", bytesPerChar: 2, want: 0},
		{name: "ascii", body: "abcd", bytesPerChar: 2, want: 8},
		{name: "latin-1 is one unit", body: "é", bytesPerChar: 2, want: 2},
		{name: "astral plane is a surrogate pair", body: "😀", bytesPerChar: 2, want: 4},
		{name: "one byte per char", body: "abcd", bytesPerChar: 1, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := entrySize(tt.body, tt.bytesPerChar); got != tt.want {
				t.Errorf("entrySize(%q) = %d, want %d", tt.body, got, tt.want)
			}
		})
	}
}
