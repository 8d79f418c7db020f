package backend

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want BackendType
	}{
		{"explicit sqlite", Config{Type: SQLiteBackend}, SQLiteBackend},
		{"explicit memory", Config{Type: MemoryBackend}, MemoryBackend},
		{"db path implies sqlite", Config{SQLiteDBPath: "./data/kopilka.db"}, SQLiteBackend},
		{"nothing configured falls back to memory", Config{}, MemoryBackend},
		{"invalid type ignored", Config{Type: "sheets"}, MemoryBackend},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.cfg); got != tt.want {
				t.Errorf("Detect(%+v) = %q, want %q", tt.cfg, got, tt.want)
			}
		})
	}
}
