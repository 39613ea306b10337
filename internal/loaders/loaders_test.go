package loaders

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ALEYI17/InfraSight_traffic/internal/collector/timeserie"
	"github.com/ALEYI17/InfraSight_traffic/pkg/types"
)

func TestNewTrimmer(t *testing.T) {
	tests := []struct {
		name    string
		want    types.Trimmer
		wantErr bool
	}{
		{"", timeserie.TailTrimmer{}, false},
		{types.TrimTail, timeserie.TailTrimmer{}, false},
		{types.TrimEdges, timeserie.EdgeTrimmer{}, false},
		{"middle", nil, true},
	}
	for _, tt := range tests {
		got, err := NewTrimmer(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewTrimmer(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("NewTrimmer(%q) = %T, want %T", tt.name, got, tt.want)
		}
	}
}

func TestNethogsLoader(t *testing.T) {
	dir := t.TempDir()
	data := "Refreshing:\n./bench/P0/party 100 20\n./bench/P1/party 50 10\n"
	if err := os.WriteFile(filepath.Join(dir, "nethogs_2.txt"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewNethogsLoader(dir, "bench")
	it, err := l.Load(2)
	if err != nil {
		t.Fatal(err)
	}
	if it.Index != 2 || len(it.Participants) != 2 || it.Refreshes != 1 {
		t.Errorf("Load(2) = %+v", it)
	}

	if _, err := l.Load(0); !errors.Is(err, types.ErrMissingInput) {
		t.Errorf("Load(0) error = %v, want ErrMissingInput", err)
	}
}
