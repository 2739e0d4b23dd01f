package tlsfiles

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("pem"), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLocate(t *testing.T) {
	dir := t.TempDir()
	cert := filepath.Join(dir, "server.crt")
	key := filepath.Join(dir, "server.key")
	writeFile(t, cert)
	writeFile(t, key)

	missing := filepath.Join(dir, "missing")

	tests := []struct {
		name       string
		candidates []Pair
		wantPair   Pair
		wantFound  bool
	}{
		{
			name:       "no candidates",
			candidates: nil,
			wantFound:  false,
		},
		{
			name:       "pair exists",
			candidates: []Pair{{cert, key}},
			wantPair:   Pair{cert, key},
			wantFound:  true,
		},
		{
			name:       "cert without key is skipped",
			candidates: []Pair{{cert, missing}},
			wantFound:  false,
		},
		{
			name:       "key without cert is skipped",
			candidates: []Pair{{missing, key}},
			wantFound:  false,
		},
		{
			name: "first existing pair wins",
			candidates: []Pair{
				{missing, missing},
				{cert, key},
				{filepath.Join(dir, "other.crt"), filepath.Join(dir, "other.key")},
			},
			wantPair:  Pair{cert, key},
			wantFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, found := Locate(tt.candidates)
			if found != tt.wantFound {
				t.Fatalf("found = %v, want %v", found, tt.wantFound)
			}
			if found && pair != tt.wantPair {
				t.Errorf("pair = %+v, want %+v", pair, tt.wantPair)
			}
		})
	}
}

func TestLocate_DirectoryIsNotAPair(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "certs")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	if _, found := Locate([]Pair{{sub, sub}}); found {
		t.Error("directory accepted as certificate file")
	}
}
