package paths

import (
	"path/filepath"
	"testing"
)

func TestRoot_Join(t *testing.T) {
	r := Root{Dir: filepath.Join("site", "root")}

	tests := []struct {
		in, want string
	}{
		{"fonts/a.ttf", filepath.Join("site", "root", "fonts", "a.ttf")},
		{"", ""},
	}
	for _, tt := range tests {
		if got := r.Join(tt.in); got != tt.want {
			t.Errorf("Join(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	abs, _ := filepath.Abs("x.png")
	if got := r.Join(abs); got != abs {
		t.Errorf("Join(%q) = %q, want unchanged", abs, got)
	}
}

func TestRoot_Config(t *testing.T) {
	r := Root{Dir: "base"}
	if got, want := r.Config(), filepath.Join("base", ConfigFile); got != want {
		t.Errorf("Config() = %q, want %q", got, want)
	}
}
