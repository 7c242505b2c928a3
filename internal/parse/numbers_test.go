package parse

import "testing"

// TestResolveNumber verifies digit strings, Russian number words with
// case inflections, and English number words.
func TestResolveNumber(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"5", 5},
		{"0", 0},
		{"20", 20},
		{"три", 3},
		{"трёх", 3},
		{"два", 2},
		{"две", 2},
		{"двенадцать", 12},
		{"пятнадцати", 15},
		{"двадцать", 20},
		{"Один", 1},
		{" десять ", 10},
		{"ten", 10},
		{"twelve", 12},
		{"twenty", 20},
	}
	for _, tt := range tests {
		if got := ResolveNumber(tt.in); got != tt.want {
			t.Errorf("ResolveNumber(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

// TestResolveNumberUnknown verifies that unresolvable tokens yield 0,
// the "no number here" signal, never an error.
func TestResolveNumberUnknown(t *testing.T) {
	for _, in := range []string{"", "жим", "тридцать", "-5", "4.5", "abc"} {
		if got := ResolveNumber(in); got != 0 {
			t.Errorf("ResolveNumber(%q) = %d, want 0", in, got)
		}
	}
}
