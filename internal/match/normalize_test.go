package match

import "testing"

// TestNormalize verifies lower-casing, punctuation removal and whitespace
// collapsing across Russian and English input.
func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Приседания", "приседания"},
		{"  Жим   ЛЕЖА!!! ", "жим лежа"},
		{"push-ups (wide)", "push-ups wide"},
		{"10 раз, с весом", "10 раз с весом"},
		{"", ""},
		{"!!!", ""},
		{"\tnaклон\nвперёд", "naклон вперёд"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestNormalizeIdempotent verifies that normalizing twice changes nothing.
func TestNormalizeIdempotent(t *testing.T) {
	for _, in := range []string{"Жим ЛЕЖА!", "push-ups", "  a  b  ", "приседания 10 раз"} {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, twice, once)
		}
	}
}

// TestNormalizeStripStopWords verifies per-language stop-word removal.
func TestNormalizeStripStopWords(t *testing.T) {
	tests := []struct {
		in   string
		lang string
		want string
	}{
		{"упражнение на пресс", "ru", "пресс"},
		{"наклоны для спины", "ru", "наклоны спины"},
		{"exercise for the back", "en", "back"},
		{"жим лежа", "ru", "жим лежа"},
	}
	for _, tt := range tests {
		if got := NormalizeStripStopWords(tt.in, tt.lang); got != tt.want {
			t.Errorf("NormalizeStripStopWords(%q, %q) = %q, want %q", tt.in, tt.lang, got, tt.want)
		}
	}
}

// TestNormalizeStripStopWordsUnknownLanguage verifies the Russian fallback.
func TestNormalizeStripStopWordsUnknownLanguage(t *testing.T) {
	if got := NormalizeStripStopWords("упражнение на пресс", "de"); got != "пресс" {
		t.Errorf("got %q, want %q", got, "пресс")
	}
}
