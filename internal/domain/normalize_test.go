package domain

import "testing"

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trim spaces", input: "  Arsenal  ", want: "arsenal"},
		{name: "lowercase", input: "Manchester United", want: "manchester united"},
		{name: "compress whitespace", input: "real \t madrid", want: "real madrid"},
		{name: "diacritics stripped", input: "São Paulo", want: "sao paulo"},
		{name: "upper diacritics", input: "SÃO PAULO", want: "sao paulo"},
		{name: "mixed variants", input: "  sao   paulo ", want: "sao paulo"},
		{name: "french accents", input: "Saint-Étienne", want: "saint-etienne"},
		{name: "german umlaut", input: "1. FC Köln", want: "1. fc koln"},
		{name: "empty string", input: "", want: ""},
		{name: "only spaces", input: "   ", want: ""},
		{name: "punctuation preserved", input: "Ligue 1", want: "ligue 1"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeName(tt.input); got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeNameVariantsCollapse(t *testing.T) {
	t.Parallel()

	variants := []string{"SÃO PAULO", "Sao Paulo", "  sao   paulo ", "são paulo"}
	want := NormalizeName(variants[0])
	for _, v := range variants[1:] {
		if got := NormalizeName(v); got != want {
			t.Errorf("NormalizeName(%q) = %q, want %q", v, got, want)
		}
	}
}
