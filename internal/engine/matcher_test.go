package engine

import "testing"

func TestMatches(t *testing.T) {
	tests := []struct {
		name      string
		condition string
		batch     string
		want      bool
	}{
		{"exact word", "preço", "qual o preço do plano?", true},
		{"case insensitive", "PREÇO", "quero saber o preço", true},
		{"condition trimmed", "  agendar  ", "quero agendar uma demo", true},
		{"substring of word", "agend", "quero agendar", true},
		{"no match", "boleto", "quero pagar no cartão", false},
		{"empty condition never matches", "", "qualquer coisa", false},
		{"whitespace condition never matches", "   ", "qualquer coisa", false},
		{"empty batch", "preço", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.condition, tt.batch); got != tt.want {
				t.Errorf("Matches(%q, %q) = %v, want %v", tt.condition, tt.batch, got, tt.want)
			}
		})
	}
}
