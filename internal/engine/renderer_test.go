package engine

import "testing"

func TestRenderTemplate(t *testing.T) {
	variables := map[string]string{
		"email":   "ana@example.com",
		"empresa": "Acme",
	}
	contact := map[string]string{
		"name":  "Ana",
		"phone": "+5511987654321",
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			"session variables",
			"Enviarei a proposta para @email em nome da @empresa.",
			"Enviarei a proposta para ana@example.com em nome da Acme.",
		},
		{
			"contact fields",
			"Oi $contact.name! Confirmo seu número $contact.phone.",
			"Oi Ana! Confirmo seu número +5511987654321.",
		},
		{
			"mixed placeholders",
			"$contact.name, mandei para @email",
			"Ana, mandei para ana@example.com",
		},
		{
			"unresolved variable becomes empty",
			"Seu cupom: @cupom!",
			"Seu cupom: !",
		},
		{
			"unresolved contact field becomes empty",
			"Empresa: $contact.company.",
			"Empresa: .",
		},
		{
			"result is trimmed",
			"  @empresa  ",
			"Acme",
		},
		{
			"no placeholders",
			"Obrigado pelo contato!",
			"Obrigado pelo contato!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderTemplate(tt.template, variables, contact); got != tt.want {
				t.Errorf("RenderTemplate(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

func TestTruncateAtWhitespace(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{"under cap unchanged", "oi tudo bem", 50, "oi tudo bem"},
		{"exactly at cap", "12345", 5, "12345"},
		{"cuts at word boundary", "um dois tres", 9, "um dois"},
		{"never splits a word", "palavra seguinte", 10, "palavra"},
		{"single oversized word hard cut", "inconstitucionalissimamente", 10, "inconstitu"},
		{"zero cap disables", "qualquer texto", 0, "qualquer texto"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateAtWhitespace(tt.text, tt.max); got != tt.want {
				t.Errorf("TruncateAtWhitespace(%q, %d) = %q, want %q", tt.text, tt.max, got, tt.want)
			}
		})
	}
}

func TestTruncateAtWhitespaceCountsRunes(t *testing.T) {
	// "ação" is 4 runes but 6 bytes; a byte-based cut would mangle it
	got := TruncateAtWhitespace("ação completa", 4)
	if got != "ação" {
		t.Errorf("got %q, want %q", got, "ação")
	}
}
