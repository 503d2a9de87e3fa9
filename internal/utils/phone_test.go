package utils

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"whatsapp:+5511987654321", "+5511987654321"},
		{"+5511987654321", "+5511987654321"},
		{"  whatsapp:+5511987654321  ", "+5511987654321"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizePhone(tt.in); got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWhatsAppAddress(t *testing.T) {
	if got := WhatsAppAddress("+5511987654321"); got != "whatsapp:+5511987654321" {
		t.Errorf("unexpected address: %q", got)
	}
	// already-prefixed numbers are left alone
	if got := WhatsAppAddress("whatsapp:+5511987654321"); got != "whatsapp:+5511987654321" {
		t.Errorf("unexpected address: %q", got)
	}
}
