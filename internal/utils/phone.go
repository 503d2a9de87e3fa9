package utils

import "strings"

// NormalizePhone strips the channel prefix and whitespace from a WhatsApp
// address, leaving the bare E.164 number used as the contact key.
func NormalizePhone(raw string) string {
	phone := strings.TrimSpace(raw)
	phone = strings.TrimPrefix(phone, "whatsapp:")
	return strings.TrimSpace(phone)
}

// WhatsAppAddress formats a bare phone number as a Twilio WhatsApp address.
func WhatsAppAddress(phone string) string {
	if strings.HasPrefix(phone, "whatsapp:") {
		return phone
	}
	return "whatsapp:" + phone
}
