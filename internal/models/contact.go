package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contact represents one end user reachable over WhatsApp. Contacts are
// auto-created on the first inbound message from an unknown phone number.
type Contact struct {
	gorm.Model

	ContactID string `json:"contact_id" gorm:"uniqueIndex"`
	AgentID   string `json:"agent_id" gorm:"index"`
	Phone     string `json:"phone" gorm:"uniqueIndex"` // E.164 WhatsApp number
	Name      string `json:"name"`
	Email     string `json:"email"`
	Company   string `json:"company"`
}

// BeforeCreate hook to auto-generate ContactID and normalize the phone
func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.ContactID == "" {
		c.ContactID = "CT" + uuid.NewString()
	}
	c.Phone = strings.TrimSpace(strings.TrimPrefix(c.Phone, "whatsapp:"))
	return nil
}

// Record returns the contact fields available for $contact.* substitution.
func (c *Contact) Record() map[string]string {
	return map[string]string{
		"name":    c.Name,
		"phone":   c.Phone,
		"email":   c.Email,
		"company": c.Company,
	}
}
