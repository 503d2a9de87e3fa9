package models

import (
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// VariableType is the closed set of value types a contextual variable can have.
type VariableType string

const (
	VariableString VariableType = "string"
	VariablePhone  VariableType = "phone"
	VariableEmail  VariableType = "email"
	VariableNumber VariableType = "number"
)

// ParseVariableType validates a raw type string against the closed set.
// An empty string maps to VariableString.
func ParseVariableType(raw string) (VariableType, error) {
	t := VariableType(strings.TrimSpace(strings.ToLower(raw)))
	switch t {
	case "":
		return VariableString, nil
	case VariableString, VariablePhone, VariableEmail, VariableNumber:
		return t, nil
	default:
		return "", fmt.Errorf("unknown variable type %q", raw)
	}
}

// VariableDefinition describes one contextual variable in the agent's schema.
type VariableDefinition struct {
	gorm.Model

	AgentID  string       `json:"agent_id" gorm:"index:idx_agent_key,unique"`
	Key      string       `json:"key" gorm:"index:idx_agent_key,unique"`
	Label    string       `json:"label"`
	Type     VariableType `json:"type" gorm:"default:string"`
	Required bool         `json:"required" gorm:"default:false"`
}

// BeforeCreate hook to normalize the variable type
func (v *VariableDefinition) BeforeCreate(tx *gorm.DB) error {
	t, err := ParseVariableType(string(v.Type))
	if err != nil {
		return err
	}
	v.Type = t
	return nil
}

// minPhoneDigits is the minimum digit count for a phone answer.
const minPhoneDigits = 8

// ValidateValue checks a collected answer against the variable's type.
func (v *VariableDefinition) ValidateValue(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("variable %s: value is empty", v.Key)
	}

	switch v.Type {
	case VariablePhone:
		digits := 0
		for _, r := range value {
			switch {
			case r >= '0' && r <= '9':
				digits++
			case r == '+' || r == '-' || r == '(' || r == ')' || r == ' ' || r == '.':
				// allowed formatting symbols
			default:
				return fmt.Errorf("variable %s: %q is not a valid phone number", v.Key, value)
			}
		}
		if digits < minPhoneDigits {
			return fmt.Errorf("variable %s: phone number needs at least %d digits", v.Key, minPhoneDigits)
		}
	case VariableEmail:
		at := strings.Index(value, "@")
		if at <= 0 || at == len(value)-1 {
			return fmt.Errorf("variable %s: %q is not a valid email", v.Key, value)
		}
		domain := value[at+1:]
		if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
			return fmt.Errorf("variable %s: %q has no valid domain", v.Key, value)
		}
	case VariableNumber:
		normalized := strings.ReplaceAll(value, ",", ".")
		if _, err := strconv.ParseFloat(normalized, 64); err != nil {
			return fmt.Errorf("variable %s: %q is not a number", v.Key, value)
		}
	}

	return nil
}
