package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVariableType(t *testing.T) {
	got, err := ParseVariableType("")
	require.NoError(t, err)
	assert.Equal(t, VariableString, got)

	got, err = ParseVariableType("  EMAIL ")
	require.NoError(t, err)
	assert.Equal(t, VariableEmail, got)

	_, err = ParseVariableType("integer")
	assert.Error(t, err)
}

func TestValidateValueString(t *testing.T) {
	def := &VariableDefinition{Key: "empresa", Type: VariableString}

	assert.NoError(t, def.ValidateValue("Acme Ltda"))
	assert.Error(t, def.ValidateValue(""))
	assert.Error(t, def.ValidateValue("   "))
}

func TestValidateValuePhone(t *testing.T) {
	def := &VariableDefinition{Key: "telefone", Type: VariablePhone}

	valid := []string{
		"+5511987654321",
		"(11) 98765-4321",
		"11 98765 4321",
		"11.98765.4321",
	}
	for _, v := range valid {
		assert.NoError(t, def.ValidateValue(v), "value %q", v)
	}

	invalid := []string{
		"1234567",          // too few digits
		"meu telefone",     // letters
		"+55 11 9876x4321", // stray letter
	}
	for _, v := range invalid {
		assert.Error(t, def.ValidateValue(v), "value %q", v)
	}
}

func TestValidateValueEmail(t *testing.T) {
	def := &VariableDefinition{Key: "email", Type: VariableEmail}

	assert.NoError(t, def.ValidateValue("ana@example.com"))
	assert.NoError(t, def.ValidateValue("  ana.silva@empresa.com.br  "))

	invalid := []string{
		"sem-arroba",
		"@example.com",
		"ana@",
		"ana@semdominio",
		"ana@.com",
		"ana@example.",
	}
	for _, v := range invalid {
		assert.Error(t, def.ValidateValue(v), "value %q", v)
	}
}

func TestValidateValueNumber(t *testing.T) {
	def := &VariableDefinition{Key: "orcamento", Type: VariableNumber}

	assert.NoError(t, def.ValidateValue("1500"))
	assert.NoError(t, def.ValidateValue("99.90"))
	// Brazilian decimal comma is accepted
	assert.NoError(t, def.ValidateValue("99,90"))
	assert.NoError(t, def.ValidateValue("-3"))

	assert.Error(t, def.ValidateValue("noventa"))
	assert.Error(t, def.ValidateValue("R$ 99"))
}
