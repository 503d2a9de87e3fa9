package engine

import (
	"strings"
	"testing"

	"github.com/zapfunnel/zapfunnel-backend/internal/models"
)

func validSchema() []*models.VariableDefinition {
	return []*models.VariableDefinition{
		{Key: "email", Label: "e-mail", Type: models.VariableEmail},
		{Key: "empresa", Label: "empresa", Type: models.VariableString},
	}
}

func TestValidateConfigSetAccepts(t *testing.T) {
	stages := []*models.FunnelStage{
		{
			StageID:           "ST1",
			Name:              "Proposta",
			Condition:         "proposta",
			RequiredVariables: []string{"email", "empresa"},
			Action:            models.ActionCallAPI,
			FinalInstructions: "Enviei a proposta da @empresa para @email.",
		},
		{StageID: "ST2", Name: "Despedida", Condition: "tchau", Action: models.ActionNone},
	}

	if err := ValidateConfigSet(stages, validSchema()); err != nil {
		t.Fatalf("expected valid config set, got %v", err)
	}
}

func TestValidateConfigSetRejections(t *testing.T) {
	tests := []struct {
		name    string
		stages  []*models.FunnelStage
		schema  []*models.VariableDefinition
		wantMsg string
	}{
		{
			"duplicate variable key",
			nil,
			[]*models.VariableDefinition{{Key: "email"}, {Key: "email"}},
			"duplicate variable key",
		},
		{
			"empty variable key",
			nil,
			[]*models.VariableDefinition{{Key: ""}},
			"empty key",
		},
		{
			"unknown variable type",
			nil,
			[]*models.VariableDefinition{{Key: "idade", Type: "integer"}},
			"unknown variable type",
		},
		{
			"duplicate stage id",
			[]*models.FunnelStage{
				{StageID: "ST1", Name: "A", Action: models.ActionNone},
				{StageID: "ST1", Name: "B", Action: models.ActionNone},
			},
			nil,
			"duplicate stage id",
		},
		{
			"stage without name",
			[]*models.FunnelStage{{StageID: "ST1", Action: models.ActionNone}},
			nil,
			"name is required",
		},
		{
			"unknown action",
			[]*models.FunnelStage{{StageID: "ST1", Name: "A", Action: "explode"}},
			nil,
			"unknown stage action",
		},
		{
			"required variable missing from schema",
			[]*models.FunnelStage{{
				StageID: "ST1", Name: "A", Action: models.ActionNone,
				RequiredVariables: []string{"cpf"},
			}},
			validSchema(),
			`required variable "cpf"`,
		},
		{
			"template references unknown variable",
			[]*models.FunnelStage{{
				StageID: "ST1", Name: "A", Action: models.ActionNone,
				FinalInstructions: "Seu código é @codigo",
			}},
			validSchema(),
			`unknown variable "codigo"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfigSet(tt.stages, tt.schema)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantMsg)
			}
		})
	}
}
