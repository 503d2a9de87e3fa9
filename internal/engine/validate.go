package engine

import (
	"fmt"

	"github.com/zapfunnel/zapfunnel-backend/internal/models"
)

// ValidateConfigSet checks a stage list against the variable schema.
// Stage ids must be unique, variable keys must be unique, and every key a
// stage references (required variables or @key template placeholders) must
// exist in the schema. Invalid configuration is rejected here, at load,
// rather than surfacing later in runtime dispatch.
func ValidateConfigSet(stages []*models.FunnelStage, schema []*models.VariableDefinition) error {
	known := make(map[string]bool, len(schema))
	for _, def := range schema {
		if def.Key == "" {
			return &ValidationError{Reason: "variable definition with empty key"}
		}
		if known[def.Key] {
			return &ValidationError{Subject: "variable " + def.Key, Reason: "duplicate variable key"}
		}
		if _, err := models.ParseVariableType(string(def.Type)); err != nil {
			return &ValidationError{Subject: "variable " + def.Key, Reason: err.Error()}
		}
		known[def.Key] = true
	}

	seenStages := make(map[string]bool, len(stages))
	for _, stage := range stages {
		if seenStages[stage.StageID] {
			return &ValidationError{Subject: "stage " + stage.StageID, Reason: "duplicate stage id"}
		}
		seenStages[stage.StageID] = true

		if err := stage.Validate(); err != nil {
			return &ValidationError{Subject: "stage " + stage.StageID, Reason: err.Error()}
		}

		for _, key := range stage.RequiredVariables {
			if !known[key] {
				return &ValidationError{
					Subject: "stage " + stage.StageID,
					Reason:  fmt.Sprintf("required variable %q is not in the schema", key),
				}
			}
		}
		for _, match := range variablePlaceholderRe.FindAllStringSubmatch(stage.FinalInstructions, -1) {
			if !known[match[1]] {
				return &ValidationError{
					Subject: "stage " + stage.StageID,
					Reason:  fmt.Sprintf("template references unknown variable %q", match[1]),
				}
			}
		}
	}

	return nil
}
