package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStageAction(t *testing.T) {
	got, err := ParseStageAction("")
	require.NoError(t, err)
	assert.Equal(t, ActionNone, got)

	got, err = ParseStageAction(" Connect_Calendar ")
	require.NoError(t, err)
	assert.Equal(t, ActionConnectCalendar, got)

	for _, raw := range []string{"none", "call_api", "send_file", "transfer_human"} {
		_, err := ParseStageAction(raw)
		assert.NoError(t, err, "action %q", raw)
	}

	_, err = ParseStageAction("launch_rocket")
	assert.Error(t, err)
}

func TestFunnelStageValidate(t *testing.T) {
	stage := &FunnelStage{
		StageID:           "ST1",
		Name:              "Qualificação",
		Condition:         "orçamento",
		RequiredVariables: []string{"email", "empresa"},
		Action:            ActionCallAPI,
	}
	assert.NoError(t, stage.Validate())

	noName := &FunnelStage{StageID: "ST2", Action: ActionNone}
	assert.ErrorContains(t, noName.Validate(), "name is required")

	badAction := &FunnelStage{StageID: "ST3", Name: "X", Action: "explode"}
	assert.ErrorContains(t, badAction.Validate(), "unknown stage action")

	emptyKey := &FunnelStage{StageID: "ST4", Name: "X", RequiredVariables: []string{""}}
	assert.ErrorContains(t, emptyKey.Validate(), "empty required variable")

	dupKey := &FunnelStage{StageID: "ST5", Name: "X", RequiredVariables: []string{"email", "email"}}
	assert.ErrorContains(t, dupKey.Validate(), "duplicate required variable")
}
