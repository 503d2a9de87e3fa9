package engine

import (
	"testing"
	"time"

	"github.com/zapfunnel/zapfunnel-backend/internal/models"
)

func testStages() []*models.FunnelStage {
	return []*models.FunnelStage{
		{StageID: "ST1", Name: "Preço", Condition: "preço", IsActive: true},
		{StageID: "ST2", Name: "Agendamento", Condition: "agendar", IsActive: true},
		{StageID: "ST3", Name: "Suporte", Condition: "ajuda", IsActive: false},
	}
}

func TestSelectStageFirstMatchWins(t *testing.T) {
	session := newSession("+5511999990000")
	stages := []*models.FunnelStage{
		{StageID: "ST1", Name: "Genérico", Condition: "plano", IsActive: true},
		{StageID: "ST2", Name: "Específico", Condition: "plano anual", IsActive: true},
	}

	got := SelectStage(stages, "quero o plano anual", session, time.Now())
	if got == nil || got.StageID != "ST1" {
		t.Fatalf("expected first matching stage ST1, got %+v", got)
	}
}

func TestSelectStageSkipsInactive(t *testing.T) {
	session := newSession("+5511999990000")

	got := SelectStage(testStages(), "preciso de ajuda", session, time.Now())
	if got != nil {
		t.Fatalf("inactive stage must not be selected, got %s", got.StageID)
	}
}

func TestSelectStageNoMatch(t *testing.T) {
	session := newSession("+5511999990000")

	if got := SelectStage(testStages(), "bom dia", session, time.Now()); got != nil {
		t.Fatalf("expected nil for unmatched batch, got %s", got.StageID)
	}
}

func TestSelectStageHonorsCooldown(t *testing.T) {
	session := newSession("+5511999990000")
	now := time.Now()
	session.StageCooldowns["ST1"] = now.Add(10 * time.Minute)

	got := SelectStage(testStages(), "qual o preço?", session, now)
	if got != nil {
		t.Fatalf("cooling-down stage must not be selected, got %s", got.StageID)
	}

	// expired cooldown no longer blocks
	session.StageCooldowns["ST1"] = now.Add(-time.Minute)
	got = SelectStage(testStages(), "qual o preço?", session, now)
	if got == nil || got.StageID != "ST1" {
		t.Fatalf("expired cooldown must allow selection, got %+v", got)
	}
}

func TestSelectStageCooldownIsPerSession(t *testing.T) {
	now := time.Now()
	cooled := newSession("+5511999990000")
	cooled.StageCooldowns["ST1"] = now.Add(time.Hour)
	fresh := newSession("+5511888880000")

	if got := SelectStage(testStages(), "preço", cooled, now); got != nil {
		t.Fatalf("expected nil for cooled session, got %s", got.StageID)
	}
	if got := SelectStage(testStages(), "preço", fresh, now); got == nil || got.StageID != "ST1" {
		t.Fatalf("other sessions must be unaffected, got %+v", got)
	}
}

func TestArmCooldown(t *testing.T) {
	session := newSession("+5511999990000")
	now := time.Now()

	armCooldown(session, &models.FunnelStage{StageID: "ST1", FollowUpTimeoutMinutes: 15}, now)
	expiry, ok := session.StageCooldowns["ST1"]
	if !ok {
		t.Fatal("cooldown was not recorded")
	}
	if want := now.Add(15 * time.Minute); !expiry.Equal(want) {
		t.Errorf("expiry = %v, want %v", expiry, want)
	}

	// zero timeout and nil stage are no-ops
	armCooldown(session, &models.FunnelStage{StageID: "ST2"}, now)
	if _, ok := session.StageCooldowns["ST2"]; ok {
		t.Error("zero timeout must not arm a cooldown")
	}
	armCooldown(session, nil, now)
}
