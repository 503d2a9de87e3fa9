package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/zapfunnel/zapfunnel-backend/internal/engine"
	"github.com/zapfunnel/zapfunnel-backend/internal/models"
)

// ActionService delegates stage actions to external HTTP collaborators,
// one endpoint per action name. It performs exactly one attempt per action;
// the engine owns the timeout via context.
type ActionService struct {
	client    *http.Client
	endpoints map[string]string
}

// NewActionService reads the per-action endpoints from the environment.
// Actions without a configured endpoint fail fast when triggered.
func NewActionService() *ActionService {
	return &ActionService{
		client: &http.Client{Timeout: 30 * time.Second},
		endpoints: map[string]string{
			string(models.ActionCallAPI):         os.Getenv("ACTION_CALL_API_URL"),
			string(models.ActionSendFile):        os.Getenv("ACTION_SEND_FILE_URL"),
			string(models.ActionConnectCalendar): os.Getenv("ACTION_CONNECT_CALENDAR_URL"),
			string(models.ActionTransferHuman):   os.Getenv("ACTION_TRANSFER_HUMAN_URL"),
		},
	}
}

// RunAction posts the session variables to the action's endpoint and waits
// for completion within the caller's deadline. No retry on failure.
func (s *ActionService) RunAction(ctx context.Context, name string, payload map[string]string) error {
	url := s.endpoints[name]
	if url == "" {
		return fmt.Errorf("%w: no endpoint configured for action %q", engine.ErrBadRequest, name)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode action payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build action request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return fmt.Errorf("%w: action %s", engine.ErrTimeout, name)
		}
		return fmt.Errorf("action %s request failed: %w", name, err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: action %s", engine.ErrUnauthorized, name)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: action %s", engine.ErrRateLimited, name)
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%w: action %s", engine.ErrBadRequest, name)
	default:
		log.Printf("Action %s returned status %d", name, resp.StatusCode)
		return fmt.Errorf("action %s failed with status %d", name, resp.StatusCode)
	}
}
