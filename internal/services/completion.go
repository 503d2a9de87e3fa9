package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/zapfunnel/zapfunnel-backend/internal/engine"
)

const defaultCompletionModel = "gpt-4o-mini"

// CompletionService phrases replies with an OpenAI chat model when a stage
// has no static template. Implements the engine's Completion collaborator.
type CompletionService struct {
	client openai.Client
	model  string
}

// NewCompletionService creates the OpenAI-backed completion service
func NewCompletionService() (*CompletionService, error) {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	model := strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if model == "" {
		model = defaultCompletionModel
	}

	return &CompletionService{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// GenerateReply asks the model for the next reply given the agent
// personality, recent conversation history and the incoming batch text.
// Errors are mapped onto the engine's collaborator taxonomy.
func (s *CompletionService) GenerateReply(ctx context.Context, pc engine.PromptContext) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(buildSystemPrompt(pc)),
	}
	for _, turn := range pc.History {
		if turn.Role == "assistant" {
			messages = append(messages, openai.AssistantMessage(turn.Content))
		} else {
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}
	messages = append(messages, openai.UserMessage(pc.UserMessage))

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(s.model),
		Messages: messages,
	})
	if err != nil {
		return "", classifyCompletionError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("completion returned empty text")
	}
	return text, nil
}

func buildSystemPrompt(pc engine.PromptContext) string {
	var b strings.Builder
	if pc.Personality != "" {
		b.WriteString(pc.Personality)
	} else {
		b.WriteString("Você é um assistente de vendas educado e objetivo. Responda em português.")
	}
	if len(pc.Variables) > 0 {
		b.WriteString("\n\nDados já coletados do contato:")
		for k, v := range pc.Variables {
			b.WriteString(fmt.Sprintf("\n- %s: %s", k, v))
		}
	}
	return b.String()
}

// classifyCompletionError maps transport errors onto the engine taxonomy.
func classifyCompletionError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: completion request", engine.ErrTimeout)
	}

	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", engine.ErrUnauthorized, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", engine.ErrRateLimited, err)
		case http.StatusBadRequest:
			return fmt.Errorf("%w: %v", engine.ErrBadRequest, err)
		}
	}

	log.Printf("Unclassified completion error: %v", err)
	return err
}
