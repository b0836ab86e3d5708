package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"frodi/internal/config"
	"frodi/internal/logger"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// memoPersona is sent verbatim, spelling included.
const memoPersona = "Notendinn sendi þér minnisblað, farðu mjög varlega yfir það og\n" +
	"    finndu dæmi um önnur minnisblöð, \n" +
	"    gefðu þér tíma að skoa Íslenskt málfar og stafsetningu."

const defaultRunPollInterval = 500 * time.Millisecond

// Thread is the remote conversation created for a chat session.
type Thread struct {
	ID string `json:"id"`
}

type OpenAIService struct {
	client       *openai.Client
	model        string
	assistantID  string
	instructions string
	pollInterval time.Duration
}

func NewOpenAIService(cfg config.OpenAIConfig) *OpenAIService {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &OpenAIService{
		client:       openai.NewClientWithConfig(clientCfg),
		model:        cfg.Model,
		assistantID:  cfg.AssistantID,
		instructions: cfg.AssistantInstructions,
		pollInterval: defaultRunPollInterval,
	}
}

// Complete sends text as the only user turn and returns the schema-constrained
// JSON object the model produced. It makes exactly one request.
func (s *OpenAIService) Complete(ctx context.Context, text string, format ResponseFormat) (json.RawMessage, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: memoPersona},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 1,
		MaxTokens:   4000,
		TopP:        1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   format.Name,
				Schema: format.Schema,
				Strict: format.Strict,
			},
		},
	})
	if err != nil {
		return nil, &GatewayError{Op: "chat completion", Err: err}
	}

	if len(resp.Choices) == 0 {
		return nil, &GatewayError{Op: "chat completion", Err: errors.New("no choices in response")}
	}

	choice := resp.Choices[0]
	if choice.FinishReason != openai.FinishReasonStop {
		return nil, &GatewayError{
			Op:  "chat completion",
			Err: fmt.Errorf("finish reason %q", choice.FinishReason),
		}
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(choice.Message.Content), &probe); err != nil {
		return nil, &GatewayError{Op: "decode completion", Err: err}
	}

	logger.WithFields(logrus.Fields{
		"model":            s.model,
		"schema":           format.Name,
		"promptTokens":     resp.Usage.PromptTokens,
		"completionTokens": resp.Usage.CompletionTokens,
	}).Info("Completion received")

	return json.RawMessage(choice.Message.Content), nil
}

// CreateThread opens a new assistant thread.
func (s *OpenAIService) CreateThread(ctx context.Context) (Thread, error) {
	thread, err := s.client.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return Thread{}, &GatewayError{Op: "create thread", Err: err}
	}
	return Thread{ID: thread.ID}, nil
}

// Ask posts message to the thread, runs the configured assistant to
// completion and returns its newest reply.
func (s *OpenAIService) Ask(ctx context.Context, threadID, message string) (string, error) {
	if s.assistantID == "" {
		return "", &GatewayError{Op: "run assistant", Err: errors.New("OPENAI_ASSISTANT_ID not configured")}
	}

	_, err := s.client.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})
	if err != nil {
		return "", &GatewayError{Op: "create message", Err: err}
	}

	run, err := s.client.CreateRun(ctx, threadID, openai.RunRequest{
		AssistantID:  s.assistantID,
		Instructions: s.instructions,
	})
	if err != nil {
		return "", &GatewayError{Op: "create run", Err: err}
	}

	run, err = s.waitForRun(ctx, threadID, run)
	if err != nil {
		return "", err
	}
	if run.Status != openai.RunStatusCompleted {
		return "", &GatewayError{Op: "run assistant", Err: fmt.Errorf("run ended with status %q", run.Status)}
	}

	limit := 1
	order := "desc"
	list, err := s.client.ListMessage(ctx, threadID, &limit, &order, nil, nil, &run.ID)
	if err != nil {
		return "", &GatewayError{Op: "list messages", Err: err}
	}
	for _, msg := range list.Messages {
		for _, content := range msg.Content {
			if content.Text != nil {
				return content.Text.Value, nil
			}
		}
	}

	return "", &GatewayError{Op: "list messages", Err: errors.New("assistant returned no text")}
}

func (s *OpenAIService) waitForRun(ctx context.Context, threadID string, run openai.Run) (openai.Run, error) {
	for isRunPending(run.Status) {
		select {
		case <-ctx.Done():
			return run, &GatewayError{Op: "poll run", Err: ctx.Err()}
		case <-time.After(s.pollInterval):
		}

		var err error
		run, err = s.client.RetrieveRun(ctx, threadID, run.ID)
		if err != nil {
			return run, &GatewayError{Op: "poll run", Err: err}
		}
	}
	return run, nil
}

func isRunPending(status openai.RunStatus) bool {
	switch status {
	case openai.RunStatusQueued, openai.RunStatusInProgress, openai.RunStatusCancelling:
		return true
	}
	return false
}
