package services

import (
	"context"
	"fmt"
	"strings"

	"frodi/internal/logger"
	"frodi/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Assistant answers a message on an existing remote thread.
type Assistant interface {
	Ask(ctx context.Context, threadID, message string) (string, error)
}

type ChatService struct {
	store     SessionStore
	assistant Assistant
}

func NewChatService(store SessionStore, assistant Assistant) *ChatService {
	return &ChatService{store: store, assistant: assistant}
}

// Send runs one exchange on the caller's session, creating the session when
// the id is empty or unknown.
func (s *ChatService) Send(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, &ClientInputError{Reason: ReasonEmptyMessage, Detail: "Message must not be empty."}
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	unlock, err := s.store.Lock(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("lock chat session: %w", err)
	}
	defer unlock()

	sess, err := s.store.GetOrCreate(ctx, sessionID, req.ThreadID)
	if err != nil {
		return nil, err
	}

	reply, err := s.assistant.Ask(ctx, sess.ThreadID, message)
	if err != nil {
		return nil, err
	}
	reply = RewriteCitations(reply)

	turns := []models.Turn{
		{Role: models.RoleUser, Content: message},
		{Role: models.RoleAssistant, Content: reply},
	}
	if err := s.store.Append(ctx, sessionID, turns...); err != nil {
		return nil, fmt.Errorf("append chat turns: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"sessionId": sessionID,
		"threadId":  sess.ThreadID,
		"turns":     len(sess.Transcript) + len(turns),
	}).Info("Chat exchange completed")

	return &models.ChatResponse{
		Content:   reply,
		ThreadID:  sess.ThreadID,
		SessionID: sessionID,
		History:   append(sess.Transcript, turns...),
	}, nil
}
