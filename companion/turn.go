package companion

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/syanytska/ai-friend/storage"
)

const defaultConversationTitle = "New conversation"

type TurnRequest struct {
	Message string
	// ConversationID is the public conversation id; empty means a fresh
	// conversation is created for this turn.
	ConversationID string
}

type TurnResult struct {
	Reply          string
	ConversationID string
	// RuleAnswered marks replies produced by the deterministic rules. Those
	// replies are ephemeral lookups and are not persisted as turns.
	RuleAnswered bool
}

// Respond runs one full turn: validate, extract and upsert facts, persist
// the user message, then either answer from stored facts or delegate to the
// model and persist its reply.
func (c *Companion) Respond(ctx context.Context, id Identity, req TurnRequest) (TurnResult, error) {
	if strings.TrimSpace(req.Message) == "" {
		return TurnResult{}, ErrEmptyMessage
	}
	if !id.valid() {
		return TurnResult{}, ErrUnauthenticated
	}
	repos, err := c.repos()
	if err != nil {
		return TurnResult{}, err
	}

	userID, err := repos.User().Ensure(id.Subject)
	if err != nil {
		return TurnResult{}, err
	}

	var conv storage.Conversation
	if req.ConversationID == "" {
		conv, err = repos.Conversation().Create(userID, defaultConversationTitle)
	} else {
		conv, err = c.resolveConversation(repos, userID, req.ConversationID)
	}
	if err != nil {
		return TurnResult{}, err
	}

	// Facts first, each family best-effort: a failed upsert only means the
	// fact is not captured this turn.
	for _, cand := range c.extractor.Extract(req.Message) {
		if err := repos.Fact().Upsert(userID, cand.Key, cand.Value); err != nil {
			c.log.Warn("fact upsert failed",
				zap.String("key", cand.Key),
				zap.Error(err),
			)
		}
	}

	// Capture history before the current turn is persisted so it can never
	// show up twice in the assembled context.
	history, err := repos.Message().ListRecent(conv.ID, c.Config.HistoryWindow)
	if err != nil {
		c.log.Warn("history load failed", zap.Error(err))
		history = nil
	}

	if _, err := repos.Message().Create(conv.ID, userID, RoleUser, req.Message); err != nil {
		return TurnResult{}, err
	}
	c.touch(repos, conv.ID)

	facts, err := repos.Fact().FindAll(userID)
	if err != nil {
		c.log.Warn("facts load failed", zap.Error(err))
		facts = nil
	}

	if reply, ok := TryAnswer(strings.ToLower(req.Message), facts); ok {
		c.log.Debug("turn answered by rule", zap.String("conversation", conv.UUID))
		return TurnResult{Reply: reply, ConversationID: conv.UUID, RuleAnswered: true}, nil
	}

	prompts := AssembleContext(facts, history, req.Message, c.Config.HistoryWindow)
	reply, err := c.completer.Complete(ctx, c.Config.Model, prompts, c.Config.MaxTokens, c.Config.Temperature)
	if err != nil {
		// The user turn stays persisted; the failure is terminal for this
		// turn only.
		return TurnResult{ConversationID: conv.UUID}, err
	}
	if reply == "" {
		reply = "(no reply)"
	}

	if _, err := repos.Message().Create(conv.ID, userID, RoleAssistant, reply); err != nil {
		c.log.Warn("assistant message persist failed", zap.Error(err))
	}
	c.touch(repos, conv.ID)

	return TurnResult{Reply: reply, ConversationID: conv.UUID}, nil
}

// GuestRespond answers a single-turn question with no identity, no memory
// and no persistence.
func (c *Companion) GuestRespond(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}

	prompts := []Prompt{
		{Role: RoleSystem, Content: guestPrompt},
		{Role: RoleUser, Content: message},
	}
	reply, err := c.completer.Complete(ctx, c.Config.Model, prompts, c.Config.MaxTokens, 1.0)
	if err != nil {
		return "", err
	}
	if reply == "" {
		reply = "(no reply)"
	}
	return reply, nil
}

func (c *Companion) resolveConversation(repos storage.Repos, userID int64, publicID string) (storage.Conversation, error) {
	if publicID == "" {
		return storage.Conversation{}, ErrConversationNotFound
	}

	conv, err := repos.Conversation().GetByUUID(publicID)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.Conversation{}, ErrConversationNotFound
	}
	if err != nil {
		return storage.Conversation{}, err
	}
	if conv.UserID != userID {
		return storage.Conversation{}, ErrConversationNotFound
	}
	return conv, nil
}

// touch bumps the conversation's recency stamp; failures are logged and
// never abort the turn.
func (c *Companion) touch(repos storage.Repos, conversationID int64) {
	if err := repos.Conversation().Touch(conversationID); err != nil {
		c.log.Warn("conversation touch failed",
			zap.Int64("conversation_id", conversationID),
			zap.Error(err),
		)
	}
}
