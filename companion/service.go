package companion

import (
	"errors"

	"github.com/syanytska/ai-friend/storage"
)

// Read-side surface for the HTTP layer: conversation listing, message
// history and stored facts, all scoped to the caller's identity.

func (c *Companion) Conversations(id Identity) ([]storage.Conversation, error) {
	repos, userID, err := c.caller(id)
	if err != nil {
		return nil, err
	}
	return repos.Conversation().ListByUser(userID, c.Config.ConversationListLimit)
}

func (c *Companion) NewConversation(id Identity, title string) (storage.Conversation, error) {
	repos, userID, err := c.caller(id)
	if err != nil {
		return storage.Conversation{}, err
	}
	if title == "" {
		title = defaultConversationTitle
	}
	return repos.Conversation().Create(userID, title)
}

func (c *Companion) RenameConversation(id Identity, conversationID, title string) error {
	repos, userID, err := c.caller(id)
	if err != nil {
		return err
	}
	conv, err := c.resolveConversation(repos, userID, conversationID)
	if err != nil {
		return err
	}
	return repos.Conversation().Rename(conv.ID, title)
}

// Messages returns the full ascending history of an owned conversation,
// capped by the configured listing limit.
func (c *Companion) Messages(id Identity, conversationID string) ([]storage.Message, error) {
	repos, userID, err := c.caller(id)
	if err != nil {
		return nil, err
	}
	conv, err := c.resolveConversation(repos, userID, conversationID)
	if err != nil {
		return nil, err
	}
	return repos.Message().ListAsc(conv.ID, c.Config.MessageListLimit)
}

func (c *Companion) Facts(id Identity) ([]storage.Fact, error) {
	repos, userID, err := c.caller(id)
	if err != nil {
		return nil, err
	}
	return repos.Fact().FindAll(userID)
}

func (c *Companion) caller(id Identity) (storage.Repos, int64, error) {
	if !id.valid() {
		return nil, 0, ErrUnauthenticated
	}
	repos, err := c.repos()
	if err != nil {
		return nil, 0, err
	}
	userID, err := repos.User().Ensure(id.Subject)
	if err != nil {
		return nil, 0, err
	}
	return repos, userID, nil
}

// IsNotFound reports whether err maps to the 404 side of the error taxonomy.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrConversationNotFound)
}
