package storage

import (
	"strings"
	"time"
)

// Repos is the persistence surface consumed by the companion engine.
type Repos interface {
	User() UserRepo
	Conversation() ConversationRepo
	Message() MessageRepo
	Fact() FactRepo
}

// UserRepo keys users by an external identity string: the subject of an
// authenticated session or the id of an anonymous one. Both sides of that
// split get the same contract.
type UserRepo interface {
	// Ensure creates the user on first contact and returns the internal id.
	Ensure(externalID string) (int64, error)
	GetByExternalID(externalID string) (int64, error)
}

type Conversation struct {
	ID        int64
	UUID      string
	UserID    int64
	Title     string
	UpdatedAt time.Time
}

type ConversationRepo interface {
	Create(userID int64, title string) (Conversation, error)
	// GetByUUID resolves a public conversation id. Returns ErrNotFound on miss.
	GetByUUID(uuid string) (Conversation, error)
	// ListByUser returns conversations most recently updated first.
	ListByUser(userID int64, limit int) ([]Conversation, error)
	Rename(conversationID int64, title string) error
	// Touch bumps date_updated to drive recency ordering.
	Touch(conversationID int64) error
}

type Message struct {
	ID             int64
	UUID           string
	ConversationID int64
	Role           string
	Content        string
	CreatedAt      time.Time
}

type MessageRepo interface {
	Create(conversationID, userID int64, role, content string) (Message, error)
	// ListAsc returns up to limit messages ordered oldest first.
	ListAsc(conversationID int64, limit int) ([]Message, error)
	// ListRecent returns the most recent limit messages, still ordered
	// oldest first.
	ListRecent(conversationID int64, limit int) ([]Message, error)
}

type Fact struct {
	Key   string
	Value string
}

// FactRepo guarantees at most one fact per (user, key). Upsert overwrites
// the value on re-extraction; no history is kept.
type FactRepo interface {
	Upsert(userID int64, key, value string) error
	FindAll(userID int64) ([]Fact, error)
}

func decodeAnyTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		return parseTimeString(x)
	case []byte:
		return parseTimeString(string(x))
	default:
		return time.Time{}, false
	}
}

func parseTimeString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05", // SQLite datetime('now')
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05-07:00",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
