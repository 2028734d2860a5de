package companion

import (
	"os"
)

type StorageConfig struct {
	Dialect string
}

type Config struct {
	// Model collaborator settings.
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64

	// HistoryWindow bounds how many prior messages are carried into the
	// assembled context; the current turn is appended on top of it.
	HistoryWindow int

	ConversationListLimit int
	MessageListLimit      int

	Storage StorageConfig
}

func newConfig() *Config {
	return &Config{
		APIKey:                os.Getenv("GROQ_API_KEY"),
		BaseURL:               os.Getenv("GROQ_BASE_URL"),
		Model:                 "llama-3.1-8b-instant",
		MaxTokens:             256,
		Temperature:           0.7,
		HistoryWindow:         19,
		ConversationListLimit: 100,
		MessageListLimit:      500,
	}
}
