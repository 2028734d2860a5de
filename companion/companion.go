// Package companion implements the conversation memory and deterministic
// answer engine behind the ai-friend assistant: it extracts short facts from
// user messages, persists them with overwrite semantics, answers direct
// factual questions without a model call, and otherwise assembles a bounded
// context window and delegates to an OpenAI-compatible chat model.
package companion

import (
	"go.uber.org/zap"

	"github.com/syanytska/ai-friend/storage"
)

type Companion struct {
	Config *Config

	Storage *storage.Manager

	log       *zap.Logger
	extractor *Extractor
	completer Completer

	// startErr holds a storage start failure until the first call that
	// needs repos, where it surfaces instead of a bare ErrNoStorage.
	startErr error
}

type Option func(*Companion)

func New(opts ...Option) *Companion {
	c := &Companion{
		Config: newConfig(),
		log:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	// Defaults
	if c.Storage == nil {
		c.Storage = storage.NewManager()
	}
	if c.extractor == nil {
		c.extractor = NewExtractor(c.log)
	}
	if c.completer == nil {
		c.completer = NewGroqClient(GroqOptions{
			BaseURL: c.Config.BaseURL,
			APIKey:  c.Config.APIKey,
		})
	}
	return c
}

func WithStorageConn(conn any) Option {
	return func(c *Companion) {
		c.Storage = storage.NewManager()
		c.startErr = c.Storage.Start(conn)
		c.Config.Storage.Dialect = c.Storage.Dialect()
	}
}

// repos returns the active repo set, or the reason none is available.
func (c *Companion) repos() (storage.Repos, error) {
	if c.startErr != nil {
		return nil, c.startErr
	}
	repos := c.Storage.Repos()
	if repos == nil {
		return nil, ErrNoStorage
	}
	return repos, nil
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Companion) {
		if log != nil {
			c.log = log
		}
	}
}

// WithCompleter replaces the model collaborator. Tests use this to count
// invocations or force upstream failures.
func WithCompleter(completer Completer) Option {
	return func(c *Companion) {
		c.completer = completer
	}
}
