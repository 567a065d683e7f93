package dialog

import (
	"chatcal/app/service/store"
	"context"
)

// Generator is the generative-model collaborator.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Chat(ctx context.Context, turns []store.Turn) (string, error)
}

// Replier delivers outbound messages for a webhook event.
type Replier interface {
	Reply(ctx context.Context, replyToken string, texts ...string) error
}

// Store is the per-user conversation history.
type Store interface {
	History(ctx context.Context, userID string) ([]store.Turn, error)
	Append(ctx context.Context, userID string, turns ...store.Turn) error
	Reset(ctx context.Context, userID string) error
}
