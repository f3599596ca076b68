package storage

import (
	"context"

	"github.com/xaenox/osint-chat/internal/models"
)

// Storage keeps the conversation context of session-scoped transports, keyed
// by conversation id. Loading an unknown id yields an empty context.
type Storage interface {
	LoadContext(ctx context.Context, conversationID string) (models.ConversationContext, error)
	SaveContext(ctx context.Context, conversationID string, cc models.ConversationContext) error
	DeleteContext(ctx context.Context, conversationID string) error
	Ping(ctx context.Context) error
	Close() error
}
