package main

import (
	"context"

	"resourcebot/internal/model"
)

// Type aliases to internal model package
type Resource = model.Resource

// ResourceStore is the persistence surface the commands run against.
type ResourceStore interface {
	Create(ctx context.Context, r Resource) (int64, error)
	Update(ctx context.Context, r Resource) error
	Delete(ctx context.Context, id int64) error
	FindBySubstring(ctx context.Context, fragment string) ([]Resource, error)
	ListAll(ctx context.Context) ([]Resource, error)
	Count(ctx context.Context) (int, error)
}

// Inbound is one chat message as delivered by a transport.
type Inbound struct {
	SenderID int64
	ChatID   int64
	HasChat  bool // false in console mode: replies go to the local sink
	Text     string
}
