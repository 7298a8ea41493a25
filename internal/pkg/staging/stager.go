// Package staging holds a librarian's decoded borrowing selection
// between the selection request and the confirmation request.
//
// Each staged selection lives in redis under a one-time confirmation
// token with a bounded TTL. Consuming a token removes it, so a repeated
// confirmation cannot re-apply the same selection.
package staging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/chidi/libman/internal/pkg/borrowform"
)

// ErrNoStagedSelection is returned when the token is unknown, expired
// or already consumed.
var ErrNoStagedSelection = errors.New("no staged selection")

const keyPrefix = "borrow:staged:"

// StagedSelection is the typed record held between the two requests.
type StagedSelection struct {
	Selections []borrowform.Selection `json:"selections"`
	StagedBy   int64                  `json:"stagedBy"`
	StagedAt   time.Time              `json:"stagedAt"`
}

// Stager stores staged selections in redis.
type Stager struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStager creates a stager with the given selection TTL.
func NewStager(client *redis.Client, ttl time.Duration) *Stager {
	return &Stager{client: client, ttl: ttl}
}

// Stage serializes the selection and stores it under a fresh
// confirmation token, returning the token.
func (s *Stager) Stage(ctx context.Context, staged StagedSelection) (string, error) {
	payload, err := json.Marshal(staged)
	if err != nil {
		return "", fmt.Errorf("failed to marshal staged selection: %w", err)
	}

	token := uuid.New().String()
	if err := s.client.Set(ctx, keyPrefix+token, payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store staged selection: %w", err)
	}

	return token, nil
}

// Consume retrieves and deletes the staged selection for token in one
// step. A second call with the same token fails with ErrNoStagedSelection.
func (s *Stager) Consume(ctx context.Context, token string) (*StagedSelection, error) {
	payload, err := s.client.GetDel(ctx, keyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoStagedSelection
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve staged selection: %w", err)
	}

	var staged StagedSelection
	if err := json.Unmarshal(payload, &staged); err != nil {
		return nil, fmt.Errorf("failed to unmarshal staged selection: %w", err)
	}

	return &staged, nil
}

// Peek returns the staged selection without consuming it, so the
// preview can be re-rendered; the commit path uses Consume.
func (s *Stager) Peek(ctx context.Context, token string) (*StagedSelection, error) {
	payload, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoStagedSelection
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve staged selection: %w", err)
	}

	var staged StagedSelection
	if err := json.Unmarshal(payload, &staged); err != nil {
		return nil, fmt.Errorf("failed to unmarshal staged selection: %w", err)
	}

	return &staged, nil
}
