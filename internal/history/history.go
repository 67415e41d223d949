// Package history keeps a bounded log of completed transformations, newest
// first. Backends: an in-process ring, a Redis list and a DynamoDB slot ring.
package history

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultLimit is used when a caller asks for a non-positive number of
// records.
const DefaultLimit = 10

// Record is one completed transformation.
type Record struct {
	ID                 string    `json:"id" dynamodbav:"id"`
	Timestamp          time.Time `json:"timestamp" dynamodbav:"timestamp"`
	OriginalMessage    string    `json:"originalMessage" dynamodbav:"originalMessage"`
	TransformedMessage string    `json:"transformedMessage" dynamodbav:"transformedMessage"`
	Persona            string    `json:"persona" dynamodbav:"persona"`
}

// Store is a capacity-bounded FIFO of records. Implementations are safe for
// concurrent use.
type Store interface {
	// Add appends r, evicting the oldest record once capacity is reached.
	Add(ctx context.Context, r Record) error
	// Recent returns up to limit records, most recent first.
	Recent(ctx context.Context, limit int) ([]Record, error)
	Close() error
}

// NewRecord stamps a record with a ULID and the current UTC time.
func NewRecord(original, transformed, persona string) (Record, error) {
	now := time.Now().UTC()
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return Record{}, fmt.Errorf("generate ulid: %w", err)
	}
	return Record{
		ID:                 id.String(),
		Timestamp:          now,
		OriginalMessage:    original,
		TransformedMessage: transformed,
		Persona:            persona,
	}, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}
