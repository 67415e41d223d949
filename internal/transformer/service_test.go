package transformer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apresai/personaswap/internal/embellish"
	"github.com/apresai/personaswap/internal/history"
	"github.com/apresai/personaswap/internal/persona"
)

func newService(store history.Store) *Service {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return New(persona.Default(embellish.Fixed{}), store, logger)
}

func TestListPersonas(t *testing.T) {
	infos := newService(nil).ListPersonas()
	require.Len(t, infos, 4)
	assert.Equal(t, "Shakespeare", infos[0].Name)
}

func TestTransform(t *testing.T) {
	store := history.NewMemory(100)
	svc := newService(store)

	res, err := svc.Transform(context.Background(), "I am going to the store.", "Master Yoda")
	require.NoError(t, err)
	assert.Equal(t, "I am going to the store.", res.Original)
	assert.Equal(t, "Going to the store, I am.", res.Transformed)
	assert.Equal(t, "Yoda", res.Persona)

	recs, err := svc.History(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, res.Transformed, recs[0].TransformedMessage)
	assert.Equal(t, "Yoda", recs[0].Persona)
}

func TestTransformValidation(t *testing.T) {
	svc := newService(nil)

	_, err := svc.Transform(context.Background(), "  ", "yoda")
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Message is required", err.Error())

	_, err = svc.Transform(context.Background(), "hello", "")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "persona", verr.Field)
	assert.Equal(t, "Persona is required", verr.Message)
}

func TestTransformUnknownPersona(t *testing.T) {
	store := history.NewMemory(10)
	_, err := newService(store).Transform(context.Background(), "hello", "napoleon")
	require.ErrorIs(t, err, persona.ErrNotFound)
	assert.Contains(t, err.Error(), "napoleon")
	assert.Equal(t, 0, store.Len())
}

type failingStore struct{ history.Memory }

func (f *failingStore) Add(context.Context, history.Record) error { return errors.New("disk full") }

func (f *failingStore) Recent(context.Context, int) ([]history.Record, error) {
	return nil, errors.New("disk full")
}

func TestHistoryFailures(t *testing.T) {
	svc := newService(&failingStore{})

	res, err := svc.Transform(context.Background(), "hello friend", "bard")
	require.NoError(t, err, "history write failure must not fail the transform")
	assert.NotEmpty(t, res.Transformed)

	_, err = svc.History(context.Background(), 5)
	assert.ErrorContains(t, err, "disk full")
}

func TestHistoryWithoutStore(t *testing.T) {
	recs, err := newService(nil).History(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
