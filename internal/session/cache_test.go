package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSession struct{ id int }

func (s *stubSession) Predict(ctx context.Context, endpoint string, args map[string]any) (any, error) {
	return nil, nil
}

type countingConnector struct {
	calls []string
	err   error
}

func (c *countingConnector) Connect(ctx context.Context, endpointURL string) (Session, error) {
	c.calls = append(c.calls, endpointURL)
	if c.err != nil {
		return nil, c.err
	}
	return &stubSession{id: len(c.calls)}, nil
}

func TestCache_ReusesHeldSession(t *testing.T) {
	conn := &countingConnector{}
	c := NewCache(conn)
	ctx := context.Background()

	first, err := c.Get(ctx, "owner/space")
	require.NoError(t, err)
	second, err := c.Get(ctx, "owner/space")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Len(t, conn.calls, 1)
	assert.True(t, c.Held())
}

func TestCache_InvalidateForcesReconnect(t *testing.T) {
	conn := &countingConnector{}
	c := NewCache(conn)
	ctx := context.Background()

	first, err := c.Get(ctx, "owner/space")
	require.NoError(t, err)

	c.Invalidate()
	assert.False(t, c.Held())

	second, err := c.Get(ctx, "owner/space")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Len(t, conn.calls, 2)
}

func TestCache_EstablishmentFailureLeavesEmpty(t *testing.T) {
	conn := &countingConnector{err: errors.New("connection refused")}
	c := NewCache(conn)

	s, err := c.Get(context.Background(), "owner/space")

	assert.Nil(t, s)
	assert.EqualError(t, err, "connection refused")
	assert.False(t, c.Held())
}

func TestCache_NewEndpointReplacesSession(t *testing.T) {
	conn := &countingConnector{}
	c := NewCache(conn)
	ctx := context.Background()

	_, err := c.Get(ctx, "owner/a")
	require.NoError(t, err)
	_, err = c.Get(ctx, "owner/b")
	require.NoError(t, err)

	assert.Equal(t, []string{"owner/a", "owner/b"}, conn.calls)
}

func TestCache_InvalidateEmptyIsNoop(t *testing.T) {
	c := NewCache(&countingConnector{})
	c.Invalidate()
	assert.False(t, c.Held())
}
