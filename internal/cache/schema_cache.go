package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"ideagauge/internal/model"
)

const schemaTTL = 30 * time.Minute

// SchemaCache keeps the current schema per conversation hot in redis so a
// turn does not need a mongo round trip. Best-effort: callers treat misses
// and errors identically.
type SchemaCache interface {
	Set(ctx context.Context, conversationID string, s model.Schema) error
	Get(ctx context.Context, conversationID string) (*model.Schema, error)
	Delete(ctx context.Context, conversationID string) error
}

type schemaCache struct {
	client *redis.Client
}

func NewSchemaCache(client *redis.Client) SchemaCache {
	return &schemaCache{client: client}
}

func schemaKey(conversationID string) string {
	return "schema:" + conversationID
}

func (c *schemaCache) Set(ctx context.Context, conversationID string, s model.Schema) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, schemaKey(conversationID), data, schemaTTL).Err()
}

func (c *schemaCache) Get(ctx context.Context, conversationID string) (*model.Schema, error) {
	data, err := c.client.Get(ctx, schemaKey(conversationID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var s model.Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *schemaCache) Delete(ctx context.Context, conversationID string) error {
	return c.client.Del(ctx, schemaKey(conversationID)).Err()
}
