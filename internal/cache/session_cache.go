package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rtiassist/internal/model"

	"github.com/redis/go-redis/v9"
)

// SessionCache stores wizard sessions. Get returns (nil, nil) for unknown or expired ids.
type SessionCache interface {
	Set(ctx context.Context, session *model.WizardSession) error
	Get(ctx context.Context, id string) (*model.WizardSession, error)
	Delete(ctx context.Context, id string) error
}

type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache creates a Redis-backed session cache
func NewSessionCache(client *redis.Client, ttl time.Duration) SessionCache {
	return &sessionCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *sessionCache) key(id string) string {
	return fmt.Sprintf("rti:session:%s", id)
}

func (c *sessionCache) Set(ctx context.Context, session *model.WizardSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(session.ID), data, c.ttl).Err()
}

func (c *sessionCache) Get(ctx context.Context, id string) (*model.WizardSession, error) {
	data, err := c.client.Get(ctx, c.key(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session model.WizardSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *sessionCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}
