package cache

import (
	"context"
	"encoding/json"
	"time"

	"rtiassist/internal/model"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// memorySessionCache keeps sessions in process when no Redis is configured.
// Values are stored encoded so callers never share a *WizardSession.
type memorySessionCache struct {
	lru *expirable.LRU[string, []byte]
}

// NewMemorySessionCache creates an in-process session cache holding at most size sessions
func NewMemorySessionCache(size int, ttl time.Duration) SessionCache {
	if size <= 0 {
		size = 1024
	}
	return &memorySessionCache{
		lru: expirable.NewLRU[string, []byte](size, nil, ttl),
	}
}

func (c *memorySessionCache) Set(_ context.Context, session *model.WizardSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	c.lru.Add(session.ID, data)
	return nil
}

func (c *memorySessionCache) Get(_ context.Context, id string) (*model.WizardSession, error) {
	data, ok := c.lru.Get(id)
	if !ok {
		return nil, nil
	}
	var session model.WizardSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *memorySessionCache) Delete(_ context.Context, id string) error {
	c.lru.Remove(id)
	return nil
}
