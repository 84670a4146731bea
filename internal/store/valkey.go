package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/johnhkchen/solar-sim/internal/exposure"
)

// ValkeyStore shares cached results between instances through Valkey.
type ValkeyStore struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
}

// NewValkeyStore connects to addr. Results expire after ttl; zero keeps them
// until evicted by the server.
func NewValkeyStore(addr string, ttl time.Duration) (*ValkeyStore, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &ValkeyStore{client: client, prefix: "solarsim", ttl: ttl}, nil
}

func (s *ValkeyStore) key(k string) string {
	return s.prefix + ":" + k
}

// Save stores result as JSON under key.
func (s *ValkeyStore) Save(ctx context.Context, key string, result exposure.SeasonalExposure) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	set := s.client.B().Set().Key(s.key(key)).Value(string(payload))
	if s.ttl > 0 {
		return s.client.Do(ctx, set.Ex(s.ttl).Build()).Error()
	}
	return s.client.Do(ctx, set.Build()).Error()
}

// Get loads the result stored under key.
func (s *ValkeyStore) Get(ctx context.Context, key string) (exposure.SeasonalExposure, error) {
	payload, err := s.client.Do(ctx, s.client.B().Get().Key(s.key(key)).Build()).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return exposure.SeasonalExposure{}, ErrNotFound
		}
		return exposure.SeasonalExposure{}, err
	}

	var result exposure.SeasonalExposure
	if err := json.Unmarshal(payload, &result); err != nil {
		return exposure.SeasonalExposure{}, fmt.Errorf("decode result: %w", err)
	}
	return result, nil
}

// Close releases the client.
func (s *ValkeyStore) Close() {
	s.client.Close()
}
