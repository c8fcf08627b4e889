package valkeydb

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

type ValkeyClient struct {
	Client valkey.Client
	ttl    time.Duration
}

func New(ctx context.Context, address string, password string, ttl time.Duration) (*ValkeyClient, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{address},
		Password:    password,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create Valkey client: %w", err)
	}

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to ping Valkey: %w", err)
	}

	return &ValkeyClient{Client: client, ttl: ttl}, nil
}

func (v *ValkeyClient) Close() {
	v.Client.Close()
}

// Get returns the cached page text. A missing key is reported with ok=false and no error.
func (v *ValkeyClient) Get(ctx context.Context, key string) (string, bool, error) {

	cmd := v.Client.B().Get().Key(key).Build()

	text, err := v.Client.Do(ctx, cmd).ToString()
	if valkey.IsValkeyNil(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("unable to read cached page (%s): %w", key, err)
	}

	return text, true, nil
}

// Set stores page text, expiring after the client TTL. A non-positive TTL keeps it forever.
func (v *ValkeyClient) Set(ctx context.Context, key, text string) error {

	var err error
	if seconds := int64(v.ttl / time.Second); seconds > 0 {
		err = v.Client.Do(ctx, v.Client.B().Set().Key(key).Value(text).ExSeconds(seconds).Build()).Error()
	} else {
		err = v.Client.Do(ctx, v.Client.B().Set().Key(key).Value(text).Build()).Error()
	}

	if err != nil {
		return fmt.Errorf("unable to cache page (%s): %w", key, err)
	}

	return nil
}
