package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func unreachableClient() *ValkeyClient {
	return NewValkeyClientFromRedis(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	}))
}

func TestUnreachableValkeyReturnsErrors(t *testing.T) {
	client := unreachableClient()
	defer client.Close()
	ctx := context.Background()

	var dest []string
	hit, err := client.GetJSON(ctx, "events:list", &dest)
	assert.Error(t, err)
	assert.False(t, hit)

	assert.Error(t, client.SetJSON(ctx, "events:list", []string{"a"}, time.Minute))

	_, err = client.Allow(ctx, "1.2.3.4", 10, time.Minute)
	assert.Error(t, err)
}

func TestNewValkeyClientFailsFast(t *testing.T) {
	_, err := NewValkeyClient(Config{Addr: "127.0.0.1:1"})
	assert.ErrorContains(t, err, "failed to connect to Valkey")
}
