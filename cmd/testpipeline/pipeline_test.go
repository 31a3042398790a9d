package testpipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests expect a running starlight server on 127.0.0.1:6380.

func TestPipelining(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     "127.0.0.1:6380",
		Protocol: 2,
	})
	defer rdb.Close()

	ctx := context.Background()

	count := 10_000
	pipe := rdb.Pipeline()

	for i := 0; i < count; i++ {
		key := fmt.Sprintf("pipe_key_%d", i)
		val := fmt.Sprintf("val_%d", i)
		pipe.Set(ctx, key, val, 0)
	}

	getResults := make([]*redis.StringCmd, count)
	for i := 0; i < count; i++ {
		key := fmt.Sprintf("pipe_key_%d", i)
		getResults[i] = pipe.Get(ctx, key)
	}

	start := time.Now()
	_, err := pipe.Exec(ctx)
	elapsed := time.Since(start)

	assert.NoError(t, err, "Pipeline execution failed")
	fmt.Printf("Pipeline executed in %v\n", elapsed)

	for i := 0; i < count; i++ {
		expected := fmt.Sprintf("val_%d", i)
		val, err := getResults[i].Result()

		assert.NoError(t, err)
		assert.Equal(t, expected, val, "Key %d mismatch", i)
	}
}

// TestProtocol3 drives the server through go-redis's RESP3 mode, which
// issues HELLO 3 on connect and reads the map-typed reply.
func TestProtocol3(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     "127.0.0.1:6380",
		Protocol: 3,
	})
	defer rdb.Close()

	ctx := context.Background()

	pong, err := rdb.Ping(ctx).Result()
	require.NoError(t, err)
	assert.Equal(t, "PONG", pong)

	require.NoError(t, rdb.Set(ctx, "proto3_key", "proto3_val", 0).Err())

	val, err := rdb.Get(ctx, "proto3_key").Result()
	require.NoError(t, err)
	assert.Equal(t, "proto3_val", val)

	_, err = rdb.Get(ctx, "proto3_missing").Result()
	assert.ErrorIs(t, err, redis.Nil)

	echoed, err := rdb.Echo(ctx, "starlight").Result()
	require.NoError(t, err)
	assert.Equal(t, "starlight", echoed)
}
