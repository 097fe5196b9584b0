package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptbxl-annotator/common/config"
)

func setupTestRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	client := NewRedisClient(&config.RedisConfig{Addr: mr.Addr()})
	t.Cleanup(func() { _ = Close(client) })
	return client
}

func TestPublishToStream_StringifiesValues(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, Ping(ctx, client))

	_, err := PublishToStream(ctx, client, "test:stream", map[string]interface{}{
		"s":     "text",
		"b":     []byte("bytes"),
		"i":     7,
		"i64":   int64(8),
		"f":     0.5,
		"ok":    true,
		"codes": []string{"NORM", "SR"},
	})
	require.NoError(t, err)

	msgs, err := ReadRange(ctx, client, "test:stream")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	v := msgs[0].Values
	assert.Equal(t, "text", v["s"])
	assert.Equal(t, "bytes", v["b"])
	assert.Equal(t, "7", v["i"])
	assert.Equal(t, "8", v["i64"])
	assert.Equal(t, "0.5", v["f"])
	assert.Equal(t, "true", v["ok"])
	assert.Equal(t, `["NORM","SR"]`, v["codes"])
}
