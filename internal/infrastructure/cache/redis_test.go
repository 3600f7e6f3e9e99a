package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisFromURL(t *testing.T) {
	mr := miniredis.RunT(t)

	t.Run("url form", func(t *testing.T) {
		rdb, err := NewRedisFromURL(context.Background(), "redis://"+mr.Addr()+"/0")
		require.NoError(t, err)
		defer Close(rdb)
		assert.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
	})

	t.Run("bare address", func(t *testing.T) {
		rdb, err := NewRedisFromURL(context.Background(), mr.Addr())
		require.NoError(t, err)
		Close(rdb)
	})

	t.Run("bad database number", func(t *testing.T) {
		_, err := NewRedisFromURL(context.Background(), "redis://localhost:6379/not-a-db")
		assert.Error(t, err)
	})
}
