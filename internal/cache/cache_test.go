package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestAside(t *testing.T) {
	setupRedis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *profile) func() error {
		return func() error {
			calls++
			*dest = profile{ID: "u1", Name: "Ann"}
			return nil
		}
	}

	var first profile
	require.NoError(t, Aside(ctx, ProfileKey("u1"), &first, ProfileTTL, fetch(&first)))
	assert.Equal(t, "Ann", first.Name)

	var second profile
	require.NoError(t, Aside(ctx, ProfileKey("u1"), &second, ProfileTTL, fetch(&second)))
	assert.Equal(t, "Ann", second.Name)
	assert.Equal(t, 1, calls, "second read served from cache")

	InvalidateProfile(ctx, "u1")

	var third profile
	require.NoError(t, Aside(ctx, ProfileKey("u1"), &third, ProfileTTL, fetch(&third)))
	assert.Equal(t, 2, calls)
}

func TestAside_FetchErrorIsNotCached(t *testing.T) {
	mr := setupRedis(t)
	ctx := context.Background()

	var p profile
	err := Aside(ctx, ProfileKey("missing"), &p, ProfileTTL, func() error {
		return errors.New("not found")
	})
	assert.Error(t, err)
	assert.False(t, mr.Exists(ProfileKey("missing")))
}

func TestAside_RedisDownFallsBackToFetch(t *testing.T) {
	mr := setupRedis(t)
	mr.Close()
	ctx := context.Background()

	var p profile
	err := Aside(ctx, ProfileKey("u2"), &p, ProfileTTL, func() error {
		p = profile{ID: "u2", Name: "Bob"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Bob", p.Name)
}

func TestAside_NoClient(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	var p profile
	require.NoError(t, Aside(ctx, ProfileKey("u3"), &p, ProfileTTL, func() error {
		p.Name = "Cy"
		return nil
	}))
	assert.Equal(t, "Cy", p.Name)

	found, err := GetJSON(ctx, ProfileKey("u3"), &p)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInitRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Cleanup(func() { SetClient(nil) })

	InitRedis("redis://" + mr.Addr())
	assert.NotNil(t, GetClient())

	InitRedis("")
	assert.Nil(t, GetClient())

	InitRedis("redis://%zz")
	assert.Nil(t, GetClient())
}
