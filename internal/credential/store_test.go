package credential

import (
	"context"
	"errors"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/congo-pay/pinpad/internal/config"
)

func TestKey(t *testing.T) {
	require.Equal(t, "userPhoneNumber", Key(""))
	require.Equal(t, "device-7:userPhoneNumber", Key("device-7"))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.PhoneNumber(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.SavePhoneNumber(ctx, " +15551234567 "))
	phone, err := store.PhoneNumber(ctx)
	require.NoError(t, err)
	require.Equal(t, "+15551234567", phone)

	require.Error(t, store.SavePhoneNumber(ctx, "   "))

	store.Clear()
	_, err = store.PhoneNumber(ctx)
	require.ErrorIs(t, err, ErrNotFound)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func TestRedisStoreReadsSharedKey(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	store := NewRedisStore(client, "")

	_, err := store.PhoneNumber(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	// written by the phone entry step
	require.NoError(t, mr.Set(PhoneNumberKey, "+15551234567"))
	phone, err := store.PhoneNumber(ctx)
	require.NoError(t, err)
	require.Equal(t, "+15551234567", phone)
}

func TestRedisStoreNamespaceAndBlank(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	store := NewRedisStore(client, "device-7")

	require.NoError(t, store.SavePhoneNumber(ctx, "+237650000000"))
	got, err := mr.Get("device-7:userPhoneNumber")
	require.NoError(t, err)
	require.Equal(t, "+237650000000", got)

	require.NoError(t, mr.Set("device-7:userPhoneNumber", "  "))
	_, err = store.PhoneNumber(ctx)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr, client := newRedis(t)
	store := NewRedisStore(client, "")
	mr.Close()

	_, err := store.PhoneNumber(context.Background())
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrNotFound))
}

func TestOpenMemory(t *testing.T) {
	store, closeFn, err := Open(context.Background(), config.Config{CredentialStore: config.StoreMemory})
	require.NoError(t, err)
	defer closeFn()
	require.IsType(t, &MemoryStore{}, store)
}

func TestOpenRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	store, closeFn, err := Open(context.Background(), config.Config{
		CredentialStore:     config.StoreRedis,
		RedisURL:            "redis://" + mr.Addr() + "/0",
		CredentialNamespace: "ns",
	})
	require.NoError(t, err)
	defer closeFn()

	require.NoError(t, store.SavePhoneNumber(context.Background(), "+15550000000"))
	require.True(t, mr.Exists("ns:userPhoneNumber"))
}

func TestOpenUnknown(t *testing.T) {
	_, _, err := Open(context.Background(), config.Config{CredentialStore: "sqlite"})
	require.Error(t, err)
}
