package cache

import (
	"context"
	"testing"
	"time"

	"school-assist-be/pkg/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *SessionRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, NewSessionRepository(rdb, ttl)
}

func TestSessionRepository_RoundTrip(t *testing.T) {
	_, repo := newTestRepository(t, time.Hour)
	ctx := context.Background()

	sess := store.NewSession("s1")
	sess.Language = "kannada"
	sess.Slots["student_name"] = "Ravi Kumar"
	sess.ActiveFlow = "admission"
	sess.EmailFlow = store.EmailFlowAwaitingConfirmation
	sess.PendingEmail = "parent@example.com"
	sess.LastGroundingPayload = "Name: GHPS Jayanagar"
	sess.Voices["kn-IN"] = "kn-IN-SapnaNeural"
	require.NoError(t, repo.Save(ctx, sess))

	got, found, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "kannada", got.Language)
	assert.Equal(t, map[string]string{"student_name": "Ravi Kumar"}, got.Slots)
	assert.Equal(t, store.EmailFlowAwaitingConfirmation, got.EmailFlow)
	assert.Equal(t, "parent@example.com", got.PendingEmail)
	assert.Equal(t, "Name: GHPS Jayanagar", got.LastGroundingPayload)
	assert.Equal(t, "kn-IN-SapnaNeural", got.Voices["kn-IN"])
}

func TestSessionRepository_NilMapsAndMissingFlowDecode(t *testing.T) {
	mr, repo := newTestRepository(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, mr.Set(sessionKey("legacy"), `{"id":"legacy","language":"english","slots":null,"voices":null}`))

	got, found, err := repo.Get(ctx, "legacy")
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, got.Slots)
	require.NotNil(t, got.Voices)
	assert.Equal(t, store.EmailFlowNone, got.EmailFlow)

	got.Slots["phone"] = "9876543210"
	assert.Equal(t, []string{"address"}, got.MissingFields([]string{"phone", "address"}))
}

func TestSessionRepository_SlidingTTL(t *testing.T) {
	mr, repo := newTestRepository(t, time.Minute)
	ctx := context.Background()

	sess := store.NewSession("s1")
	require.NoError(t, repo.Save(ctx, sess))
	assert.Equal(t, time.Minute, mr.TTL(sessionKey("s1")))

	mr.FastForward(40 * time.Second)
	require.NoError(t, repo.Save(ctx, sess))
	assert.Equal(t, time.Minute, mr.TTL(sessionKey("s1")))

	mr.FastForward(61 * time.Second)
	_, found, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSessionRepository_Delete(t *testing.T) {
	_, repo := newTestRepository(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, store.NewSession("s1")))
	require.NoError(t, repo.Delete(ctx, "s1"))

	_, found, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSessionRepository_GetCorruptPayload(t *testing.T) {
	mr, repo := newTestRepository(t, time.Hour)
	require.NoError(t, mr.Set(sessionKey("bad"), "not json"))

	_, _, err := repo.Get(context.Background(), "bad")
	assert.Error(t, err)
}
