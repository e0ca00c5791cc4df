package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarkflow/mebel/internal/apierror"
	"github.com/oarkflow/mebel/internal/gateway"
	"github.com/oarkflow/mebel/internal/session"
)

func count(t *testing.T, s Summary, key string) int {
	t.Helper()
	tile, ok := s.Tile(key)
	require.True(t, ok, key)
	require.True(t, tile.OK(), tile.Err)
	return tile.Count
}

func TestSummaryFromFixtures(t *testing.T) {
	svc := New(gateway.NewMockProducts(nil), gateway.NewMockUsers(nil))

	res := svc.Summary(context.Background())
	require.True(t, res.OK(), res.Err())
	s := res.Data()

	assert.Len(t, s.Tiles, 5)
	assert.Equal(t, TileProducts, s.Tiles[0].Key)
	assert.Equal(t, 14, count(t, s, TileProducts))
	assert.Equal(t, 3, count(t, s, TileLowStock))
	assert.Equal(t, 2, count(t, s, TileInactive))
	assert.Equal(t, 8, count(t, s, TileUsers))
	assert.Equal(t, 6, count(t, s, TileActiveUsers))
	assert.Zero(t, s.Failed())
}

func TestSummaryReportsFailedTiles(t *testing.T) {
	users := gateway.NewMockUsers(nil, gateway.WithSession(session.NewMemory()))
	svc := New(gateway.NewMockProducts(nil), users)

	res := svc.Summary(context.Background())
	require.True(t, res.OK())
	s := res.Data()
	assert.Equal(t, 2, s.Failed())

	tile, _ := s.Tile(TileUsers)
	assert.False(t, tile.OK())
	assert.Equal(t, apierror.MsgNoTokenList, tile.Err)
	assert.Equal(t, 14, count(t, s, TileProducts))
}

func TestSummaryFailsWhenEverythingFails(t *testing.T) {
	sess := session.NewMemory()
	svc := New(
		gateway.NewMockProducts(nil, gateway.WithSession(sess)),
		gateway.NewMockUsers(nil, gateway.WithSession(sess)),
	)
	res := svc.Summary(context.Background())
	assert.False(t, res.OK())
	assert.Contains(t, res.Err(), "Gagal memuat dashboard")
}
