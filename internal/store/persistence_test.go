package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-hierarchy/internal/hierarchy"
	"property-hierarchy/internal/storage/block"
)

func newLocalPersister(t *testing.T) *JSONSnapshots {
	t.Helper()
	storage, err := block.NewLocalFS(block.Config{Type: "local", BaseDir: t.TempDir()})
	require.NoError(t, err)
	return NewJSONSnapshots(storage, "nodes.json")
}

func TestJSONSnapshots_LoadMissing(t *testing.T) {
	p := newLocalPersister(t)

	_, found, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestJSONSnapshots_RoundTrip(t *testing.T) {
	p := newLocalPersister(t)
	ctx := context.Background()

	movedIn := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	nodes := []*hierarchy.Node{
		testNode("c1", hierarchy.TypeCorporation, "", hierarchy.CorporationAttributes{}),
		testNode("b1", hierarchy.TypeBuilding, "c1", hierarchy.BuildingAttributes{ZipCode: "12345"}),
		testNode("p1", hierarchy.TypeProperty, "b1", hierarchy.PropertyAttributes{MonthlyRent: 1200}),
		testNode("tp1", hierarchy.TypeTenancyPeriod, "p1", hierarchy.TenancyPeriodAttributes{Active: true}),
		testNode("t1", hierarchy.TypeTenant, "tp1", hierarchy.TenantAttributes{MovedInAt: movedIn}),
	}

	records := make([]Record, 0, len(nodes))
	for _, n := range nodes {
		records = append(records, RecordFromNode(n))
	}
	require.NoError(t, p.Save(ctx, records))

	loaded, found, err := p.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, loaded, len(nodes))

	byID := make(map[string]Record, len(loaded))
	for _, r := range loaded {
		byID[r.ID] = r
	}

	b, err := byID["b1"].Node()
	require.NoError(t, err)
	assert.Equal(t, hierarchy.BuildingAttributes{ZipCode: "12345"}, b.Attributes)

	tenant, err := byID["t1"].Node()
	require.NoError(t, err)
	assert.Equal(t, hierarchy.TenantAttributes{MovedInAt: movedIn}, tenant.Attributes)
}

func TestMemoryStore_PersistsAndReloads(t *testing.T) {
	storage, err := block.NewLocalFS(block.Config{Type: "local", BaseDir: t.TempDir()})
	require.NoError(t, err)
	persister := NewJSONSnapshots(storage, "nodes.json")
	ctx := context.Background()

	s := NewMemoryStore(persister)
	require.NoError(t, s.Load(ctx))
	insertNode(t, s, testNode("c1", hierarchy.TypeCorporation, "", hierarchy.CorporationAttributes{}))
	insertNode(t, s, testNode("b1", hierarchy.TypeBuilding, "c1", hierarchy.BuildingAttributes{ZipCode: "99999"}))

	// A fresh store over the same backend sees the committed state.
	reloaded := NewMemoryStore(persister)
	require.NoError(t, reloaded.Load(ctx))

	got, ok := reloaded.FindByID("b1")
	require.True(t, ok)
	assert.Equal(t, "c1", got.ParentID)
	assert.Equal(t, hierarchy.BuildingAttributes{ZipCode: "99999"}, got.Attributes)
}

func TestRecord_RejectsMismatchedAttributes(t *testing.T) {
	r := Record{ID: "b1", Name: "Building", Type: "Building"}
	_, err := r.Node()
	assert.Error(t, err, "building record without zip_code must not load")

	r = Record{ID: "x1", Name: "X", Type: "Warehouse"}
	_, err = r.Node()
	assert.Error(t, err)
}
