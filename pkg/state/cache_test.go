package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movedao/dao-node/pkg/model"
)

type recordingSnapshotter struct {
	saved []string
}

func (r *recordingSnapshotter) SaveOrganization(org model.Organization) error {
	r.saved = append(r.saved, org.ID)
	return nil
}

func TestUpsertReplacesWhole(t *testing.T) {
	cache := NewCache()
	cache.Upsert(model.Organization{
		ID:      "0x1",
		Name:    "old",
		Members: []string{"0xa", "0xb"},
		Proposals: []model.Proposal{
			{ID: "0xp1", YesVotes: 5},
		},
	})

	cache.Upsert(model.Organization{
		ID:      "0x1",
		Name:    "new",
		Members: []string{"0xc"},
	})

	got, ok := cache.Get("0x1")
	require.True(t, ok)
	assert.Equal(t, "new", got.Name)
	assert.Equal(t, []string{"0xc"}, got.Members)
	// replace, not merge: nothing of the old entry survives
	assert.Nil(t, got.Proposals)
	assert.Equal(t, 1, cache.Len())
}

func TestAllKeepsInsertionOrder(t *testing.T) {
	cache := NewCache()
	cache.Upsert(model.Organization{ID: "0x3"})
	cache.Upsert(model.Organization{ID: "0x1"})
	cache.Upsert(model.Organization{ID: "0x2"})
	// replacing does not move the entry
	cache.Upsert(model.Organization{ID: "0x3", Name: "updated"})

	all := cache.All()
	require.Len(t, all, 3)
	assert.Equal(t, "0x3", all[0].ID)
	assert.Equal(t, "updated", all[0].Name)
	assert.Equal(t, "0x1", all[1].ID)
	assert.Equal(t, "0x2", all[2].ID)
}

func TestGetAbsent(t *testing.T) {
	_, ok := NewCache().Get("0xmissing")
	assert.False(t, ok)
}

func TestSnapshotterMirrorsUpserts(t *testing.T) {
	snap := &recordingSnapshotter{}
	cache := NewCache().WithSnapshotter(snap)

	cache.Upsert(model.Organization{ID: "0x1"})
	cache.Upsert(model.Organization{ID: "0x2"})
	cache.Upsert(model.Organization{ID: "0x1"})

	assert.Equal(t, []string{"0x1", "0x2", "0x1"}, snap.saved)
}
