package data

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movedao/dao-node/pkg/errors"
	"github.com/movedao/dao-node/pkg/model"
)

func newTestStore(t *testing.T) Store {
	tearDown := Init(filepath.Join(t.TempDir(), "dao-node-test.db"))
	t.Cleanup(tearDown)
	return DefaultStore()
}

func TestSaveAndGetOrganization(t *testing.T) {
	store := newTestStore(t)

	org := model.Organization{
		ID:      "0xorg",
		Name:    "engineering",
		Members: []string{"0xa", "0xb"},
		Proposals: []model.Proposal{
			{ID: "0xp1", Title: "t", YesVotes: 5, NoVotes: 2},
		},
	}
	require.NoError(t, store.SaveOrganization(org))

	got, err := store.GetOrganization("0xorg")
	require.NoError(t, err)
	assert.Equal(t, org, got)
}

func TestSaveReplacesSnapshot(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveOrganization(model.Organization{ID: "0xorg", Name: "old"}))
	require.NoError(t, store.SaveOrganization(model.Organization{ID: "0xorg", Name: "new"}))

	got, err := store.GetOrganization("0xorg")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Name)

	orgs, err := store.ListOrganizations()
	require.NoError(t, err)
	assert.Len(t, orgs, 1)
}

func TestGetMissingOrganization(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetOrganization("0xmissing")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestListEmpty(t *testing.T) {
	store := newTestStore(t)

	orgs, err := store.ListOrganizations()
	require.NoError(t, err)
	assert.Empty(t, orgs)
}
