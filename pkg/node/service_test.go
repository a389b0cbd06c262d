package node

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movedao/dao-node/pkg/config"
	"github.com/movedao/dao-node/pkg/errors"
	"github.com/movedao/dao-node/pkg/model"
)

type fakeAPI struct {
	mu          sync.Mutex
	objects     map[string]model.Object
	tables      map[string][]string
	objectReads map[string]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		objects:     make(map[string]model.Object),
		tables:      make(map[string][]string),
		objectReads: make(map[string]int),
	}
}

func (f *fakeAPI) GetObject(ctx context.Context, id string) (model.Object, error) {
	f.mu.Lock()
	f.objectReads[id]++
	obj, ok := f.objects[id]
	f.mu.Unlock()
	if !ok {
		return model.Object{}, fmt.Errorf("object %s: %w", id, errors.ErrNotFound)
	}
	return obj, nil
}

func (f *fakeAPI) GetObjects(ctx context.Context, ids []string) ([]model.ObjectResult, error) {
	results := make([]model.ObjectResult, len(ids))
	for i, id := range ids {
		obj, err := f.GetObject(ctx, id)
		results[i] = model.ObjectResult{Object: obj, Err: err}
	}
	return results, nil
}

func (f *fakeAPI) ListTableKeys(ctx context.Context, tableID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tables[tableID], nil
}

func (f *fakeAPI) GetOwnedObjects(ctx context.Context, owner string) ([]model.Object, error) {
	return nil, nil
}

func (f *fakeAPI) reads(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.objectReads[id]
}

func moveObject(id, typeTag string, fields interface{}) model.Object {
	raw, err := json.Marshal(fields)
	if err != nil {
		panic(err)
	}
	return model.Object{
		ObjectID: id,
		Version:  "1",
		Content:  &model.Content{DataType: "moveObject", Type: typeTag, Fields: raw},
	}
}

func tableRef(tableID string) map[string]interface{} {
	return map[string]interface{}{
		"type":   "0x2::table::Table",
		"fields": map[string]interface{}{"id": map[string]string{"id": tableID}, "size": "0"},
	}
}

func registryObject(orgIDs []string) model.Object {
	return moveObject("0xregistry", "0xpkg::dao::DaoList", map[string]interface{}{
		"dao_list": orgIDs,
	})
}

func orgObject(id string) model.Object {
	return moveObject(id, "0xpkg::dao::DAO", map[string]interface{}{
		"id":          map[string]string{"id": id},
		"name":        "name-" + id,
		"description": "desc-" + id,
		"admins":      tableRef(id + "-admins"),
		"members":     tableRef(id + "-members"),
		"proposals":   tableRef(id + "-proposals"),
	})
}

func proposalObject(id, votersTable string, yes uint64) model.Object {
	return moveObject(id, "0xpkg::proposal::Proposal", map[string]interface{}{
		"id":          map[string]string{"id": id},
		"title":       "title-" + id,
		"description": "desc-" + id,
		"creator":     "0xcreator",
		"yes_votes":   fmt.Sprintf("%d", yes),
		"no_votes":    "2",
		"deadline":    "1700000000000",
		"is_closed":   false,
		"voters":      tableRef(votersTable),
	})
}

func testConfig() config.Config {
	return config.Config{
		RegistryID:         "0xregistry",
		PackageID:          "0xpkg",
		LowercaseAddresses: true,
	}
}

func newTestService(api *fakeAPI) *Service {
	return NewService(testConfig(), api, nil)
}

func TestBootstrapPopulatesCache(t *testing.T) {
	api := newFakeAPI()
	api.objects["0xregistry"] = registryObject([]string{"0xorg1", "0xorg2"})
	api.objects["0xorg1"] = orgObject("0xorg1")
	api.objects["0xorg2"] = orgObject("0xorg2")
	api.tables["0xorg1-members"] = []string{"0xa"}

	service := newTestService(api)
	require.NoError(t, service.Bootstrap(context.Background()))

	orgs := service.ListOrganizations()
	require.Len(t, orgs, 2)
	assert.Equal(t, "0xorg1", orgs[0].ID)
	assert.Equal(t, []string{"0xa"}, orgs[0].Members)
	assert.Equal(t, "0xorg2", orgs[1].ID)
}

func TestBootstrapSkipsCorruptEntry(t *testing.T) {
	api := newFakeAPI()
	api.objects["0xregistry"] = registryObject([]string{"0xorg1", "0xbad", "0xorg3"})
	api.objects["0xorg1"] = orgObject("0xorg1")
	api.objects["0xbad"] = moveObject("0xbad", "0xpkg::dao::DAO", map[string]interface{}{
		"id": map[string]string{"id": "0xbad"},
		// sub-table references absent
	})
	api.objects["0xorg3"] = orgObject("0xorg3")

	service := newTestService(api)
	require.NoError(t, service.Bootstrap(context.Background()))

	orgs := service.ListOrganizations()
	require.Len(t, orgs, 2)
	assert.Equal(t, "0xorg1", orgs[0].ID)
	assert.Equal(t, "0xorg3", orgs[1].ID)
}

func TestBootstrapEmptyRegistryIsNoOp(t *testing.T) {
	api := newFakeAPI()
	api.objects["0xregistry"] = registryObject([]string{})

	service := newTestService(api)
	require.NoError(t, service.Bootstrap(context.Background()))
	assert.Empty(t, service.ListOrganizations())
}

func TestBootstrapInvalidRegistryShape(t *testing.T) {
	api := newFakeAPI()
	api.objects["0xregistry"] = moveObject("0xregistry", "0xpkg::dao::Something", map[string]interface{}{
		"not_the_list": []string{"0xorg1"},
	})

	service := newTestService(api)
	err := service.Bootstrap(context.Background())
	assert.ErrorIs(t, err, errors.ErrInvalidShape)
	assert.Empty(t, service.ListOrganizations())
}

func TestGetOrganizationFetchesOnDemand(t *testing.T) {
	api := newFakeAPI()
	api.objects["0xorg1"] = orgObject("0xorg1")

	service := newTestService(api)
	org, err := service.GetOrganization(context.Background(), "0xorg1")
	require.NoError(t, err)
	assert.Equal(t, "0xorg1", org.ID)
	assert.Equal(t, 1, api.reads("0xorg1"))

	// second read is served from cache
	_, err = service.GetOrganization(context.Background(), "0xorg1")
	require.NoError(t, err)
	assert.Equal(t, 1, api.reads("0xorg1"))
}

func TestSyncProposalTouchesOnlyAffectedProposal(t *testing.T) {
	api := newFakeAPI()
	api.objects["0xregistry"] = registryObject([]string{"0xorg1"})
	api.objects["0xorg1"] = orgObject("0xorg1")
	api.tables["0xorg1-proposals"] = []string{"0xp1", "0xp2"}
	api.objects["0xp1"] = proposalObject("0xp1", "0xv1", 5)
	api.objects["0xp2"] = proposalObject("0xp2", "0xv2", 3)

	service := newTestService(api)
	require.NoError(t, service.Bootstrap(context.Background()))

	siblingReads := api.reads("0xp2")
	api.objects["0xp1"] = proposalObject("0xp1", "0xv1", 6)
	api.tables["0xv1"] = []string{"0xvoter"}

	require.NoError(t, service.SyncProposal(context.Background(), "0xorg1", "0xp1"))

	org, err := service.GetOrganization(context.Background(), "0xorg1")
	require.NoError(t, err)
	i := org.FindProposal("0xp1")
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, uint64(6), org.Proposals[i].YesVotes)
	assert.Equal(t, []string{"0xvoter"}, org.Proposals[i].Voters)

	// siblings were not refetched
	assert.Equal(t, siblingReads, api.reads("0xp2"))
	// the organization object itself was not refetched either
	assert.Equal(t, 1, api.reads("0xorg1"))
}

func TestSyncNewOrganizationsFetchesOnlyMissing(t *testing.T) {
	api := newFakeAPI()
	api.objects["0xregistry"] = registryObject([]string{"0xorg1"})
	api.objects["0xorg1"] = orgObject("0xorg1")

	service := newTestService(api)
	require.NoError(t, service.Bootstrap(context.Background()))
	require.Equal(t, 1, api.reads("0xorg1"))

	api.objects["0xregistry"] = registryObject([]string{"0xorg1", "0xorg2"})
	api.objects["0xorg2"] = orgObject("0xorg2")

	require.NoError(t, service.SyncNewOrganizations(context.Background()))

	orgs := service.ListOrganizations()
	require.Len(t, orgs, 2)
	assert.Equal(t, "0xorg2", orgs[1].ID)
	// the already-cached organization was not refetched
	assert.Equal(t, 1, api.reads("0xorg1"))
}
