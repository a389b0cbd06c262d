package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movedao/dao-node/pkg/errors"
)

type rpcCall struct {
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
}

// rpcServer answers JSON-RPC calls with canned results keyed by method and
// records every call it sees.
type rpcServer struct {
	t       *testing.T
	handler func(call rpcCall) (interface{}, *rpcError)
	calls   []rpcCall
}

func (s *rpcServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var call rpcCall
	require.NoError(s.t, json.NewDecoder(r.Body).Decode(&call))
	s.calls = append(s.calls, call)

	result, rpcErr := s.handler(call)
	resp := map[string]interface{}{"jsonrpc": "2.0", "id": 1}
	if rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}
	require.NoError(s.t, json.NewEncoder(w).Encode(resp))
}

func newTestClient(t *testing.T, handler func(call rpcCall) (interface{}, *rpcError)) (*Client, *rpcServer) {
	srv := &rpcServer{t: t, handler: handler}
	httpSrv := httptest.NewServer(srv)
	t.Cleanup(httpSrv.Close)

	return &Client{
		client:     httpSrv.Client(),
		nodeURL:    httpSrv.URL,
		maxElapsed: 500 * time.Millisecond,
	}, srv
}

func objectJSON(id string) map[string]interface{} {
	return map[string]interface{}{
		"objectId": id,
		"version":  "42",
		"digest":   "digest-" + id,
		"owner":    map[string]interface{}{"Shared": map[string]interface{}{"initial_shared_version": 7}},
		"content": map[string]interface{}{
			"dataType": "moveObject",
			"type":     "0x1::dao::DAO",
			"fields":   map[string]interface{}{"id": map[string]string{"id": id}},
		},
	}
}

func TestGetObject(t *testing.T) {
	client, _ := newTestClient(t, func(call rpcCall) (interface{}, *rpcError) {
		require.Equal(t, "sui_getObject", call.Method)
		return map[string]interface{}{"data": objectJSON("0xa")}, nil
	})

	obj, err := client.GetObject(context.Background(), "0xa")
	require.NoError(t, err)
	assert.Equal(t, "0xa", obj.ObjectID)
	require.NotNil(t, obj.Owner)
	require.NotNil(t, obj.Owner.Shared)
	assert.Equal(t, uint64(7), obj.Owner.Shared.InitialSharedVersion)

	fields, ok := obj.MoveFields()
	assert.True(t, ok)
	assert.NotNil(t, fields)
}

func TestGetObjectMissing(t *testing.T) {
	client, _ := newTestClient(t, func(call rpcCall) (interface{}, *rpcError) {
		return map[string]interface{}{"error": map[string]string{"code": "notExists", "object_id": "0xdead"}}, nil
	})

	_, err := client.GetObject(context.Background(), "0xdead")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestGetObjectsPreservesOrderAndSlots(t *testing.T) {
	client, _ := newTestClient(t, func(call rpcCall) (interface{}, *rpcError) {
		require.Equal(t, "sui_multiGetObjects", call.Method)
		return []interface{}{
			map[string]interface{}{"data": objectJSON("0xa")},
			map[string]interface{}{"error": map[string]string{"code": "notExists"}},
			map[string]interface{}{"data": objectJSON("0xc")},
		}, nil
	})

	results, err := client.GetObjects(context.Background(), []string{"0xa", "0xb", "0xc"})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "0xa", results[0].Object.ObjectID)
	assert.ErrorIs(t, results[1].Err, errors.ErrNotFound)
	assert.Equal(t, "0xc", results[2].Object.ObjectID)
}

func TestGetObjectsCardinalityMismatch(t *testing.T) {
	client, _ := newTestClient(t, func(call rpcCall) (interface{}, *rpcError) {
		return []interface{}{map[string]interface{}{"data": objectJSON("0xa")}}, nil
	})

	_, err := client.GetObjects(context.Background(), []string{"0xa", "0xb"})
	assert.ErrorIs(t, err, errors.ErrFetchFailure)
}

func fieldEntry(key string) map[string]interface{} {
	return map[string]interface{}{"name": map[string]interface{}{"type": "address", "value": key}}
}

func TestListTableKeysPaginates(t *testing.T) {
	pages := map[string]interface{}{
		"": map[string]interface{}{
			"data":        []interface{}{fieldEntry("0x1"), fieldEntry("0x2")},
			"nextCursor":  "c1",
			"hasNextPage": true,
		},
		"c1": map[string]interface{}{
			"data":        []interface{}{fieldEntry("0x3")},
			"nextCursor":  "c2",
			"hasNextPage": true,
		},
		"c2": map[string]interface{}{
			"data":        []interface{}{fieldEntry("0x4"), fieldEntry("0x5")},
			"hasNextPage": false,
		},
	}

	client, srv := newTestClient(t, func(call rpcCall) (interface{}, *rpcError) {
		require.Equal(t, "suix_getDynamicFields", call.Method)
		cursor := ""
		if len(call.Params) > 1 && call.Params[1] != nil {
			cursor = call.Params[1].(string)
		}
		return pages[cursor], nil
	})

	keys, err := client.ListTableKeys(context.Background(), "0xtable")
	require.NoError(t, err)
	assert.Equal(t, []string{"0x1", "0x2", "0x3", "0x4", "0x5"}, keys)
	assert.Len(t, srv.calls, 3)
}

func TestListTableKeysFailsFastOnPageError(t *testing.T) {
	client, _ := newTestClient(t, func(call rpcCall) (interface{}, *rpcError) {
		cursor := call.Params[1]
		if cursor == nil {
			return map[string]interface{}{
				"data":        []interface{}{fieldEntry("0x1")},
				"nextCursor":  "c1",
				"hasNextPage": true,
			}, nil
		}
		return nil, &rpcError{Code: -32000, Message: "table pruned"}
	})

	keys, err := client.ListTableKeys(context.Background(), "0xtable")
	assert.ErrorIs(t, err, errors.ErrFetchFailure)
	assert.Nil(t, keys)
}

func TestListTableKeysStuckCursor(t *testing.T) {
	client, _ := newTestClient(t, func(call rpcCall) (interface{}, *rpcError) {
		return map[string]interface{}{
			"data":        []interface{}{fieldEntry("0x1")},
			"nextCursor":  "same",
			"hasNextPage": true,
		}, nil
	})

	_, err := client.ListTableKeys(context.Background(), "0xtable")
	assert.ErrorIs(t, err, errors.ErrFetchFailure)
}

func TestCallRetriesTransientServerError(t *testing.T) {
	attempt := 0
	srv := &rpcServer{t: t}
	srv.handler = func(call rpcCall) (interface{}, *rpcError) {
		return map[string]interface{}{"data": objectJSON("0xa")}, nil
	}
	httpSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempt++
		if attempt == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		srv.ServeHTTP(w, r)
	}))
	t.Cleanup(httpSrv.Close)

	client := &Client{client: httpSrv.Client(), nodeURL: httpSrv.URL, maxElapsed: 2 * time.Second}
	obj, err := client.GetObject(context.Background(), "0xa")
	require.NoError(t, err)
	assert.Equal(t, "0xa", obj.ObjectID)
	assert.Equal(t, 2, attempt)
}

func TestGetOwnedObjectsPaginates(t *testing.T) {
	client, _ := newTestClient(t, func(call rpcCall) (interface{}, *rpcError) {
		require.Equal(t, "suix_getOwnedObjects", call.Method)
		cursor := call.Params[2]
		if cursor == nil {
			return map[string]interface{}{
				"data":        []interface{}{map[string]interface{}{"data": objectJSON("0xcap1")}},
				"nextCursor":  "c1",
				"hasNextPage": true,
			}, nil
		}
		return map[string]interface{}{
			"data":        []interface{}{map[string]interface{}{"data": objectJSON("0xcap2")}},
			"hasNextPage": false,
		}, nil
	})

	objs, err := client.GetOwnedObjects(context.Background(), "0xme")
	require.NoError(t, err)
	require.Len(t, objs, 2)
	assert.Equal(t, "0xcap1", objs[0].ObjectID)
	assert.Equal(t, "0xcap2", objs[1].ObjectID)
}

func TestRPCErrorIsFetchFailure(t *testing.T) {
	client, _ := newTestClient(t, func(call rpcCall) (interface{}, *rpcError) {
		return nil, &rpcError{Code: -32602, Message: "invalid params"}
	})

	_, err := client.GetObject(context.Background(), "0xa")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrFetchFailure)
	assert.Contains(t, err.Error(), fmt.Sprintf("%d", -32602))
}
