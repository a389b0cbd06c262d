package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/movedao/dao-node/pkg/errors"
	"github.com/movedao/dao-node/pkg/model"
)

var showOptions = map[string]bool{"showContent": true, "showOwner": true}

// objectResponse - one object slot as returned by the read API: either the
// object projection or a per-object error
type objectResponse struct {
	Data  *model.Object `json:"data"`
	Error *objectStatus `json:"error"`
}

type objectStatus struct {
	Code     string `json:"code"`
	ObjectID string `json:"object_id"`
}

func (r objectResponse) object(id string) (model.Object, error) {
	if r.Error != nil || r.Data == nil {
		return model.Object{}, fmt.Errorf("object %s: %w", id, errors.ErrNotFound)
	}
	return *r.Data, nil
}

// GetObject fetches a single object with content and owner metadata.
func (c *Client) GetObject(ctx context.Context, id string) (model.Object, error) {
	var resp objectResponse
	if err := c.call(ctx, "sui_getObject", []interface{}{id, showOptions}, &resp); err != nil {
		return model.Object{}, err
	}
	return resp.object(id)
}

// GetObjects fetches a batch of objects, preserving input order and
// cardinality. Missing objects occupy their slot with ErrNotFound instead of
// failing the batch.
func (c *Client) GetObjects(ctx context.Context, ids []string) ([]model.ObjectResult, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var resp []objectResponse
	if err := c.call(ctx, "sui_multiGetObjects", []interface{}{ids, showOptions}, &resp); err != nil {
		return nil, err
	}
	if len(resp) != len(ids) {
		return nil, fmt.Errorf("batched read returned %d slots for %d ids: %w", len(resp), len(ids), errors.ErrFetchFailure)
	}

	results := make([]model.ObjectResult, len(ids))
	for i, r := range resp {
		obj, err := r.object(ids[i])
		results[i] = model.ObjectResult{Object: obj, Err: err}
	}
	return results, nil
}

// dynamicFieldPage - one page of a dynamic table listing
type dynamicFieldPage struct {
	Data []struct {
		Name struct {
			Type  string          `json:"type"`
			Value json.RawMessage `json:"value"`
		} `json:"name"`
	} `json:"data"`
	NextCursor  *string `json:"nextCursor"`
	HasNextPage bool    `json:"hasNextPage"`
}

// ListTableKeys enumerates every key of a dynamic table. A failure on any
// page fails the whole call; a partial list that looks complete would hide
// members and proposals from callers.
func (c *Client) ListTableKeys(ctx context.Context, tableID string) ([]string, error) {
	var keys []string
	var cursor *string

	for {
		var page dynamicFieldPage
		if err := c.call(ctx, "suix_getDynamicFields", []interface{}{tableID, cursor, nil}, &page); err != nil {
			return nil, fmt.Errorf("listing table %s: %w", tableID, err)
		}

		for _, entry := range page.Data {
			var key string
			if err := json.Unmarshal(entry.Name.Value, &key); err != nil {
				return nil, fmt.Errorf("table %s carries a non-string key: %w", tableID, errors.ErrInvalidShape)
			}
			keys = append(keys, key)
		}

		if !page.HasNextPage {
			return keys, nil
		}
		if page.NextCursor == nil || (cursor != nil && *page.NextCursor == *cursor) {
			// a stuck cursor would loop forever or silently truncate
			return nil, fmt.Errorf("table %s listing cursor did not advance: %w", tableID, errors.ErrFetchFailure)
		}
		cursor = page.NextCursor
	}
}

// ownedObjectPage - one page of an owned-objects listing
type ownedObjectPage struct {
	Data        []objectResponse `json:"data"`
	NextCursor  *string          `json:"nextCursor"`
	HasNextPage bool             `json:"hasNextPage"`
}

// GetOwnedObjects lists all objects owned by an address, with content.
func (c *Client) GetOwnedObjects(ctx context.Context, owner string) ([]model.Object, error) {
	var objects []model.Object
	var cursor *string

	for {
		query := map[string]interface{}{"options": showOptions}
		var page ownedObjectPage
		if err := c.call(ctx, "suix_getOwnedObjects", []interface{}{owner, query, cursor, nil}, &page); err != nil {
			return nil, fmt.Errorf("listing objects owned by %s: %w", owner, err)
		}

		for _, r := range page.Data {
			if r.Error != nil || r.Data == nil {
				continue
			}
			objects = append(objects, *r.Data)
		}

		if !page.HasNextPage {
			return objects, nil
		}
		if page.NextCursor == nil || (cursor != nil && *page.NextCursor == *cursor) {
			return nil, fmt.Errorf("owned objects cursor for %s did not advance: %w", owner, errors.ErrFetchFailure)
		}
		cursor = page.NextCursor
	}
}
