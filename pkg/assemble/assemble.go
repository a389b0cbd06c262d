package assemble

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/movedao/dao-node/pkg/errors"
	"github.com/movedao/dao-node/pkg/ledger"
	"github.com/movedao/dao-node/pkg/model"
)

// Assembler turns raw ledger objects and their dynamic sub-tables into
// domain entities.
type Assembler struct {
	api   ledger.API
	canon model.AddressCanon
}

// New creates an assembler on top of the given read API.
func New(api ledger.API, canon model.AddressCanon) *Assembler {
	return &Assembler{api: api, canon: canon}
}

// Proposal assembles a domain proposal from its raw object, resolving the
// voter sub-table.
func (a *Assembler) Proposal(ctx context.Context, obj model.Object) (model.Proposal, error) {
	raw, ok := obj.MoveFields()
	if !ok {
		return model.Proposal{}, fmt.Errorf("proposal %s has no readable content: %w", obj.ObjectID, errors.ErrNotFound)
	}

	var fields model.ProposalFields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return model.Proposal{}, fmt.Errorf("proposal %s fields don't match schema: %w", obj.ObjectID, errors.ErrInvalidShape)
	}
	if fields.ID.ID == "" || fields.Voters.TableID() == "" {
		return model.Proposal{}, fmt.Errorf("proposal %s is missing required fields: %w", obj.ObjectID, errors.ErrInvalidShape)
	}
	if fields.Voters.TableID() == fields.ID.ID {
		return model.Proposal{}, fmt.Errorf("proposal %s references itself as voter table: %w", obj.ObjectID, errors.ErrInvalidShape)
	}

	yes, err := strconv.ParseUint(fields.YesVotes, 10, 64)
	if err != nil {
		return model.Proposal{}, fmt.Errorf("proposal %s yes-count %q is not a number: %w", obj.ObjectID, fields.YesVotes, errors.ErrInvalidShape)
	}
	no, err := strconv.ParseUint(fields.NoVotes, 10, 64)
	if err != nil {
		return model.Proposal{}, fmt.Errorf("proposal %s no-count %q is not a number: %w", obj.ObjectID, fields.NoVotes, errors.ErrInvalidShape)
	}
	deadline, err := strconv.ParseInt(fields.Deadline, 10, 64)
	if err != nil {
		return model.Proposal{}, fmt.Errorf("proposal %s deadline %q is not a number: %w", obj.ObjectID, fields.Deadline, errors.ErrInvalidShape)
	}

	voters, err := a.api.ListTableKeys(ctx, fields.Voters.TableID())
	if err != nil {
		return model.Proposal{}, fmt.Errorf("resolving voters of proposal %s: %w", fields.ID.ID, err)
	}

	return model.Proposal{
		ID:          fields.ID.ID,
		Title:       fields.Title,
		Description: fields.Description,
		Creator:     a.canon.Canon(fields.Creator),
		YesVotes:    yes,
		NoVotes:     no,
		Deadline:    deadline,
		Closed:      fields.IsClosed,
		Voters:      a.canonSet(voters),
	}, nil
}

// Organization assembles a domain organization from its raw object. The
// admin, member and proposal-id tables are independent reads and resolve
// concurrently; assembly completes only once all of them have.
func (a *Assembler) Organization(ctx context.Context, obj model.Object) (model.Organization, error) {
	raw, ok := obj.MoveFields()
	if !ok {
		return model.Organization{}, fmt.Errorf("organization %s has no readable content: %w", obj.ObjectID, errors.ErrNotFound)
	}

	var fields model.OrganizationFields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return model.Organization{}, fmt.Errorf("organization %s fields don't match schema: %w", obj.ObjectID, errors.ErrInvalidShape)
	}
	if fields.ID.ID == "" || fields.Admins.TableID() == "" || fields.Members.TableID() == "" || fields.Proposals.TableID() == "" {
		return model.Organization{}, fmt.Errorf("organization %s is missing required fields: %w", obj.ObjectID, errors.ErrInvalidShape)
	}
	for _, tableID := range []string{fields.Admins.TableID(), fields.Members.TableID(), fields.Proposals.TableID()} {
		if tableID == fields.ID.ID {
			return model.Organization{}, fmt.Errorf("organization %s references itself as sub-table: %w", obj.ObjectID, errors.ErrInvalidShape)
		}
	}

	var admins, members, proposalIDs []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		admins, err = a.api.ListTableKeys(gctx, fields.Admins.TableID())
		return err
	})
	g.Go(func() (err error) {
		members, err = a.api.ListTableKeys(gctx, fields.Members.TableID())
		return err
	})
	g.Go(func() (err error) {
		proposalIDs, err = a.api.ListTableKeys(gctx, fields.Proposals.TableID())
		return err
	})
	if err := g.Wait(); err != nil {
		return model.Organization{}, fmt.Errorf("resolving sub-tables of organization %s: %w", fields.ID.ID, err)
	}

	proposals, err := a.proposals(ctx, fields.ID.ID, proposalIDs)
	if err != nil {
		return model.Organization{}, err
	}

	return model.Organization{
		ID:          fields.ID.ID,
		Name:        fields.Name,
		Description: fields.Description,
		Admins:      a.canonSet(admins),
		Members:     a.canonSet(members),
		Proposals:   proposals,
	}, nil
}

// proposals batch-fetches and assembles the organization's proposals. A
// single corrupt proposal is skipped with a warning so one legacy object
// can't hide the whole list.
func (a *Assembler) proposals(ctx context.Context, orgID string, ids []string) ([]model.Proposal, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	// table key order is unspecified, sort for a stable display order
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	for _, id := range sorted {
		if id == orgID {
			return nil, fmt.Errorf("organization %s lists itself as proposal: %w", orgID, errors.ErrInvalidShape)
		}
	}

	results, err := a.api.GetObjects(ctx, sorted)
	if err != nil {
		return nil, fmt.Errorf("fetching proposals of organization %s: %w", orgID, err)
	}

	assembled := make([]*model.Proposal, len(results))
	g, gctx := errgroup.WithContext(ctx)
	for i := range results {
		i := i
		g.Go(func() error {
			if results[i].Err != nil {
				log.Warnf("skipping proposal %s of organization %s: %v", sorted[i], orgID, results[i].Err)
				return nil
			}
			proposal, err := a.Proposal(gctx, results[i].Object)
			if err != nil {
				log.Warnf("skipping proposal %s of organization %s: %v", sorted[i], orgID, err)
				return nil
			}
			assembled[i] = &proposal
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var proposals []model.Proposal
	for _, p := range assembled {
		if p != nil {
			proposals = append(proposals, *p)
		}
	}
	return proposals, nil
}

func (a *Assembler) canonSet(addrs []string) []string {
	out := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		out = append(out, a.canon.Canon(addr))
	}
	sort.Strings(out)
	return out
}
