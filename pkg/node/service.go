package node

import (
	"context"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/movedao/dao-node/pkg/assemble"
	"github.com/movedao/dao-node/pkg/config"
	"github.com/movedao/dao-node/pkg/errors"
	"github.com/movedao/dao-node/pkg/ledger"
	"github.com/movedao/dao-node/pkg/model"
	"github.com/movedao/dao-node/pkg/mutate"
	"github.com/movedao/dao-node/pkg/state"
	"github.com/movedao/dao-node/pkg/tx"
)

// Service - synchronized view of the governance ledger plus the mutation
// pipeline, exposed upward to the CLI and the local API
type Service struct {
	cfg         config.Config
	api         ledger.API
	assembler   *assemble.Assembler
	cache       *state.Cache
	coordinator *mutate.Coordinator
}

// NewService wires the sync and mutation layers for one session.
func NewService(cfg config.Config, api ledger.API, submitter tx.Submitter) *Service {
	canon := cfg.Canon()
	s := &Service{
		cfg:       cfg,
		api:       api,
		assembler: assemble.New(api, canon),
		cache:     state.NewCache(),
	}
	s.coordinator = mutate.NewCoordinator(s.cache, tx.NewBuilder(api, cfg), submitter, s, canon)
	return s
}

// WithSnapshotter mirrors every cache update into the given store.
func (s *Service) WithSnapshotter(snap state.Snapshotter) *Service {
	s.cache.WithSnapshotter(snap)
	return s
}

// WithListener registers a mutation lifecycle observer.
func (s *Service) WithListener(l mutate.Listener) *Service {
	s.coordinator.WithListener(l)
	return s
}

// Bootstrap reads the root registry and drives bulk assembly into the cache.
// Re-invocable to force a full resync. A corrupt registry entry is skipped
// with a warning; a corrupt registry aborts with the cache left empty.
func (s *Service) Bootstrap(ctx context.Context) error {
	ids, err := s.registryList(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		log.Info("Registry lists no organizations, nothing to sync")
		return nil
	}

	results, err := s.api.GetObjects(ctx, ids)
	if err != nil {
		return fmt.Errorf("fetching registered organizations: %w", err)
	}

	synced := 0
	for i, result := range results {
		if result.Err != nil {
			log.Warnf("skipping organization %s listed in registry: %v", ids[i], result.Err)
			continue
		}
		org, err := s.assembler.Organization(ctx, result.Object)
		if err != nil {
			log.Warnf("skipping organization %s listed in registry: %v", ids[i], err)
			continue
		}
		s.cache.Upsert(org)
		synced++
	}

	log.Infof("Synced %d of %d registered organizations", synced, len(ids))
	return nil
}

// SyncOrganization re-assembles one organization from the ledger and replaces
// its cache entry whole.
func (s *Service) SyncOrganization(ctx context.Context, id string) (model.Organization, error) {
	obj, err := s.api.GetObject(ctx, id)
	if err != nil {
		return model.Organization{}, err
	}
	org, err := s.assembler.Organization(ctx, obj)
	if err != nil {
		return model.Organization{}, err
	}
	s.cache.Upsert(org)
	return org, nil
}

// SyncProposal re-assembles only the affected proposal and splices it into a
// copy of the cached organization. Sibling proposals are not refetched.
func (s *Service) SyncProposal(ctx context.Context, orgID, proposalID string) error {
	org, ok := s.cache.Get(orgID)
	if !ok {
		// nothing cached to patch, sync the whole organization instead
		_, err := s.SyncOrganization(ctx, orgID)
		return err
	}

	obj, err := s.api.GetObject(ctx, proposalID)
	if err != nil {
		return err
	}
	proposal, err := s.assembler.Proposal(ctx, obj)
	if err != nil {
		return err
	}

	updated := org
	updated.Proposals = append([]model.Proposal(nil), org.Proposals...)
	if i := updated.FindProposal(proposalID); i >= 0 {
		updated.Proposals[i] = proposal
	} else {
		updated.Proposals = append(updated.Proposals, proposal)
	}
	s.cache.Upsert(updated)
	return nil
}

// SyncNewOrganizations re-reads the registry id list and assembles only the
// ids not cached yet.
func (s *Service) SyncNewOrganizations(ctx context.Context) error {
	ids, err := s.registryList(ctx)
	if err != nil {
		return err
	}

	var missing []string
	for _, id := range ids {
		if _, ok := s.cache.Get(id); !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	results, err := s.api.GetObjects(ctx, missing)
	if err != nil {
		return fmt.Errorf("fetching newly registered organizations: %w", err)
	}
	for i, result := range results {
		if result.Err != nil {
			log.Warnf("skipping new organization %s: %v", missing[i], result.Err)
			continue
		}
		org, err := s.assembler.Organization(ctx, result.Object)
		if err != nil {
			log.Warnf("skipping new organization %s: %v", missing[i], err)
			continue
		}
		s.cache.Upsert(org)
	}
	return nil
}

// GetOrganization returns the cached organization, fetching on demand when
// it isn't cached yet.
func (s *Service) GetOrganization(ctx context.Context, id string) (model.Organization, error) {
	if org, ok := s.cache.Get(id); ok {
		return org, nil
	}
	return s.SyncOrganization(ctx, id)
}

// ListOrganizations returns the synced organizations in insertion order.
func (s *Service) ListOrganizations() []model.Organization {
	return s.cache.All()
}

// SubmitMutation runs one user-initiated write through the coordinator.
func (s *Service) SubmitMutation(ctx context.Context, action tx.Action, args tx.Args) (mutate.Receipt, error) {
	return s.coordinator.Submit(ctx, s.cfg.CallerAddress, action, args)
}

// registryList reads the root registry object and extracts the organization
// id list, asserting the registry shape.
func (s *Service) registryList(ctx context.Context) ([]string, error) {
	obj, err := s.api.GetObject(ctx, s.cfg.RegistryID)
	if err != nil {
		return nil, fmt.Errorf("reading registry %s: %w", s.cfg.RegistryID, err)
	}

	raw, ok := obj.MoveFields()
	if !ok {
		return nil, fmt.Errorf("registry %s has no readable content: %w", s.cfg.RegistryID, errors.ErrInvalidShape)
	}

	var fields model.RegistryFields
	if err := json.Unmarshal(raw, &fields); err != nil || fields.OrgList == nil {
		return nil, fmt.Errorf("registry %s fields don't match schema: %w", s.cfg.RegistryID, errors.ErrInvalidShape)
	}
	return *fields.OrgList, nil
}
