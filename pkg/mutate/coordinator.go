package mutate

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/movedao/dao-node/pkg/errors"
	"github.com/movedao/dao-node/pkg/model"
	"github.com/movedao/dao-node/pkg/state"
	"github.com/movedao/dao-node/pkg/tx"
)

// Phase of a mutation's optimistic lifecycle.
type Phase string

const (
	PhaseIdle               Phase = "idle"
	PhaseAuthorizationCheck Phase = "authorization-check"
	PhaseBuilding           Phase = "building"
	PhaseSubmitted          Phase = "submitted"
	PhaseSucceeded          Phase = "succeeded"
	PhaseFailed             Phase = "failed"
)

// Listener observes lifecycle transitions of a mutation.
type Listener func(mutationID string, phase Phase)

// EntitySyncer re-assembles affected entities after a successful write.
// Implemented by the node service.
type EntitySyncer interface {
	SyncOrganization(ctx context.Context, id string) (model.Organization, error)
	SyncProposal(ctx context.Context, orgID, proposalID string) error
	SyncNewOrganizations(ctx context.Context) error
}

// Receipt - outcome of a successfully submitted mutation
type Receipt struct {
	MutationID string `json:"mutationId"`
	Digest     string `json:"digest"`
}

// Coordinator drives a user-initiated write end to end: local authorization
// pre-check, build, submit, then authoritative refetch of the affected
// entity. The cache is never touched on failure.
type Coordinator struct {
	cache     *state.Cache
	builder   *tx.Builder
	submitter tx.Submitter
	syncer    EntitySyncer
	canon     model.AddressCanon
	listener  Listener

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCoordinator wires the mutation pipeline together.
func NewCoordinator(cache *state.Cache, builder *tx.Builder, submitter tx.Submitter, syncer EntitySyncer, canon model.AddressCanon) *Coordinator {
	return &Coordinator{
		cache:     cache,
		builder:   builder,
		submitter: submitter,
		syncer:    syncer,
		canon:     canon,
		locks:     make(map[string]*sync.Mutex),
	}
}

// WithListener registers a lifecycle observer.
func (c *Coordinator) WithListener(l Listener) *Coordinator {
	c.listener = l
	return c
}

// Submit runs one mutation serially against its target entity. Mutations
// against distinct entities proceed concurrently.
func (c *Coordinator) Submit(ctx context.Context, caller string, action tx.Action, args tx.Args) (Receipt, error) {
	if !action.Valid() {
		return Receipt{}, fmt.Errorf("unknown action %q: %w", action, errors.ErrInvalidShape)
	}

	mutationID := uuid.NewString()
	c.emit(mutationID, PhaseIdle)

	// serialize per target so the post-success refresh reads post-write state
	lock := c.entityLock(c.lockKey(action, args))
	lock.Lock()
	defer lock.Unlock()

	c.emit(mutationID, PhaseAuthorizationCheck)
	if err := c.checkStanding(ctx, caller, action, args); err != nil {
		return c.fail(mutationID, err)
	}

	c.emit(mutationID, PhaseBuilding)
	request, err := c.builder.Build(ctx, caller, action, args)
	if err != nil {
		return c.fail(mutationID, err)
	}

	c.emit(mutationID, PhaseSubmitted)
	result, err := c.submitter.Submit(ctx, request)
	if err != nil {
		return c.fail(mutationID, err)
	}
	if !result.Success {
		return c.fail(mutationID, fmt.Errorf("ledger rejected %s: %s: %w", action, result.Error, errors.ErrSubmissionFailure))
	}

	c.refresh(ctx, mutationID, action, args)
	c.emit(mutationID, PhaseSucceeded)

	return Receipt{MutationID: mutationID, Digest: result.Digest}, nil
}

// checkStanding fails fast, without any network call, when the cached
// membership view already proves the caller lacks standing. An uncached
// organization is fetched on demand first.
func (c *Coordinator) checkStanding(ctx context.Context, caller string, action tx.Action, args tx.Args) error {
	standing := action.RequiredStanding()
	if standing == tx.StandingNone {
		return nil
	}

	org, ok := c.cache.Get(args.OrgID)
	if !ok {
		fetched, err := c.syncer.SyncOrganization(ctx, args.OrgID)
		if err != nil {
			return err
		}
		org = fetched
	}

	switch standing {
	case tx.StandingMember:
		if !c.canon.Contains(org.Members, caller) {
			return fmt.Errorf("%s is not a member of organization %s: %w", caller, args.OrgID, errors.ErrNotAuthorizedLocally)
		}
	case tx.StandingNotMember:
		// the address being added, not necessarily the caller
		subject := args.MemberAddress
		if subject == "" {
			subject = caller
		}
		if c.canon.Contains(org.Members, subject) {
			return fmt.Errorf("%s is already a member of organization %s: %w", subject, args.OrgID, errors.ErrNotAuthorizedLocally)
		}
	}
	return nil
}

// refresh re-syncs only the entity the action touched. Vote re-assembles the
// single affected proposal; sibling proposals are left alone. A refresh
// failure leaves the cache stale but does not fail the mutation; the write
// already happened, an explicit resync recovers the view.
func (c *Coordinator) refresh(ctx context.Context, mutationID string, action tx.Action, args tx.Args) {
	var err error
	switch action.AffectedEntity() {
	case tx.RefreshProposal:
		err = c.syncer.SyncProposal(ctx, args.OrgID, args.ProposalID)
	case tx.RefreshRegistry:
		err = c.syncer.SyncNewOrganizations(ctx)
	default:
		_, err = c.syncer.SyncOrganization(ctx, args.OrgID)
	}
	if err != nil {
		log.Warnf("mutation %s succeeded but refreshing its entity failed due to error: %v", mutationID, err)
	}
}

func (c *Coordinator) fail(mutationID string, err error) (Receipt, error) {
	c.emit(mutationID, PhaseFailed)
	return Receipt{}, err
}

func (c *Coordinator) emit(mutationID string, phase Phase) {
	log.Debugf("mutation %s entered phase %s", mutationID, phase)
	if c.listener != nil {
		c.listener(mutationID, phase)
	}
}

func (c *Coordinator) lockKey(action tx.Action, args tx.Args) string {
	if action == tx.ActionCreateOrganization {
		return "registry"
	}
	return args.OrgID
}

func (c *Coordinator) entityLock(key string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[key] = lock
	}
	return lock
}
