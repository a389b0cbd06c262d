package tx

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/movedao/dao-node/pkg/config"
	"github.com/movedao/dao-node/pkg/errors"
	"github.com/movedao/dao-node/pkg/ledger"
	"github.com/movedao/dao-node/pkg/model"
)

// Builder constructs unsigned mutating requests. Shared-object versions are
// read fresh for every build; a stale version gets the request rejected by
// the ledger.
type Builder struct {
	api   ledger.API
	cfg   config.Config
	canon model.AddressCanon
}

// NewBuilder creates a transaction builder for the configured program.
func NewBuilder(api ledger.API, cfg config.Config) *Builder {
	return &Builder{api: api, cfg: cfg, canon: cfg.Canon()}
}

// Build resolves shared references and capability objects for the action and
// returns the assembled request.
func (b *Builder) Build(ctx context.Context, caller string, action Action, args Args) (model.UnsignedRequest, error) {
	switch action {
	case ActionCreateOrganization:
		return b.createOrganization(ctx, caller, args)
	case ActionJoinOrganization:
		return b.joinOrganization(ctx, caller, args)
	case ActionCreateProposal:
		return b.createProposal(ctx, caller, args)
	case ActionVote:
		return b.vote(ctx, caller, args)
	case ActionRemoveMember:
		return b.memberAdmin(ctx, caller, args, "remove_member")
	case ActionPromoteAdmin:
		return b.memberAdmin(ctx, caller, args, "add_admin")
	default:
		return model.UnsignedRequest{}, fmt.Errorf("unknown action %q: %w", action, errors.ErrInvalidShape)
	}
}

func (b *Builder) createOrganization(ctx context.Context, caller string, args Args) (model.UnsignedRequest, error) {
	registry, err := b.sharedRef(ctx, b.cfg.RegistryID, true)
	if err != nil {
		return model.UnsignedRequest{}, err
	}

	return model.UnsignedRequest{
		Sender: b.canon.Canon(caller),
		Target: b.target("dao", "create_dao"),
		Args: []model.CallArg{
			sharedArg(registry),
			pureArg(model.PureString, args.Name),
			pureArg(model.PureString, args.Description),
		},
	}, nil
}

func (b *Builder) joinOrganization(ctx context.Context, caller string, args Args) (model.UnsignedRequest, error) {
	if args.OrgID == "" {
		return model.UnsignedRequest{}, fmt.Errorf("join requires an organization id: %w", errors.ErrInvalidShape)
	}

	member := args.MemberAddress
	if member == "" {
		member = caller
	}

	org, err := b.sharedRef(ctx, args.OrgID, true)
	if err != nil {
		return model.UnsignedRequest{}, err
	}

	return model.UnsignedRequest{
		Sender: b.canon.Canon(caller),
		Target: b.target("dao", "add_member"),
		Args: []model.CallArg{
			sharedArg(org),
			pureArg(model.PureAddress, b.canon.Canon(member)),
		},
	}, nil
}

func (b *Builder) createProposal(ctx context.Context, caller string, args Args) (model.UnsignedRequest, error) {
	if args.OrgID == "" {
		return model.UnsignedRequest{}, fmt.Errorf("create-proposal requires an organization id: %w", errors.ErrInvalidShape)
	}

	org, err := b.sharedRef(ctx, args.OrgID, true)
	if err != nil {
		return model.UnsignedRequest{}, err
	}

	capID, err := b.capability(ctx, caller, b.cfg.AdminCapType, args.OrgID)
	if err != nil {
		return model.UnsignedRequest{}, err
	}

	return model.UnsignedRequest{
		Sender: b.canon.Canon(caller),
		Target: b.target("proposal", "create_proposal"),
		Args: []model.CallArg{
			sharedArg(org),
			pureArg(model.PureString, args.Title),
			pureArg(model.PureString, args.Description),
			pureArg(model.PureU64, strconv.FormatUint(args.Deadline, 10)),
			ownedArg(capID),
		},
	}, nil
}

func (b *Builder) vote(ctx context.Context, caller string, args Args) (model.UnsignedRequest, error) {
	if args.OrgID == "" || args.ProposalID == "" {
		return model.UnsignedRequest{}, fmt.Errorf("vote requires organization and proposal ids: %w", errors.ErrInvalidShape)
	}

	// the organization is only read by vote, the proposal is mutated
	org, err := b.sharedRef(ctx, args.OrgID, false)
	if err != nil {
		return model.UnsignedRequest{}, err
	}
	proposal, err := b.sharedRef(ctx, args.ProposalID, true)
	if err != nil {
		return model.UnsignedRequest{}, err
	}

	clock := model.SharedRef{
		ObjectID:             b.cfg.ClockID,
		InitialSharedVersion: b.cfg.ClockInitialVersion,
		Mutable:              false,
	}

	return model.UnsignedRequest{
		Sender: b.canon.Canon(caller),
		Target: b.target("proposal", "vote"),
		Args: []model.CallArg{
			sharedArg(org),
			sharedArg(proposal),
			pureArg(model.PureBool, strconv.FormatBool(args.Approve)),
			sharedArg(clock),
		},
	}, nil
}

func (b *Builder) memberAdmin(ctx context.Context, caller string, args Args, function string) (model.UnsignedRequest, error) {
	if args.OrgID == "" || args.MemberAddress == "" {
		return model.UnsignedRequest{}, fmt.Errorf("%s requires an organization id and a member address: %w", function, errors.ErrInvalidShape)
	}

	org, err := b.sharedRef(ctx, args.OrgID, true)
	if err != nil {
		return model.UnsignedRequest{}, err
	}

	capID, err := b.capability(ctx, caller, b.cfg.OrgCapType, args.OrgID)
	if err != nil {
		return model.UnsignedRequest{}, err
	}

	return model.UnsignedRequest{
		Sender: b.canon.Canon(caller),
		Target: b.target("dao", function),
		Args: []model.CallArg{
			sharedArg(org),
			ownedArg(capID),
			pureArg(model.PureAddress, b.canon.Canon(args.MemberAddress)),
		},
	}, nil
}

// sharedRef reads the object's current owner metadata and derives a shared
// reference. Never served from cache.
func (b *Builder) sharedRef(ctx context.Context, id string, mutable bool) (model.SharedRef, error) {
	obj, err := b.api.GetObject(ctx, id)
	if err != nil {
		return model.SharedRef{}, err
	}
	if obj.Owner == nil || obj.Owner.Shared == nil {
		return model.SharedRef{}, fmt.Errorf("object %s is not shared: %w", id, errors.ErrInvalidShape)
	}

	return model.SharedRef{
		ObjectID:             id,
		InitialSharedVersion: obj.Owner.Shared.InitialSharedVersion,
		Mutable:              mutable,
	}, nil
}

// capability locates the single owned capability object of the given type
// whose back-reference names the target organization.
func (b *Builder) capability(ctx context.Context, caller, capType, orgID string) (string, error) {
	if capType == "" {
		return "", fmt.Errorf("no capability type tag configured: %w", errors.ErrAuthorizationFailure)
	}

	owned, err := b.api.GetOwnedObjects(ctx, caller)
	if err != nil {
		return "", err
	}

	var matches []string
	for _, obj := range owned {
		if obj.TypeTag() != capType {
			continue
		}
		raw, ok := obj.MoveFields()
		if !ok {
			continue
		}
		var fields model.CapabilityFields
		if err := json.Unmarshal(raw, &fields); err != nil {
			continue
		}
		if fields.OrgID == orgID {
			matches = append(matches, fields.ID.ID)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("no %s capability for organization %s owned by %s: %w", capType, orgID, caller, errors.ErrAuthorizationFailure)
	default:
		return "", fmt.Errorf("%d %s capabilities for organization %s owned by %s: %w", len(matches), capType, orgID, caller, errors.ErrAuthorizationFailure)
	}
}

func (b *Builder) target(module, function string) string {
	return fmt.Sprintf("%s::%s::%s", b.cfg.PackageID, module, function)
}

func sharedArg(ref model.SharedRef) model.CallArg {
	return model.CallArg{Kind: model.ArgShared, Shared: &ref}
}

func ownedArg(id string) model.CallArg {
	return model.CallArg{Kind: model.ArgOwned, Owned: id}
}

func pureArg(valueType, value string) model.CallArg {
	return model.CallArg{Kind: model.ArgPure, Pure: &model.PureValue{Type: valueType, Value: value}}
}
