package tx

// Action identifies a mutating operation against the governance program.
type Action string

const (
	ActionCreateOrganization Action = "create-org"
	ActionJoinOrganization   Action = "join-org"
	ActionCreateProposal     Action = "create-proposal"
	ActionVote               Action = "vote"
	ActionRemoveMember       Action = "remove-member"
	ActionPromoteAdmin       Action = "promote-admin"
)

// Args carries the per-action inputs. Only the fields an action uses are
// consulted.
type Args struct {
	OrgID         string `json:"orgId,omitempty"`
	ProposalID    string `json:"proposalId,omitempty"`
	Name          string `json:"name,omitempty"`
	Title         string `json:"title,omitempty"`
	Description   string `json:"description,omitempty"`
	MemberAddress string `json:"memberAddress,omitempty"`
	Deadline      uint64 `json:"deadline,omitempty"`
	Approve       bool   `json:"approve,omitempty"`
}

// Standing is the local membership requirement checked before any network
// round trip.
type Standing int

const (
	// StandingNone - no local requirement
	StandingNone Standing = iota
	// StandingMember - caller must be in the organization's member set
	StandingMember
	// StandingNotMember - caller must not already be a member
	StandingNotMember
)

// RequiredStanding returns the local pre-check an action is subject to.
func (a Action) RequiredStanding() Standing {
	switch a {
	case ActionCreateOrganization:
		return StandingNone
	case ActionJoinOrganization:
		return StandingNotMember
	default:
		return StandingMember
	}
}

// Refresh identifies which entity is re-synced after a successful write.
type Refresh int

const (
	// RefreshOrganization - re-assemble the single affected organization
	RefreshOrganization Refresh = iota
	// RefreshProposal - re-assemble only the affected proposal
	RefreshProposal
	// RefreshRegistry - pick up organizations newly listed in the registry
	RefreshRegistry
)

// AffectedEntity returns the refresh granularity of an action.
func (a Action) AffectedEntity() Refresh {
	switch a {
	case ActionCreateOrganization:
		return RefreshRegistry
	case ActionVote:
		return RefreshProposal
	default:
		return RefreshOrganization
	}
}

// Valid reports whether the action is part of the catalog.
func (a Action) Valid() bool {
	switch a {
	case ActionCreateOrganization, ActionJoinOrganization, ActionCreateProposal,
		ActionVote, ActionRemoveMember, ActionPromoteAdmin:
		return true
	}
	return false
}
