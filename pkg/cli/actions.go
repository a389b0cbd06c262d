package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/movedao/dao-node/pkg/node"
	"github.com/movedao/dao-node/pkg/tx"
)

func createOrgCmd(service *node.Service) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Short:        "Create a new organization",
		Use:          "create-org [flags] [name]",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return submit(c, service, tx.ActionCreateOrganization, tx.Args{
				Name:        args[0],
				Description: description,
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "organization description")

	return cmd
}

func joinCmd(service *node.Service) *cobra.Command {
	return &cobra.Command{
		Short:        "Join an organization as a member",
		Use:          "join [organization_id]",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return submit(c, service, tx.ActionJoinOrganization, tx.Args{OrgID: args[0]})
		},
	}
}

func createProposalCmd(service *node.Service) *cobra.Command {
	var description string
	var deadline uint64

	cmd := &cobra.Command{
		Short:        "Create a proposal in an organization",
		Use:          "create-proposal [flags] [organization_id] [title]",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return submit(c, service, tx.ActionCreateProposal, tx.Args{
				OrgID:       args[0],
				Title:       args[1],
				Description: description,
				Deadline:    deadline,
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "proposal description")
	cmd.Flags().Uint64Var(&deadline, "deadline", 0, "voting deadline as epoch milliseconds")

	return cmd
}

func voteCmd(service *node.Service) *cobra.Command {
	var approve bool

	cmd := &cobra.Command{
		Short:        "Vote on a proposal",
		Use:          "vote [flags] [organization_id] [proposal_id]",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return submit(c, service, tx.ActionVote, tx.Args{
				OrgID:      args[0],
				ProposalID: args[1],
				Approve:    approve,
			})
		},
	}
	cmd.Flags().BoolVar(&approve, "approve", false, "vote yes instead of no")

	return cmd
}

func removeMemberCmd(service *node.Service) *cobra.Command {
	return &cobra.Command{
		Short:        "Remove a member from an organization",
		Use:          "remove-member [organization_id] [member_address]",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return submit(c, service, tx.ActionRemoveMember, tx.Args{
				OrgID:         args[0],
				MemberAddress: args[1],
			})
		},
	}
}

func promoteAdminCmd(service *node.Service) *cobra.Command {
	return &cobra.Command{
		Short:        "Promote a member to admin",
		Use:          "promote-admin [organization_id] [member_address]",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return submit(c, service, tx.ActionPromoteAdmin, tx.Args{
				OrgID:         args[0],
				MemberAddress: args[1],
			})
		},
	}
}

func submit(c *cobra.Command, service *node.Service, action tx.Action, args tx.Args) error {
	receipt, err := service.SubmitMutation(c.Context(), action, args)
	if err != nil {
		return err
	}
	fmt.Printf("%s submitted successfully, digest: %s\n", action, receipt.Digest)
	return nil
}
