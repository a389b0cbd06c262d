package cli

import (
	"flag"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/movedao/dao-node/pkg/config"
	"github.com/movedao/dao-node/pkg/ledger"
	"github.com/movedao/dao-node/pkg/mutate"
	"github.com/movedao/dao-node/pkg/node"
	"github.com/movedao/dao-node/pkg/tx"
)

const version = "0.1.0"

// NewCLI creates a cli instance
func NewCLI(cfg config.Config) (*cobra.Command, error) {
	service := node.NewService(cfg, ledger.NewClient(cfg), tx.NewHTTPSubmitter(cfg)).
		WithListener(printPhase)

	daoNodeCLI := &cobra.Command{
		Short: fmt.Sprintf("The dao-node command line interface"),
		Use:   fmt.Sprintf("dao-node-cli"),
	}

	commands := []*cobra.Command{
		listCmd(service, cfg),
		showCmd(service),
		resyncCmd(service),
		createOrgCmd(service),
		joinCmd(service),
		createProposalCmd(service),
		voteCmd(service),
		removeMemberCmd(service),
		promoteAdminCmd(service),
	}

	daoNodeCLI.Version = version
	daoNodeCLI.AddCommand(commands...)
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)

	return daoNodeCLI, nil
}

func printPhase(mutationID string, phase mutate.Phase) {
	fmt.Printf("mutation %s: %s\n", mutationID, phase)
}
