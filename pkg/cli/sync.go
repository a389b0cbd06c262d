package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/movedao/dao-node/pkg/config"
	"github.com/movedao/dao-node/pkg/node"
	"github.com/movedao/dao-node/pkg/node/data"
)

func listCmd(service *node.Service, cfg config.Config) *cobra.Command {
	var cached bool

	listCmd := &cobra.Command{
		Short:        "List all organizations known to the registry",
		Use:          "list [flags]",
		Long:         "Sync all organizations from the registry and print them. With --cached, print the last synced snapshot without touching the network",
		SilenceUsage: true,
		RunE: func(c *cobra.Command, args []string) error {
			if cached {
				tearDown := data.Init(cfg.DatabasePath)
				defer tearDown()
				orgs, err := data.DefaultStore().ListOrganizations()
				if err != nil {
					return err
				}
				return printJSON(orgs)
			}

			// keep the snapshot store current so --cached has data next time
			tearDown := data.Init(cfg.DatabasePath)
			defer tearDown()
			service.WithSnapshotter(data.DefaultStore())

			if err := service.Bootstrap(c.Context()); err != nil {
				return err
			}
			return printJSON(service.ListOrganizations())
		},
	}
	listCmd.Flags().BoolVar(&cached, "cached", false, "print the last synced snapshot instead of syncing")

	return listCmd
}

func showCmd(service *node.Service) *cobra.Command {
	return &cobra.Command{
		Short:        "Show a single organization",
		Use:          "show [organization_id]",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			org, err := service.GetOrganization(c.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(org)
		},
	}
}

func resyncCmd(service *node.Service) *cobra.Command {
	return &cobra.Command{
		Short:        "Force a full resync from the root registry",
		Use:          "resync",
		SilenceUsage: true,
		RunE: func(c *cobra.Command, args []string) error {
			if err := service.Bootstrap(c.Context()); err != nil {
				return err
			}
			fmt.Printf("Synced %d organizations\n", len(service.ListOrganizations()))
			return nil
		},
	}
}

func printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(append(b, '\n'))
	return err
}
