package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newProvisionCmd(load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "provision",
		Short: "Create the carrier record from configuration",
		Long:  "Write a new carrier record to the inventory system holding the configured credentials and print defaults.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, load, func(ctx context.Context, svc *Services) error {
				if err := svc.Provisioner.Provision(ctx); err != nil {
					return fmt.Errorf("provisioning failed: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "carrier provisioned")
				return nil
			})
		},
	}
}
