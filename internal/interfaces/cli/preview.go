package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errShipmentRequired = errors.New("--shipment is required")

func newPreviewCmd(load Loader) *cobra.Command {
	var shipmentID int64

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the carrier request for a shipment without submitting it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if shipmentID <= 0 {
				return errShipmentRequired
			}
			return withServices(cmd, load, func(ctx context.Context, svc *Services) error {
				preview, err := svc.Previewer.Preview(ctx, shipmentID)
				if err != nil {
					return fmt.Errorf("preview failed: %w", err)
				}
				if err := writeJSON(cmd.OutOrStdout(), preview); err != nil {
					return err
				}
				if len(preview.Rejected) > 0 {
					return fmt.Errorf("shipment %d would be rejected with %d field errors", shipmentID, len(preview.Rejected))
				}
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&shipmentID, "shipment", 0, "Shipment ID")
	return cmd
}
