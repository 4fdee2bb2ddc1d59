package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/erp/carrier-transport/internal/domain/shipping"
)

var errEventRequired = errors.New("--event is required")

func newRequestCmd(load Loader) *cobra.Command {
	var req shipping.LabelRequest

	cmd := &cobra.Command{
		Use:   "request",
		Short: "Run a label request as if it had been triggered",
		Long:  "Fetch the shipment, submit it to the carrier and write labels, tracking numbers and messages back.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.ShipmentID <= 0 {
				return errShipmentRequired
			}
			if req.EventID <= 0 {
				return errEventRequired
			}
			return withServices(cmd, load, func(ctx context.Context, svc *Services) error {
				result, err := svc.Requester.RequestLabels(ctx, req)
				if err != nil {
					return fmt.Errorf("label request failed: %w", err)
				}
				return writeJSON(cmd.OutOrStdout(), result)
			})
		},
	}

	cmd.Flags().Int64Var(&req.ShipmentID, "shipment", 0, "Shipment ID")
	cmd.Flags().Int64Var(&req.EventID, "event", 0, "Event ID that status messages are posted to")
	cmd.Flags().Int64Var(&req.ContextID, "context", 0, "Context ID, used when the shipment carries none")
	cmd.Flags().StringVar(&req.DeviceName, "device", "", "Device name messages are attributed to")
	cmd.Flags().StringVar(&req.UserID, "user", "", "User ID messages are attributed to")
	return cmd
}
