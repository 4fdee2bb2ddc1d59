package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var errArchiveDisabled = errors.New("label archiving is disabled")

func newArchiveURLCmd(load Loader) *cobra.Command {
	var location string

	cmd := &cobra.Command{
		Use:   "archive-url",
		Short: "Print a download link for an archived label",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if location == "" {
				return errors.New("--location is required")
			}
			return withServices(cmd, load, func(ctx context.Context, svc *Services) error {
				if svc.Archive == nil {
					return errArchiveDisabled
				}
				url, expires, err := svc.Archive.DownloadURL(ctx, location)
				if err != nil {
					return fmt.Errorf("presigning %s: %w", location, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\nexpires %s\n", url, expires.Format(time.RFC3339))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&location, "location", "", "Archive location as reported in archived_labels")
	return cmd
}
