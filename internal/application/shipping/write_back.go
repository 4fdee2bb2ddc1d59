package shipping

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/erp/carrier-transport/internal/domain/shipping"
	"github.com/erp/carrier-transport/internal/infrastructure/telemetry"
	"golang.org/x/sync/errgroup"
)

// writeBack applies the writes of an accepted reconciliation. The writes are
// independent and issued concurrently; all of them are awaited and every failure
// is reported. It returns the archive locations of the labels, if archiving is on.
func (s *LabelService) writeBack(ctx context.Context, rec *shipping.Reconciliation) ([]string, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "label", "write_back")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrWrites, rec.WriteCount())

	var (
		mu       sync.Mutex
		errs     []error
		archived []string
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	// Not errgroup.WithContext: one failed write must not cancel the others.
	var g errgroup.Group
	g.SetLimit(s.writeConcurrency)

	for _, a := range rec.Attachments {
		g.Go(func() error {
			err := s.inventory.AddAttachment(ctx, a)
			s.recordWrite(ctx, telemetry.WriteKindAttachment, err)
			if err != nil {
				fail(fmt.Errorf("attach %s to shipment %d: %w", a.FileName, a.ShipmentID, err))
			}
			return nil
		})
		if s.archive != nil {
			g.Go(func() error {
				location, err := s.archive.Archive(ctx, a)
				s.recordWrite(ctx, telemetry.WriteKindArchive, err)
				if err != nil {
					fail(fmt.Errorf("archive %s: %w", a.FileName, err))
					return nil
				}
				mu.Lock()
				archived = append(archived, location)
				mu.Unlock()
				return nil
			})
		}
	}

	for _, u := range rec.TrackingUpdates {
		g.Go(func() error {
			err := s.inventory.SetTrackingNumber(ctx, u)
			s.recordWrite(ctx, telemetry.WriteKindTrackingNumber, err)
			if err != nil {
				fail(fmt.Errorf("set tracking number of shipping container %d: %w", u.ShippingContainerID, err))
			}
			return nil
		})
	}

	if u := rec.ShipmentUpdate; u != nil {
		g.Go(func() error {
			err := s.inventory.SetCarriersShipmentNumber(ctx, *u)
			s.recordWrite(ctx, telemetry.WriteKindShipmentNumber, err)
			if err != nil {
				fail(fmt.Errorf("set carrier's shipment number of shipment %d: %w", u.ShipmentID, err))
			}
			return nil
		})
	}

	_ = g.Wait()

	if err := errors.Join(errs...); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return archived, nil
}
