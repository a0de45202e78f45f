package database

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/offgridpay/solsync/internal/apierror"
	"github.com/offgridpay/solsync/model"
)

// UpsertVendorEvent creates or replaces the vendor event record, stamping it
// with a server-assigned last_updated time.
func (d Datasource) UpsertVendorEvent(ctx context.Context, event *model.VendorEvent) error {
	ctx, span := otel.Tracer("Sync transaction").Start(ctx, "Upserting vendor event in db")
	defer span.End()

	metaDataJSON, err := json.Marshal(event.MetaData)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	event.LastUpdated = time.Now()

	_, err = d.Conn.ExecContext(ctx, `
		INSERT INTO vendor_events(vendor_id, name, meta_data, last_updated)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (vendor_id)
		DO UPDATE SET name = EXCLUDED.name, meta_data = EXCLUDED.meta_data, last_updated = EXCLUDED.last_updated
	`, event.VendorID, event.Name, metaDataJSON, event.LastUpdated)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to upsert vendor event", err)
	}

	return nil
}
