package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/offgridpay/solsync/internal/apierror"
	"github.com/offgridpay/solsync/model"

	_ "github.com/lib/pq"
)

// RecordPendingTransaction inserts a freshly queued offline transaction into
// the pending collection with sync_status=pending.
func (d Datasource) RecordPendingTransaction(ctx context.Context, txn *model.OfflineTransaction) (*model.PendingTransaction, error) {
	ctx, span := otel.Tracer("Sync transaction").Start(ctx, "Saving pending transaction to db")
	defer span.End()

	metaDataJSON, err := json.Marshal(txn.MetaData)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}

	pending := &model.PendingTransaction{
		OfflineTransaction: *txn,
		SyncStatus:         model.StatusPending,
		UpdatedAt:          time.Now(),
	}

	_, err = d.Conn.ExecContext(ctx,
		`INSERT INTO pending_transactions(transaction_id,customer_id,vendor_id,total_amount,sync_status,created_at,updated_at,meta_data) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		txn.TransactionID, txn.CustomerID, txn.VendorID, txn.TotalAmount, pending.SyncStatus, txn.CreatedAt, pending.UpdatedAt, metaDataJSON,
	)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record pending transaction", err)
	}

	return pending, nil
}

// GetPendingTransaction retrieves a pending record by transaction id.
func (d Datasource) GetPendingTransaction(ctx context.Context, id string) (*model.PendingTransaction, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT transaction_id, customer_id, vendor_id, total_amount, sync_status, COALESCE(error_message, ''), created_at, updated_at, meta_data
		FROM pending_transactions
		WHERE transaction_id = $1
	`, id)

	txn := &model.PendingTransaction{}
	var metaDataJSON []byte
	err := row.Scan(&txn.TransactionID, &txn.CustomerID, &txn.VendorID, &txn.TotalAmount, &txn.SyncStatus, &txn.ErrorMessage, &txn.CreatedAt, &txn.UpdatedAt, &metaDataJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Transaction with ID '%s' not found", id), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve pending transaction", err)
	}

	if len(metaDataJSON) > 0 {
		if err := json.Unmarshal(metaDataJSON, &txn.MetaData); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal metadata", err)
		}
	}

	return txn, nil
}

// GetConfirmedTransaction retrieves a confirmed record by transaction id.
func (d Datasource) GetConfirmedTransaction(ctx context.Context, id string) (*model.ConfirmedTransaction, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT transaction_id, customer_id, vendor_id, total_amount, signature, status, created_at, synced_at, meta_data
		FROM confirmed_transactions
		WHERE transaction_id = $1
	`, id)

	txn := &model.ConfirmedTransaction{}
	var metaDataJSON []byte
	err := row.Scan(&txn.TransactionID, &txn.CustomerID, &txn.VendorID, &txn.TotalAmount, &txn.Signature, &txn.Status, &txn.CreatedAt, &txn.SyncedAt, &metaDataJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Confirmed transaction with ID '%s' not found", id), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve confirmed transaction", err)
	}

	if len(metaDataJSON) > 0 {
		if err := json.Unmarshal(metaDataJSON, &txn.MetaData); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal metadata", err)
		}
	}

	return txn, nil
}

// ConfirmedTransactionExists reports whether a transaction id already has a
// confirmed record. Used to keep resubmission idempotent.
func (d Datasource) ConfirmedTransactionExists(ctx context.Context, id string) (bool, error) {
	ctx, span := otel.Tracer("Sync transaction").Start(ctx, "Checking confirmed transaction in db")
	defer span.End()

	var exists bool
	err := d.Conn.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM confirmed_transactions WHERE transaction_id = $1)
	`, id).Scan(&exists)
	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to check if confirmed transaction exists", err)
	}

	return exists, nil
}

// GetFailedPendingTransactions retrieves pending records whose last sync
// attempt failed, oldest first, for the resync worker.
func (d Datasource) GetFailedPendingTransactions(ctx context.Context, limit int) ([]*model.PendingTransaction, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT transaction_id, customer_id, vendor_id, total_amount, sync_status, COALESCE(error_message, ''), created_at, updated_at, meta_data
		FROM pending_transactions
		WHERE sync_status = $1
		ORDER BY updated_at ASC
		LIMIT $2
	`, model.StatusFailed, limit)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve failed pending transactions", err)
	}
	defer rows.Close()

	var transactions []*model.PendingTransaction
	for rows.Next() {
		txn := &model.PendingTransaction{}
		var metaDataJSON []byte
		err = rows.Scan(&txn.TransactionID, &txn.CustomerID, &txn.VendorID, &txn.TotalAmount, &txn.SyncStatus, &txn.ErrorMessage, &txn.CreatedAt, &txn.UpdatedAt, &metaDataJSON)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan pending transaction", err)
		}
		if len(metaDataJSON) > 0 {
			if err := json.Unmarshal(metaDataJSON, &txn.MetaData); err != nil {
				return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal metadata", err)
			}
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to iterate pending transactions", err)
	}

	return transactions, nil
}

// CommitSyncResults applies the staged writes of one reconcile call as a single
// database transaction: confirmed records are inserted and their pending rows
// deleted, failed pending rows are updated in place. Either every staged write
// applies or none do.
func (d Datasource) CommitSyncResults(ctx context.Context, confirmed []*model.ConfirmedTransaction, failures []*model.SyncFailure) error {
	ctx, span := otel.Tracer("Sync transaction").Start(ctx, "Committing sync results to db")
	defer span.End()

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrServiceUnavailable, "Failed to begin sync result commit", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, txn := range confirmed {
		metaDataJSON, err := json.Marshal(txn.MetaData)
		if err != nil {
			return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO confirmed_transactions(transaction_id,customer_id,vendor_id,total_amount,signature,status,created_at,synced_at,meta_data) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			txn.TransactionID, txn.CustomerID, txn.VendorID, txn.TotalAmount, txn.Signature, txn.Status, txn.CreatedAt, txn.SyncedAt, metaDataJSON,
		)
		if err != nil {
			return apierror.NewAPIError(apierror.ErrServiceUnavailable, "Failed to stage confirmed transaction", err)
		}

		_, err = tx.ExecContext(ctx,
			`DELETE FROM pending_transactions WHERE transaction_id = $1`,
			txn.TransactionID,
		)
		if err != nil {
			return apierror.NewAPIError(apierror.ErrServiceUnavailable, "Failed to stage pending transaction removal", err)
		}
	}

	for _, failure := range failures {
		_, err = tx.ExecContext(ctx,
			`UPDATE pending_transactions SET sync_status = $2, error_message = $3, updated_at = $4 WHERE transaction_id = $1`,
			failure.TransactionID, model.StatusFailed, failure.ErrorMessage, time.Now(),
		)
		if err != nil {
			return apierror.NewAPIError(apierror.ErrServiceUnavailable, "Failed to stage pending transaction failure update", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apierror.NewAPIError(apierror.ErrServiceUnavailable, "Failed to commit sync results", err)
	}

	return nil
}
