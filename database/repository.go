/*
Copyright 2024 Offgrid Pay Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package database

import (
	"context"

	"github.com/offgridpay/solsync/model"
)

// IDataSource defines the interface for durable-store operations, grouping related functionalities.
type IDataSource interface {
	transaction // Interface for transaction lifecycle operations
	vendor      // Interface for vendor event operations
}

// transaction defines methods for the pending and confirmed transaction collections.
type transaction interface {
	RecordPendingTransaction(ctx context.Context, txn *model.OfflineTransaction) (*model.PendingTransaction, error) // Records a freshly queued offline transaction
	GetPendingTransaction(ctx context.Context, id string) (*model.PendingTransaction, error)                        // Retrieves a pending record by transaction id
	GetConfirmedTransaction(ctx context.Context, id string) (*model.ConfirmedTransaction, error)                    // Retrieves a confirmed record by transaction id
	ConfirmedTransactionExists(ctx context.Context, id string) (bool, error)                                        // Checks whether a transaction is already confirmed
	GetFailedPendingTransactions(ctx context.Context, limit int) ([]*model.PendingTransaction, error)               // Retrieves failed pending records for resync
	CommitSyncResults(ctx context.Context, confirmed []*model.ConfirmedTransaction, failures []*model.SyncFailure) error
}

// vendor defines methods for vendor event records.
type vendor interface {
	UpsertVendorEvent(ctx context.Context, event *model.VendorEvent) error
}
