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

package solsync

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/offgridpay/solsync/internal/notification"
	"github.com/offgridpay/solsync/model"
)

// ErrReconcileCommitFailed means the durable store rejected the reconcile
// batch. No write from the batch applied; every transaction stays pending and
// the whole sync is safe to retry.
var ErrReconcileCommitFailed = errors.New("reconcile commit failed")

// ReconcileOutcomes moves every transaction in the batch to its terminal
// state in one atomic store commit: accepted submissions become confirmed
// records and their pending rows are removed, failed ones are marked failed in
// place. Either the whole batch commits or none of it does. The report echoes
// the chosen state per transaction in input order.
func (s *Solsync) ReconcileOutcomes(ctx context.Context, transactions []*model.OfflineTransaction, outcomes []model.SyncOutcome) (*model.ReconcileReport, error) {
	ctx, span := otel.Tracer("Sync transaction").Start(ctx, "Reconciling sync outcomes")
	defer span.End()

	if len(transactions) != len(outcomes) {
		return nil, errors.New("transactions and outcomes are misaligned")
	}

	byID := make(map[string]*model.OfflineTransaction, len(transactions))
	for _, transaction := range transactions {
		byID[transaction.TransactionID] = transaction
	}

	var confirmed []*model.ConfirmedTransaction
	var failures []*model.SyncFailure
	report := &model.ReconcileReport{Results: make([]model.ReconcileResult, 0, len(outcomes))}

	for _, outcome := range outcomes {
		transaction, ok := byID[outcome.TransactionID]
		if !ok {
			return nil, errors.Errorf("outcome for unknown transaction %s", outcome.TransactionID)
		}
		if outcome.Succeeded() {
			confirmed = append(confirmed, model.NewConfirmedTransaction(transaction, outcome.Signature))
			report.Confirmed++
			report.Results = append(report.Results, model.ReconcileResult{TransactionID: outcome.TransactionID, Confirmed: true})
		} else {
			failures = append(failures, &model.SyncFailure{TransactionID: outcome.TransactionID, ErrorMessage: outcome.ErrorMessage})
			report.Failed++
			report.Results = append(report.Results, model.ReconcileResult{TransactionID: outcome.TransactionID, Confirmed: false})
		}
	}

	if len(confirmed) == 0 && len(failures) == 0 {
		return report, nil
	}

	if err := s.datasource.CommitSyncResults(ctx, confirmed, failures); err != nil {
		notification.NotifyError(err)
		return nil, errors.Wrap(ErrReconcileCommitFailed, err.Error())
	}

	return report, nil
}
