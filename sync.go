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
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/offgridpay/solsync/config"
	"github.com/offgridpay/solsync/ledger"
	"github.com/offgridpay/solsync/model"
)

// SyncTransactions drives one batch sequentially: each transaction is built
// and submitted in input order, every outcome is collected, and the reconciler
// runs exactly once over the complete outcome set. A per-transaction failure
// never aborts the rest of the batch.
func (s *Solsync) SyncTransactions(ctx context.Context, transactions []*model.OfflineTransaction) (*model.SyncReport, error) {
	ctx, span := otel.Tracer("Sync transaction").Start(ctx, "Syncing transaction batch")
	defer span.End()

	if len(transactions) == 0 {
		return model.NewSyncReport(), nil
	}

	outcomes := make([]model.SyncOutcome, 0, len(transactions))
	for _, transaction := range transactions {
		outcomes = append(outcomes, s.processTransaction(ctx, transaction))
	}

	return s.finishSync(ctx, transactions, outcomes)
}

// SyncTransactionsBatched drives one batch with bounded parallelism:
// transactions are partitioned into fixed-size groups, each group's members
// are submitted concurrently, and groups run strictly in sequence. The
// reconciler still runs exactly once, after every group has finished.
//
// Cancellation stops new groups from being dispatched; submissions already in
// flight run to completion and their outcomes are reconciled, because a signed
// submission may have reached the ledger already.
func (s *Solsync) SyncTransactionsBatched(ctx context.Context, transactions []*model.OfflineTransaction) (*model.SyncReport, error) {
	ctx, span := otel.Tracer("Sync transaction").Start(ctx, "Syncing transaction batch in groups")
	defer span.End()

	if len(transactions) == 0 {
		return model.NewSyncReport(), nil
	}

	groupSize := config.DefaultSyncGroupSize
	if cfg, err := config.Fetch(); err == nil && cfg.Sync.GroupSize > 0 {
		groupSize = cfg.Sync.GroupSize
	}

	outcomes := make([]model.SyncOutcome, len(transactions))
	attempted := 0

	for start := 0; start < len(transactions); start += groupSize {
		end := start + groupSize
		if end > len(transactions) {
			end = len(transactions)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				outcomes[i] = s.processTransaction(ctx, transactions[i])
			}(i)
		}
		wg.Wait()
		attempted = end

		if err := ctx.Err(); err != nil {
			logrus.WithError(err).Warn("sync canceled, reconciling attempted transactions")
			report, reconcileErr := s.finishSync(context.WithoutCancel(ctx), transactions[:attempted], outcomes[:attempted])
			if reconcileErr != nil {
				return nil, reconcileErr
			}
			return report, err
		}
	}

	return s.finishSync(ctx, transactions, outcomes)
}

// finishSync reconciles the collected outcomes in one atomic commit and folds
// them into the sync report.
func (s *Solsync) finishSync(ctx context.Context, transactions []*model.OfflineTransaction, outcomes []model.SyncOutcome) (*model.SyncReport, error) {
	if _, err := s.ReconcileOutcomes(ctx, transactions, outcomes); err != nil {
		return nil, err
	}

	report := model.NewSyncReport()
	for _, outcome := range outcomes {
		if outcome.Succeeded() {
			report.Processed++
			report.Signatures[outcome.TransactionID] = outcome.Signature
		} else {
			report.Failed++
			report.Errors = append(report.Errors, model.SyncError{TransactionID: outcome.TransactionID, Error: outcome.ErrorMessage})
		}
	}

	if err := SendWebhook(NewWebhook{
		Event:   getEventFromReport(report),
		Payload: report,
	}); err != nil {
		logrus.WithError(err).Error("failed to enqueue sync webhook")
	}

	return report, nil
}

// processTransaction runs the build+submit pipeline for one transaction and
// converts any failure into an outcome. Idempotent resubmission: a transaction
// that already has a confirmed record returns its stored signature without
// touching the ledger. A stale blockhash gets one rebuild+retry; a second
// freshness failure is terminal for this attempt.
func (s *Solsync) processTransaction(ctx context.Context, transaction *model.OfflineTransaction) model.SyncOutcome {
	exists, err := s.datasource.ConfirmedTransactionExists(ctx, transaction.TransactionID)
	if err != nil {
		return failureOutcome(transaction, err)
	}
	if exists {
		confirmed, err := s.datasource.GetConfirmedTransaction(ctx, transaction.TransactionID)
		if err != nil {
			return failureOutcome(transaction, err)
		}
		logrus.WithField("transaction_id", transaction.TransactionID).Info("transaction already confirmed, skipping resubmission")
		return model.SyncOutcome{TransactionID: transaction.TransactionID, Signature: confirmed.Signature}
	}

	signature, err := s.buildAndSubmit(ctx, transaction)
	if err != nil {
		if errors.Is(err, ledger.ErrFreshnessExpired) {
			logrus.WithField("transaction_id", transaction.TransactionID).Warn("blockhash expired, rebuilding transfer")
			signature, err = s.buildAndSubmit(ctx, transaction)
		}
		if err != nil {
			if s.queue != nil && isRetryable(err) {
				if qErr := s.queue.EnqueueResync(transaction); qErr != nil {
					logrus.WithError(qErr).Error("failed to enqueue resync")
				}
			}
			return failureOutcome(transaction, err)
		}
	}

	return model.SyncOutcome{TransactionID: transaction.TransactionID, Signature: signature.String()}
}

// isRetryable reports whether a later attempt could plausibly succeed without
// operator intervention. Validation and signer errors are terminal.
func isRetryable(err error) bool {
	return errors.Is(err, ledger.ErrLedgerUnavailable) ||
		errors.Is(err, ledger.ErrNetworkSubmitFailed) ||
		errors.Is(err, ledger.ErrFreshnessExpired)
}

func (s *Solsync) buildAndSubmit(ctx context.Context, transaction *model.OfflineTransaction) (solana.Signature, error) {
	op, err := s.BuildTransfer(ctx, transaction)
	if err != nil {
		return solana.Signature{}, err
	}
	return s.SubmitTransfer(ctx, op)
}

// ResyncFailedTransactions reruns the sync pipeline over pending transactions
// whose last attempt failed. Invoked by the resync worker; resubmission stays
// idempotent through the confirmed-record check.
func (s *Solsync) ResyncFailedTransactions(ctx context.Context, limit int) (*model.SyncReport, error) {
	failed, err := s.datasource.GetFailedPendingTransactions(ctx, limit)
	if err != nil {
		return nil, err
	}

	transactions := make([]*model.OfflineTransaction, 0, len(failed))
	for _, pending := range failed {
		transaction := pending.OfflineTransaction
		transactions = append(transactions, &transaction)
	}

	return s.SyncTransactionsBatched(ctx, transactions)
}

func failureOutcome(transaction *model.OfflineTransaction, err error) model.SyncOutcome {
	logrus.WithFields(logrus.Fields{
		"transaction_id": transaction.TransactionID,
	}).WithError(err).Error("transaction sync failed")
	return model.SyncOutcome{TransactionID: transaction.TransactionID, ErrorMessage: err.Error()}
}
