package solsync

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"

	"github.com/offgridpay/solsync/config"
	"github.com/offgridpay/solsync/database"
	"github.com/offgridpay/solsync/ledger"
	"github.com/offgridpay/solsync/model"
)

func newTestSolsync(t *testing.T) (*Solsync, sqlmock.Sqlmock, *MockLedger, *MockSigner) {
	t.Helper()
	config.MockConfig(&config.Configuration{})

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mockLedger := &MockLedger{}
	mockSigner := &MockSigner{Key: solana.NewWallet().PublicKey()}
	s := &Solsync{
		datasource: database.Datasource{Conn: db},
		ledger:     mockLedger,
		signer:     mockSigner,
	}
	return s, mock, mockLedger, mockSigner
}

func newOfflineTransaction(id string, amount float64) *model.OfflineTransaction {
	return &model.OfflineTransaction{
		TransactionID: id,
		CustomerID:    solana.NewWallet().PublicKey().String(),
		VendorID:      solana.NewWallet().PublicKey().String(),
		TotalAmount:   amount,
		CreatedAt:     time.Now().Add(-time.Hour),
	}
}

func expectNotConfirmed(mock sqlmock.Sqlmock, id string) {
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
}

func expectCommitWith(mock sqlmock.Sqlmock, confirmedIDs, failedIDs []string) {
	mock.ExpectBegin()
	for _, id := range confirmedIDs {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO confirmed_transactions`)).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM pending_transactions WHERE transaction_id = $1`)).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	for _, id := range failedIDs {
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE pending_transactions`)).
			WithArgs(id, model.StatusFailed, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()
}

func TestSyncTransactions_EmptyBatch(t *testing.T) {
	s, mock, _, _ := newTestSolsync(t)

	report, err := s.SyncTransactions(context.Background(), nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, report.Processed)
	assert.Equal(t, 0, report.Failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncTransactions_PartialFailureIsolation(t *testing.T) {
	s, mock, mockLedger, _ := newTestSolsync(t)

	good := newOfflineTransaction("txn_a", 1.5)
	bad := newOfflineTransaction("txn_b", -1)

	mockLedger.MockSubmitTransfer = func(_ context.Context, _ *solana.Transaction) (solana.Signature, error) {
		return solana.Signature{1}, nil
	}

	expectNotConfirmed(mock, good.TransactionID)
	expectNotConfirmed(mock, bad.TransactionID)
	expectCommitWith(mock, []string{good.TransactionID}, []string{bad.TransactionID})

	report, err := s.SyncTransactions(context.Background(), []*model.OfflineTransaction{good, bad})
	assert.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Failed)
	assert.Contains(t, report.Signatures, "txn_a")
	assert.Len(t, report.Errors, 1)
	assert.Equal(t, "txn_b", report.Errors[0].TransactionID)
	assert.Contains(t, report.Errors[0].Error, "invalid transfer amount")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncTransactions_IdempotentResubmission(t *testing.T) {
	s, mock, mockLedger, _ := newTestSolsync(t)

	txn := newOfflineTransaction("txn_dup", 2)
	storedSignature := solana.Signature{7}.String()

	submissions := 0
	mockLedger.MockSubmitTransfer = func(_ context.Context, _ *solana.Transaction) (solana.Signature, error) {
		submissions++
		return solana.Signature{2}, nil
	}

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(txn.TransactionID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT .* FROM confirmed_transactions WHERE transaction_id = \\$1").
		WithArgs(txn.TransactionID).
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id", "customer_id", "vendor_id", "total_amount", "signature", "status", "created_at", "synced_at", "meta_data"}).
			AddRow(txn.TransactionID, txn.CustomerID, txn.VendorID, txn.TotalAmount, storedSignature, model.StatusConfirmed, txn.CreatedAt, time.Now(), []byte(`{}`)))
	expectCommitWith(mock, []string{txn.TransactionID}, nil)

	report, err := s.SyncTransactions(context.Background(), []*model.OfflineTransaction{txn})
	assert.NoError(t, err)
	assert.Equal(t, 0, submissions)
	assert.Equal(t, storedSignature, report.Signatures[txn.TransactionID])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncTransactions_FreshnessExpiredRetriesOnce(t *testing.T) {
	s, mock, mockLedger, _ := newTestSolsync(t)

	txn := newOfflineTransaction("txn_stale", 1)

	submissions := 0
	mockLedger.MockSubmitTransfer = func(_ context.Context, _ *solana.Transaction) (solana.Signature, error) {
		submissions++
		if submissions == 1 {
			return solana.Signature{}, ledger.ErrFreshnessExpired
		}
		return solana.Signature{3}, nil
	}

	expectNotConfirmed(mock, txn.TransactionID)
	expectCommitWith(mock, []string{txn.TransactionID}, nil)

	report, err := s.SyncTransactions(context.Background(), []*model.OfflineTransaction{txn})
	assert.NoError(t, err)
	assert.Equal(t, 2, submissions)
	assert.Equal(t, 1, report.Processed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncTransactions_FreshnessExpiredTwiceIsTerminal(t *testing.T) {
	s, mock, mockLedger, _ := newTestSolsync(t)

	txn := newOfflineTransaction("txn_stale", 1)

	submissions := 0
	mockLedger.MockSubmitTransfer = func(_ context.Context, _ *solana.Transaction) (solana.Signature, error) {
		submissions++
		return solana.Signature{}, ledger.ErrFreshnessExpired
	}

	expectNotConfirmed(mock, txn.TransactionID)
	expectCommitWith(mock, nil, []string{txn.TransactionID})

	report, err := s.SyncTransactions(context.Background(), []*model.OfflineTransaction{txn})
	assert.NoError(t, err)
	assert.Equal(t, 2, submissions)
	assert.Equal(t, 1, report.Failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncTransactionsBatched_GroupsAreBounded(t *testing.T) {
	s, mock, mockLedger, _ := newTestSolsync(t)

	var transactions []*model.OfflineTransaction
	var confirmedIDs []string
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("txn_%02d", i)
		transactions = append(transactions, newOfflineTransaction(id, 0.25))
		confirmedIDs = append(confirmedIDs, id)
	}

	var inFlight, maxInFlight atomic.Int32
	mockLedger.MockSubmitTransfer = func(_ context.Context, _ *solana.Transaction) (solana.Signature, error) {
		current := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			observed := maxInFlight.Load()
			if current <= observed || maxInFlight.CompareAndSwap(observed, current) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		return solana.Signature{4}, nil
	}

	mock.MatchExpectationsInOrder(false)
	for _, txn := range transactions {
		expectNotConfirmed(mock, txn.TransactionID)
	}
	expectCommitWith(mock, confirmedIDs, nil)

	report, err := s.SyncTransactionsBatched(context.Background(), transactions)
	assert.NoError(t, err)
	assert.Equal(t, 12, report.Processed)
	assert.LessOrEqual(t, maxInFlight.Load(), int32(config.DefaultSyncGroupSize))
}

func TestSyncTransactions_ReconcileCommitFailure(t *testing.T) {
	s, mock, mockLedger, _ := newTestSolsync(t)

	txn := newOfflineTransaction("txn_commit", 1)
	mockLedger.MockSubmitTransfer = func(_ context.Context, _ *solana.Transaction) (solana.Signature, error) {
		return solana.Signature{5}, nil
	}

	expectNotConfirmed(mock, txn.TransactionID)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO confirmed_transactions`)).
		WillReturnError(errors.New("store unavailable"))
	mock.ExpectRollback()

	_, err := s.SyncTransactions(context.Background(), []*model.OfflineTransaction{txn})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrReconcileCommitFailed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResyncFailedTransactions(t *testing.T) {
	s, mock, mockLedger, _ := newTestSolsync(t)

	txn := newOfflineTransaction("txn_retry", 0.5)
	mockLedger.MockSubmitTransfer = func(_ context.Context, _ *solana.Transaction) (solana.Signature, error) {
		return solana.Signature{6}, nil
	}

	rows := sqlmock.NewRows([]string{"transaction_id", "customer_id", "vendor_id", "total_amount", "sync_status", "error_message", "created_at", "updated_at", "meta_data"}).
		AddRow(txn.TransactionID, txn.CustomerID, txn.VendorID, txn.TotalAmount, model.StatusFailed, "submit failed", txn.CreatedAt, time.Now(), []byte(`{}`))
	mock.ExpectQuery("SELECT .* FROM pending_transactions WHERE sync_status = \\$1").
		WithArgs(model.StatusFailed, 10).
		WillReturnRows(rows)
	expectNotConfirmed(mock, txn.TransactionID)
	expectCommitWith(mock, []string{txn.TransactionID}, nil)

	report, err := s.ResyncFailedTransactions(context.Background(), 10)
	assert.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
