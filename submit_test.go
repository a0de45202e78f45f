package solsync

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"

	"github.com/offgridpay/solsync/ledger"
	"github.com/offgridpay/solsync/model"
)

func newTransferOperation(signer *MockSigner) *model.TransferOperation {
	return &model.TransferOperation{
		TransactionID: "txn_submit",
		Sender:        solana.NewWallet().PublicKey(),
		Receiver:      solana.NewWallet().PublicKey(),
		Lamports:      1_000_000,
		Blockhash:     solana.Hash{8},
		FeePayer:      signer.Key,
	}
}

func TestSubmitTransfer_Success(t *testing.T) {
	s, _, mockLedger, mockSigner := newTestSolsync(t)

	signed := false
	mockSigner.MockSignTransfer = func(tx *solana.Transaction) error {
		signed = true
		return nil
	}
	want := solana.Signature{11}
	mockLedger.MockSubmitTransfer = func(_ context.Context, tx *solana.Transaction) (solana.Signature, error) {
		assert.Len(t, tx.Message.Instructions, 1)
		return want, nil
	}

	sig, err := s.SubmitTransfer(context.Background(), newTransferOperation(mockSigner))
	assert.NoError(t, err)
	assert.True(t, signed)
	assert.Equal(t, want, sig)
}

func TestSubmitTransfer_SignatureRejected(t *testing.T) {
	s, _, mockLedger, mockSigner := newTestSolsync(t)

	mockSigner.MockSignTransfer = func(tx *solana.Transaction) error {
		return ledger.ErrSignatureRejected
	}
	submitted := false
	mockLedger.MockSubmitTransfer = func(_ context.Context, _ *solana.Transaction) (solana.Signature, error) {
		submitted = true
		return solana.Signature{}, nil
	}

	_, err := s.SubmitTransfer(context.Background(), newTransferOperation(mockSigner))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ledger.ErrSignatureRejected))
	assert.False(t, submitted)
}

func TestSubmitTransfer_NetworkFailure(t *testing.T) {
	s, _, mockLedger, mockSigner := newTestSolsync(t)

	mockLedger.MockSubmitTransfer = func(_ context.Context, _ *solana.Transaction) (solana.Signature, error) {
		return solana.Signature{}, ledger.ErrNetworkSubmitFailed
	}

	_, err := s.SubmitTransfer(context.Background(), newTransferOperation(mockSigner))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ledger.ErrNetworkSubmitFailed))
}
