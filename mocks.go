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

	"github.com/gagliardetto/solana-go"

	"github.com/offgridpay/solsync/model"
)

// MockLedger is a ledger.Client double for tests. Unset hooks return zero
// values.
type MockLedger struct {
	MockLatestBlockhash func(ctx context.Context) (solana.Hash, error)
	MockSubmitTransfer  func(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	MockGetTransaction  func(ctx context.Context, signature solana.Signature) (*model.LedgerTransaction, error)
	MockGetBalance      func(ctx context.Context, account solana.PublicKey) (uint64, error)
}

func (m *MockLedger) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	if m.MockLatestBlockhash != nil {
		return m.MockLatestBlockhash(ctx)
	}
	return solana.Hash{}, nil
}

func (m *MockLedger) SubmitTransfer(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	if m.MockSubmitTransfer != nil {
		return m.MockSubmitTransfer(ctx, tx)
	}
	return solana.Signature{}, nil
}

func (m *MockLedger) GetTransaction(ctx context.Context, signature solana.Signature) (*model.LedgerTransaction, error) {
	if m.MockGetTransaction != nil {
		return m.MockGetTransaction(ctx, signature)
	}
	return &model.LedgerTransaction{Signature: signature.String()}, nil
}

func (m *MockLedger) GetBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	if m.MockGetBalance != nil {
		return m.MockGetBalance(ctx, account)
	}
	return 0, nil
}

// MockSigner is a ledger.Signer double that signs nothing and reports a fixed
// public key.
type MockSigner struct {
	MockSignTransfer func(tx *solana.Transaction) error
	Key              solana.PublicKey
}

func (m *MockSigner) SignTransfer(tx *solana.Transaction) error {
	if m.MockSignTransfer != nil {
		return m.MockSignTransfer(tx)
	}
	return nil
}

func (m *MockSigner) PublicKey() solana.PublicKey {
	return m.Key
}
