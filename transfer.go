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
	"math"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"

	"github.com/offgridpay/solsync/config"
	"github.com/offgridpay/solsync/ledger"
	"github.com/offgridpay/solsync/model"
)

// BuildTransfer translates one offline transaction into a ledger-native
// transfer operation. Validation (accounts, amount) happens before any network
// call; only a fully validated operation fetches a blockhash. The returned
// operation is short-lived and must be submitted before its blockhash ages out.
func (s *Solsync) BuildTransfer(ctx context.Context, transaction *model.OfflineTransaction) (*model.TransferOperation, error) {
	ctx, span := otel.Tracer("Sync transaction").Start(ctx, "Building transfer operation")
	defer span.End()

	sender, err := ledger.ParseAccount(transaction.CustomerID)
	if err != nil {
		return nil, err
	}
	receiver, err := ledger.ParseAccount(transaction.VendorID)
	if err != nil {
		return nil, err
	}

	lamports, err := toLamports(transaction.TotalAmount)
	if err != nil {
		return nil, err
	}

	feePayer, err := s.feePayer()
	if err != nil {
		return nil, err
	}

	blockhash, err := s.fetchBlockhash(ctx)
	if err != nil {
		return nil, err
	}

	return &model.TransferOperation{
		TransactionID: transaction.TransactionID,
		Sender:        sender,
		Receiver:      receiver,
		Lamports:      lamports,
		Blockhash:     blockhash,
		FeePayer:      feePayer,
	}, nil
}

// feePayer resolves the account that funds network fees. A configured fee
// payer takes precedence; otherwise the signer pays its own fees.
func (s *Solsync) feePayer() (solana.PublicKey, error) {
	conf, err := config.Fetch()
	if err == nil && conf.Solana.FeePayer != "" {
		return ledger.ParseAccount(conf.Solana.FeePayer)
	}
	return s.signer.PublicKey(), nil
}

// fetchBlockhash retrieves a recent blockhash with a short exponential
// backoff. A blockhash that cannot be fetched means the ledger is unreachable
// and the whole batch should be retried later.
func (s *Solsync) fetchBlockhash(ctx context.Context) (solana.Hash, error) {
	var blockhash solana.Hash
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = 5 * time.Second

	err := backoff.Retry(func() error {
		var err error
		blockhash, err = s.ledger.LatestBlockhash(ctx)
		return err
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		if errors.Is(err, ledger.ErrLedgerUnavailable) {
			return solana.Hash{}, err
		}
		return solana.Hash{}, errors.Wrap(ledger.ErrLedgerUnavailable, err.Error())
	}
	return blockhash, nil
}

// toLamports converts a SOL amount to lamports exactly. Amounts that are not
// finite, negative, or carry sub-lamport precision are rejected. Zero is a
// valid amount; the ledger accepts zero-lamport transfers.
func toLamports(amount float64) (uint64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, errors.Wrapf(ledger.ErrInvalidAmount, "amount %v is not a finite number", amount)
	}
	if amount < 0 {
		return 0, errors.Wrapf(ledger.ErrInvalidAmount, "amount %v must not be negative", amount)
	}

	lamports := decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(model.LamportsPerSol))
	if !lamports.IsInteger() {
		return 0, errors.Wrapf(ledger.ErrInvalidAmount, "amount %v has sub-lamport precision", amount)
	}
	if !lamports.BigInt().IsUint64() {
		return 0, errors.Wrapf(ledger.ErrInvalidAmount, "amount %v overflows the lamport range", amount)
	}
	return lamports.BigInt().Uint64(), nil
}
