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

package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"

	"github.com/offgridpay/solsync/model"
)

// Client is the ledger network surface the sync engine depends on. The
// production implementation wraps a Solana RPC endpoint; tests swap in a
// double.
type Client interface {
	// LatestBlockhash fetches a recent blockhash, the freshness token attached
	// to every transfer operation.
	LatestBlockhash(ctx context.Context) (solana.Hash, error)

	// SubmitTransfer submits a signed transaction. Exactly one submission
	// attempt reaches the network per call.
	SubmitTransfer(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)

	// GetTransaction looks up a confirmed transfer by signature.
	GetTransaction(ctx context.Context, signature solana.Signature) (*model.LedgerTransaction, error)

	// GetBalance returns the lamport balance of an account.
	GetBalance(ctx context.Context, account solana.PublicKey) (uint64, error)
}

type rpcClient struct {
	client     *rpc.Client
	commitment rpc.CommitmentType
}

// NewRPCClient creates a ledger client backed by the given Solana RPC endpoint.
func NewRPCClient(endpoint string, commitment string) Client {
	if commitment == "" {
		commitment = string(rpc.CommitmentConfirmed)
	}
	return &rpcClient{
		client:     rpc.New(endpoint),
		commitment: rpc.CommitmentType(commitment),
	}
}

func (c *rpcClient) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	result, err := c.client.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		return solana.Hash{}, errors.Wrap(ErrLedgerUnavailable, err.Error())
	}
	return result.Value.Blockhash, nil
}

func (c *rpcClient) SubmitTransfer(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := c.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: c.commitment,
	})
	if err != nil {
		if isBlockhashNotFound(err) {
			return solana.Signature{}, errors.Wrap(ErrFreshnessExpired, err.Error())
		}
		return solana.Signature{}, errors.Wrap(ErrNetworkSubmitFailed, err.Error())
	}
	return sig, nil
}

func (c *rpcClient) GetTransaction(ctx context.Context, signature solana.Signature) (*model.LedgerTransaction, error) {
	result, err := c.client.GetTransaction(ctx, signature, &rpc.GetTransactionOpts{
		Commitment: c.commitment,
	})
	if err != nil {
		return nil, errors.Wrap(ErrLedgerUnavailable, err.Error())
	}
	if result == nil {
		return nil, errors.New("transaction not found")
	}

	ledgerTxn := &model.LedgerTransaction{
		Signature:          signature.String(),
		ConfirmationStatus: string(c.commitment),
		Slot:               result.Slot,
	}
	if result.BlockTime != nil {
		ledgerTxn.BlockTime = time.Unix(int64(*result.BlockTime), 0)
	}
	if result.Meta != nil {
		ledgerTxn.Fee = result.Meta.Fee
		if result.Meta.Err != nil {
			ledgerTxn.ConfirmationStatus = "failed"
		}
	}
	return ledgerTxn, nil
}

func (c *rpcClient) GetBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	result, err := c.client.GetBalance(ctx, account, c.commitment)
	if err != nil {
		return 0, errors.Wrap(ErrLedgerUnavailable, err.Error())
	}
	return result.Value, nil
}

// isBlockhashNotFound detects the RPC rejection for a stale blockhash so it can
// be surfaced as ErrFreshnessExpired rather than a transport failure.
func isBlockhashNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "blockhash not found") || strings.Contains(msg, "blockhashnotfound")
}
