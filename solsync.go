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
	"errors"
	"fmt"

	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/offgridpay/solsync/cache"
	"github.com/offgridpay/solsync/config"
	"github.com/offgridpay/solsync/database"
	"github.com/offgridpay/solsync/internal/apierror"
	redis_db "github.com/offgridpay/solsync/internal/redis-db"
	"github.com/offgridpay/solsync/ledger"
	"github.com/offgridpay/solsync/model"
)

// balanceCacheTTL bounds how stale a cached balance snapshot may be.
const balanceCacheTTL = 10 * time.Second

// Solsync represents the main struct for the sync engine. It ties the durable
// store, the ledger client, the signer and the task queue together.
type Solsync struct {
	queue      *Queue
	redis      redis.UniversalClient
	cache      cache.Cache
	datasource database.IDataSource
	ledger     ledger.Client
	signer     ledger.Signer
}

// NewSolsync initializes a new instance of Solsync with the provided database
// datasource. It fetches the configuration and initializes the Redis client,
// the ledger RPC client, the signer and the queue. A missing or invalid signer
// key fails construction; transactions are never submitted unsigned.
func NewSolsync(db database.IDataSource) (*Solsync, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	redisClient, err := redis_db.NewRedisClient(fmt.Sprintf("redis://%s", configuration.Redis.Dns))
	if err != nil {
		return nil, err
	}
	signer, err := ledger.NewKeypairSigner(configuration.Solana.SignerKey)
	if err != nil {
		return nil, err
	}
	ledgerClient := ledger.NewRPCClient(configuration.Solana.RpcEndpoint, configuration.Solana.Commitment)
	newQueue := NewQueue(configuration)
	newCache, err := cache.NewCache()
	if err != nil {
		return nil, err
	}

	newSolsync := &Solsync{
		datasource: db,
		queue:      newQueue,
		redis:      redisClient.Client(),
		cache:      newCache,
		ledger:     ledgerClient,
		signer:     signer,
	}
	return newSolsync, nil
}

// NewSolsyncWithDeps builds an instance from explicit collaborators. Used by
// tests and by callers that manage their own ledger client lifecycle.
func NewSolsyncWithDeps(db database.IDataSource, ledgerClient ledger.Client, signer ledger.Signer) *Solsync {
	return &Solsync{
		datasource: db,
		ledger:     ledgerClient,
		signer:     signer,
	}
}

// RecordTransaction stores a single offline transaction in the pending
// collection. A missing id is assigned server-side.
func (s *Solsync) RecordTransaction(ctx context.Context, transaction *model.OfflineTransaction) (*model.PendingTransaction, error) {
	if transaction.TransactionID == "" {
		transaction.TransactionID = model.GenerateUUIDWithSuffix("txn")
	}
	return s.datasource.RecordPendingTransaction(ctx, transaction)
}

// GetTransactionStatus resolves the durable-store view of a transaction. A
// confirmed record wins over a pending one; a transaction is never both. Only
// a missing confirmed record falls through to the pending lookup; store
// failures propagate.
func (s *Solsync) GetTransactionStatus(ctx context.Context, id string) (*model.TransactionStatus, error) {
	confirmed, err := s.datasource.GetConfirmedTransaction(ctx, id)
	if err == nil {
		return &model.TransactionStatus{
			TransactionID: confirmed.TransactionID,
			Status:        confirmed.Status,
			Signature:     confirmed.Signature,
			UpdatedAt:     confirmed.SyncedAt,
		}, nil
	}
	var apiErr apierror.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != apierror.ErrNotFound {
		return nil, err
	}

	pending, err := s.datasource.GetPendingTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.TransactionStatus{
		TransactionID: pending.TransactionID,
		Status:        pending.SyncStatus,
		ErrorMessage:  pending.ErrorMessage,
		UpdatedAt:     pending.UpdatedAt,
	}, nil
}

// ValidateLedgerTransaction looks up a transfer on the ledger network by its
// signature.
func (s *Solsync) ValidateLedgerTransaction(ctx context.Context, signature string) (*model.LedgerTransaction, error) {
	sig, err := ledger.ParseSignature(signature)
	if err != nil {
		return nil, err
	}
	return s.ledger.GetTransaction(ctx, sig)
}

// GetBalance returns the lamport and SOL balance of an account. Snapshots are
// cached briefly to keep hot clients from hammering the RPC endpoint.
func (s *Solsync) GetBalance(ctx context.Context, account string) (*model.Balance, error) {
	pubkey, err := ledger.ParseAccount(account)
	if err != nil {
		return nil, err
	}

	cacheKey := "balance:" + account
	if s.cache != nil {
		var cached model.Balance
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil && cached.Account != "" {
			return &cached, nil
		}
	}

	lamports, err := s.ledger.GetBalance(ctx, pubkey)
	if err != nil {
		return nil, err
	}

	balance := &model.Balance{
		Account:  account,
		Lamports: lamports,
		Sol:      model.LamportsToSol(lamports),
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, balance, balanceCacheTTL); err != nil {
			logrus.WithError(err).Warn("failed to cache balance snapshot")
		}
	}
	return balance, nil
}

// SyncVendorEvent upserts vendor profile data pushed by an offline client.
func (s *Solsync) SyncVendorEvent(ctx context.Context, event *model.VendorEvent) error {
	return s.datasource.UpsertVendorEvent(ctx, event)
}
