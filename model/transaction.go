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

package model

import (
	"encoding/json"
	"time"

	"github.com/gagliardetto/solana-go"
)

// Sync status values carried by pending and confirmed records.
const (
	StatusPending   = "pending"
	StatusFailed    = "failed"
	StatusConfirmed = "confirmed"
)

// OfflineTransaction is a payment queued by a client while offline, awaiting
// submission to the ledger network. IDs are caller-assigned and must be unique
// across the pending collection.
type OfflineTransaction struct {
	TransactionID string                 `json:"id"`
	CustomerID    string                 `json:"customer_id"`
	VendorID      string                 `json:"vendor_id"`
	TotalAmount   float64                `json:"total_amount"`
	CreatedAt     time.Time              `json:"created_at"`
	MetaData      map[string]interface{} `json:"meta_data,omitempty"`
}

func (transaction *OfflineTransaction) ToJSON() ([]byte, error) {
	return json.Marshal(transaction)
}

// TransferOperation is the ledger-native form of one offline transaction.
// It lives only for the duration of a single submission and is never persisted.
// The blockhash bounds how long the operation remains submittable.
type TransferOperation struct {
	TransactionID string
	Sender        solana.PublicKey
	Receiver      solana.PublicKey
	Lamports      uint64
	Blockhash     solana.Hash
	FeePayer      solana.PublicKey
}

// SyncOutcome records the result of one build+submit attempt. Exactly one of
// Signature or ErrorMessage is set.
type SyncOutcome struct {
	TransactionID string `json:"transaction_id"`
	Signature     string `json:"signature,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

// Succeeded reports whether the ledger accepted the submission.
func (o SyncOutcome) Succeeded() bool {
	return o.Signature != "" && o.ErrorMessage == ""
}

// PendingTransaction is the durable-store view of an offline transaction while
// it awaits sync or after a failed sync attempt. The row is deleted, not
// archived, once the transaction is confirmed.
type PendingTransaction struct {
	OfflineTransaction
	SyncStatus   string    `json:"sync_status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ConfirmedTransaction is the durable record created when the ledger accepts a
// transfer. Immutable once written.
type ConfirmedTransaction struct {
	OfflineTransaction
	Signature string    `json:"signature"`
	SyncedAt  time.Time `json:"synced_at"`
	Status    string    `json:"status"`
}

// NewConfirmedTransaction builds the confirmed record for a transaction the
// ledger accepted under the given signature.
func NewConfirmedTransaction(transaction *OfflineTransaction, signature string) *ConfirmedTransaction {
	return &ConfirmedTransaction{
		OfflineTransaction: *transaction,
		Signature:          signature,
		SyncedAt:           time.Now(),
		Status:             StatusConfirmed,
	}
}

// SyncFailure is the staged in-place update for a pending record whose
// submission failed.
type SyncFailure struct {
	TransactionID string `json:"transaction_id"`
	ErrorMessage  string `json:"error_message"`
}

// SyncError pairs a transaction id with the error that kept it from syncing.
type SyncError struct {
	TransactionID string `json:"transaction_id"`
	Error         string `json:"error"`
}

// SyncReport aggregates the result of one sync call.
type SyncReport struct {
	Processed  int               `json:"processed"`
	Failed     int               `json:"failed"`
	Signatures map[string]string `json:"signatures"`
	Errors     []SyncError       `json:"errors"`
}

func NewSyncReport() *SyncReport {
	return &SyncReport{
		Signatures: make(map[string]string),
		Errors:     []SyncError{},
	}
}

// ReconcileResult echoes the terminal state chosen for one transaction,
// in input order.
type ReconcileResult struct {
	TransactionID string `json:"transaction_id"`
	Confirmed     bool   `json:"confirmed"`
}

// ReconcileReport summarizes one atomic reconcile commit.
type ReconcileReport struct {
	Confirmed int               `json:"confirmed"`
	Failed    int               `json:"failed"`
	Results   []ReconcileResult `json:"results"`
}

// VendorEvent is vendor profile data pushed by offline clients and kept in the
// durable store alongside transaction records.
type VendorEvent struct {
	VendorID    string                 `json:"vendor_id"`
	Name        string                 `json:"name"`
	MetaData    map[string]interface{} `json:"meta_data,omitempty"`
	LastUpdated time.Time              `json:"last_updated"`
}

// LedgerTransaction is the on-chain view of a confirmed transfer, as reported
// by the ledger network.
type LedgerTransaction struct {
	Signature          string    `json:"signature"`
	ConfirmationStatus string    `json:"confirmation_status"`
	Slot               uint64    `json:"slot"`
	BlockTime          time.Time `json:"block_time,omitempty"`
	Fee                uint64    `json:"fee"`
}

// Balance is an account balance snapshot in both ledger base units and SOL.
type Balance struct {
	Account  string  `json:"account"`
	Lamports uint64  `json:"lamports"`
	Sol      float64 `json:"sol"`
}

// LamportsPerSol is the number of lamports in one SOL.
const LamportsPerSol = 1_000_000_000

// LamportsToSol converts a lamport amount to SOL for display. Exact lamport
// arithmetic stays in lamports; this is a read-side convenience only.
func LamportsToSol(lamports uint64) float64 {
	return float64(lamports) / LamportsPerSol
}

// TransactionStatus is the durable-store view of where a transaction stands.
type TransactionStatus struct {
	TransactionID string    `json:"transaction_id"`
	Status        string    `json:"status"`
	Signature     string    `json:"signature,omitempty"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}
