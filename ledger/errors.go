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

import "errors"

// Sync error taxonomy. Per-transaction errors (invalid account, invalid
// amount, rejected signature) never abort a batch; transient errors
// (unavailable, submit failed) make the whole sync safe to retry later.
var (
	// ErrInvalidInput means a request value failed shape validation before it
	// reached the ledger or the store.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidAccount means a customer or vendor id is not a well-formed
	// ledger account identifier.
	ErrInvalidAccount = errors.New("invalid account identifier")

	// ErrInvalidAmount means the transfer amount is negative, not finite, or
	// not exactly representable in lamports.
	ErrInvalidAmount = errors.New("invalid transfer amount")

	// ErrLedgerUnavailable means the ledger network could not be reached for a
	// blockhash or query. Safe to retry the whole sync later.
	ErrLedgerUnavailable = errors.New("ledger network unavailable")

	// ErrNetworkSubmitFailed means the transfer submission failed at the
	// transport level. Safe to retry later.
	ErrNetworkSubmitFailed = errors.New("transfer submission failed")

	// ErrSignatureRejected means the signer could not produce a valid
	// signature. Not retryable without operator intervention.
	ErrSignatureRejected = errors.New("signer rejected transfer")

	// ErrFreshnessExpired means the blockhash aged out before submission. The
	// orchestrator rebuilds the operation and retries once.
	ErrFreshnessExpired = errors.New("blockhash expired before submission")
)
