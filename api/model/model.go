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
	"errors"
	"math"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func finiteAmountValidation(value interface{}) error {
	amount, ok := value.(float64)
	if !ok {
		return errors.New("amount must be a number")
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return errors.New("amount must be a finite number")
	}
	if amount < 0 {
		return errors.New("amount must not be negative")
	}
	return nil
}

// ValidateSyncTransaction checks payload shape only. Amount semantics (sign,
// lamport precision) are judged per transaction inside the sync engine so a
// bad amount fails its own transaction instead of the whole batch.
func (t *SyncTransaction) ValidateSyncTransaction() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.TransactionID, validation.Required),
		validation.Field(&t.CustomerID, validation.Required),
		validation.Field(&t.VendorID, validation.Required),
	)
}

// ValidateSyncBatch validates every transaction in the batch. An empty batch
// is valid and syncs as a no-op.
func (b *SyncBatch) ValidateSyncBatch() error {
	seen := make(map[string]bool, len(b.Transactions))
	for _, transaction := range b.Transactions {
		if err := transaction.ValidateSyncTransaction(); err != nil {
			return err
		}
		if seen[transaction.TransactionID] {
			return errors.New("duplicate transaction id in batch: " + transaction.TransactionID)
		}
		seen[transaction.TransactionID] = true
	}
	return nil
}

func (t *CreateTransaction) ValidateCreateTransaction() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.CustomerID, validation.Required),
		validation.Field(&t.VendorID, validation.Required),
		validation.Field(&t.TotalAmount, validation.By(finiteAmountValidation)),
	)
}

func (v *VendorEvent) ValidateVendorEvent() error {
	return validation.ValidateStruct(v,
		validation.Field(&v.VendorID, validation.Required),
		validation.Field(&v.Name, validation.Required),
	)
}
