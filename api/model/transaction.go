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
	"time"

	"github.com/offgridpay/solsync/model"
)

// SyncTransaction is one offline transaction in a sync request.
type SyncTransaction struct {
	TransactionID string                 `json:"id"`
	CustomerID    string                 `json:"customer_id"`
	VendorID      string                 `json:"vendor_id"`
	TotalAmount   float64                `json:"total_amount"`
	CreatedAt     time.Time              `json:"created_at"`
	MetaData      map[string]interface{} `json:"meta_data"`
}

// SyncBatch is the payload of a batch sync request.
type SyncBatch struct {
	Transactions []SyncTransaction `json:"transactions"`
}

// CreateTransaction is the payload for recording a single offline transaction.
type CreateTransaction struct {
	TransactionID string                 `json:"id"`
	CustomerID    string                 `json:"customer_id"`
	VendorID      string                 `json:"vendor_id"`
	TotalAmount   float64                `json:"total_amount"`
	MetaData      map[string]interface{} `json:"meta_data"`
}

// VendorEvent is the payload for vendor profile sync.
type VendorEvent struct {
	VendorID string                 `json:"vendor_id"`
	Name     string                 `json:"name"`
	MetaData map[string]interface{} `json:"meta_data"`
}

func (t *SyncTransaction) ToOfflineTransaction() *model.OfflineTransaction {
	return &model.OfflineTransaction{
		TransactionID: t.TransactionID,
		CustomerID:    t.CustomerID,
		VendorID:      t.VendorID,
		TotalAmount:   t.TotalAmount,
		CreatedAt:     t.CreatedAt,
		MetaData:      t.MetaData,
	}
}

func (b *SyncBatch) ToOfflineTransactions() []*model.OfflineTransaction {
	transactions := make([]*model.OfflineTransaction, 0, len(b.Transactions))
	for i := range b.Transactions {
		transactions = append(transactions, b.Transactions[i].ToOfflineTransaction())
	}
	return transactions
}

func (t *CreateTransaction) ToOfflineTransaction() *model.OfflineTransaction {
	return &model.OfflineTransaction{
		TransactionID: t.TransactionID,
		CustomerID:    t.CustomerID,
		VendorID:      t.VendorID,
		TotalAmount:   t.TotalAmount,
		CreatedAt:     time.Now(),
		MetaData:      t.MetaData,
	}
}

func (v *VendorEvent) ToVendorEvent() *model.VendorEvent {
	return &model.VendorEvent{
		VendorID: v.VendorID,
		Name:     v.Name,
		MetaData: v.MetaData,
	}
}
