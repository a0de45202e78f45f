package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validSyncTransaction(id string) SyncTransaction {
	return SyncTransaction{
		TransactionID: id,
		CustomerID:    "customer",
		VendorID:      "vendor",
		TotalAmount:   1.5,
	}
}

func TestValidateSyncTransaction(t *testing.T) {
	txn := validSyncTransaction("txn_1")
	assert.NoError(t, txn.ValidateSyncTransaction())

	missingCustomer := validSyncTransaction("txn_2")
	missingCustomer.CustomerID = ""
	assert.Error(t, missingCustomer.ValidateSyncTransaction())

	missingID := validSyncTransaction("")
	assert.Error(t, missingID.ValidateSyncTransaction())

	zeroAmount := validSyncTransaction("txn_3")
	zeroAmount.TotalAmount = 0
	assert.NoError(t, zeroAmount.ValidateSyncTransaction())
}

func TestValidateSyncBatch(t *testing.T) {
	batch := SyncBatch{Transactions: []SyncTransaction{
		validSyncTransaction("txn_1"),
		validSyncTransaction("txn_2"),
	}}
	assert.NoError(t, batch.ValidateSyncBatch())

	empty := SyncBatch{}
	assert.NoError(t, empty.ValidateSyncBatch())

	duplicate := SyncBatch{Transactions: []SyncTransaction{
		validSyncTransaction("txn_1"),
		validSyncTransaction("txn_1"),
	}}
	err := duplicate.ValidateSyncBatch()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate transaction id")
}

func TestValidateCreateTransaction(t *testing.T) {
	create := CreateTransaction{
		CustomerID:  "customer",
		VendorID:    "vendor",
		TotalAmount: 0.5,
	}
	assert.NoError(t, create.ValidateCreateTransaction())

	create.TotalAmount = 0
	assert.NoError(t, create.ValidateCreateTransaction())

	create.TotalAmount = -1
	assert.Error(t, create.ValidateCreateTransaction())

	create.TotalAmount = math.Inf(1)
	assert.Error(t, create.ValidateCreateTransaction())
}

func TestValidateVendorEvent(t *testing.T) {
	event := VendorEvent{VendorID: "vendor-1", Name: "Corner Store"}
	assert.NoError(t, event.ValidateVendorEvent())

	event.Name = ""
	assert.Error(t, event.ValidateVendorEvent())
}
