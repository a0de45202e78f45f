package model

import (
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
)

func TestSyncOutcomeSucceeded(t *testing.T) {
	ok := SyncOutcome{TransactionID: "txn_1", Signature: gofakeit.UUID()}
	assert.True(t, ok.Succeeded())

	failed := SyncOutcome{TransactionID: "txn_2", ErrorMessage: "invalid amount"}
	assert.False(t, failed.Succeeded())

	empty := SyncOutcome{TransactionID: "txn_3"}
	assert.False(t, empty.Succeeded())
}

func TestNewConfirmedTransaction(t *testing.T) {
	offline := &OfflineTransaction{
		TransactionID: GenerateUUIDWithSuffix("txn"),
		CustomerID:    gofakeit.UUID(),
		VendorID:      gofakeit.UUID(),
		TotalAmount:   1.5,
		CreatedAt:     time.Now().Add(-time.Hour),
	}

	signature := gofakeit.UUID()
	confirmed := NewConfirmedTransaction(offline, signature)

	assert.Equal(t, offline.TransactionID, confirmed.TransactionID)
	assert.Equal(t, offline.CustomerID, confirmed.CustomerID)
	assert.Equal(t, offline.VendorID, confirmed.VendorID)
	assert.Equal(t, signature, confirmed.Signature)
	assert.Equal(t, StatusConfirmed, confirmed.Status)
	assert.WithinDuration(t, time.Now(), confirmed.SyncedAt, time.Second)
}

func TestGenerateUUIDWithSuffix(t *testing.T) {
	id := GenerateUUIDWithSuffix("txn")
	assert.True(t, strings.HasPrefix(id, "txn_"))
	assert.NotEqual(t, id, GenerateUUIDWithSuffix("txn"))
}

func TestOfflineTransactionToJSON(t *testing.T) {
	offline := &OfflineTransaction{
		TransactionID: "txn_1",
		CustomerID:    gofakeit.UUID(),
		VendorID:      gofakeit.UUID(),
		TotalAmount:   0.25,
	}

	data, err := offline.ToJSON()
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"id":"txn_1"`)
}
