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
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/offgridpay/solsync"
	model2 "github.com/offgridpay/solsync/api/model"
	"github.com/offgridpay/solsync/internal/apierror"
	"github.com/offgridpay/solsync/ledger"
)

// SyncTransactions handles a batch sync request. The whole payload is
// validated before any ledger or store call; per-transaction failures are
// reported in the response body, never as a failed request.
//
// Responses:
// - 400 Bad Request: If the payload is malformed or fails validation.
// - 200 OK: The sync report for the batch.
func (a Api) SyncTransactions(c *gin.Context) {
	var batch model2.SyncBatch
	if err := c.ShouldBindJSON(&batch); err != nil {
		logrus.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if err := batch.ValidateSyncBatch(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	report, err := a.solsync.SyncTransactionsBatched(c.Request.Context(), batch.ToOfflineTransactions())
	if err != nil {
		logrus.Error(err)
		if errors.Is(err, solsync.ErrReconcileCommitFailed) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "report": report})
}

// CreateTransaction records a single offline transaction in the pending
// collection.
//
// Responses:
// - 400 Bad Request: If the payload is malformed or fails validation.
// - 201 Created: The stored pending transaction.
func (a Api) CreateTransaction(c *gin.Context) {
	var newTransaction model2.CreateTransaction
	if err := c.ShouldBindJSON(&newTransaction); err != nil {
		logrus.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if err := newTransaction.ValidateCreateTransaction(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.solsync.RecordTransaction(c.Request.Context(), newTransaction.ToOfflineTransaction())
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetTransactionStatus resolves the durable-store state of a transaction.
//
// Responses:
// - 400 Bad Request: If the id is missing from the route.
// - 404 Not Found: If no pending or confirmed record exists.
// - 200 OK: The transaction status.
func (a Api) GetTransactionStatus(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	status, err := a.solsync.GetTransactionStatus(c.Request.Context(), id)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, status)
}

// SyncVendorEvent upserts vendor profile data pushed by an offline client.
//
// Responses:
// - 400 Bad Request: If the payload is malformed or fails validation.
// - 200 OK: If the vendor event is stored.
func (a Api) SyncVendorEvent(c *gin.Context) {
	var event model2.VendorEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		logrus.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if err := event.ValidateVendorEvent(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := a.solsync.SyncVendorEvent(c.Request.Context(), event.ToVendorEvent()); err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ValidateLedgerTransaction looks up a transfer on the ledger network by its
// signature.
//
// Responses:
// - 400 Bad Request: If the signature is malformed.
// - 200 OK: The on-chain view of the transfer.
func (a Api) ValidateLedgerTransaction(c *gin.Context) {
	signature, passed := c.Params.Get("signature")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "signature is required. pass signature in the route /:signature"})
		return
	}

	transaction, err := a.solsync.ValidateLedgerTransaction(c.Request.Context(), signature)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, transaction)
}

// GetBalance returns the balance of a ledger account.
//
// Responses:
// - 400 Bad Request: If the account address is malformed.
// - 200 OK: The balance in lamports and SOL.
func (a Api) GetBalance(c *gin.Context) {
	account, passed := c.Params.Get("account")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account is required. pass account in the route /:account"})
		return
	}

	balance, err := a.solsync.GetBalance(c.Request.Context(), account)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidAccount) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, balance)
}
