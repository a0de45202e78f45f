package solsync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/offgridpay/solsync/internal/apierror"
)

func TestGetTransactionStatus_StoreFailurePropagates(t *testing.T) {
	s, mock, _, _ := newTestSolsync(t)

	mock.ExpectQuery("SELECT (.+) FROM confirmed_transactions").
		WillReturnError(errors.New("connection reset by peer"))

	_, err := s.GetTransactionStatus(context.Background(), "txn_outage")
	assert.Error(t, err)
	var apiErr apierror.APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Equal(t, apierror.ErrInternalServer, apiErr.Code)
	assert.Contains(t, apiErr.Message, "confirmed transaction")
	assert.NoError(t, mock.ExpectationsWereMet())
}
