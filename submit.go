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

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/offgridpay/solsync/ledger"
	"github.com/offgridpay/solsync/model"
)

// SubmitTransfer signs and submits one transfer operation to the ledger
// network. Exactly one network submission happens per call; retries are the
// orchestrator's decision, never this function's.
func (s *Solsync) SubmitTransfer(ctx context.Context, op *model.TransferOperation) (solana.Signature, error) {
	ctx, span := otel.Tracer("Sync transaction").Start(ctx, "Submitting transfer to ledger")
	defer span.End()

	instruction := system.NewTransferInstruction(op.Lamports, op.Sender, op.Receiver).Build()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{instruction},
		op.Blockhash,
		solana.TransactionPayer(op.FeePayer),
	)
	if err != nil {
		return solana.Signature{}, errors.Wrap(ledger.ErrNetworkSubmitFailed, err.Error())
	}

	if err := s.signer.SignTransfer(tx); err != nil {
		return solana.Signature{}, err
	}

	return s.ledger.SubmitTransfer(ctx, tx)
}
