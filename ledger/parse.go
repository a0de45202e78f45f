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

import (
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
)

// ParseAccount decodes a base58 account address. Malformed addresses surface
// as ErrInvalidAccount before anything touches the network.
func ParseAccount(address string) (solana.PublicKey, error) {
	if address == "" {
		return solana.PublicKey{}, errors.Wrap(ErrInvalidAccount, "account address is empty")
	}
	pubkey, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return solana.PublicKey{}, errors.Wrapf(ErrInvalidAccount, "invalid account address %q: %v", address, err)
	}
	return pubkey, nil
}

// ParseSignature decodes a base58 transaction signature.
func ParseSignature(signature string) (solana.Signature, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return solana.Signature{}, errors.Wrapf(ErrInvalidInput, "invalid transaction signature %q: %v", signature, err)
	}
	return sig, nil
}
