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

// Signer is the capability that produces valid transaction signatures. A
// missing or misconfigured signer is a configuration error surfaced at
// construction time, never a silent success.
type Signer interface {
	SignTransfer(tx *solana.Transaction) error
	PublicKey() solana.PublicKey
}

// KeypairSigner signs with a locally held private key. Key material never
// leaves this struct and is never logged.
type KeypairSigner struct {
	key solana.PrivateKey
}

// NewKeypairSigner builds a signer from a base58-encoded private key.
func NewKeypairSigner(base58Key string) (*KeypairSigner, error) {
	if base58Key == "" {
		return nil, errors.New("signer key is not configured")
	}
	key, err := solana.PrivateKeyFromBase58(base58Key)
	if err != nil {
		return nil, errors.Wrap(err, "invalid signer key")
	}
	return &KeypairSigner{key: key}, nil
}

func (s *KeypairSigner) SignTransfer(tx *solana.Transaction) error {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.key.PublicKey()) {
			return &s.key
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(ErrSignatureRejected, err.Error())
	}
	return nil
}

func (s *KeypairSigner) PublicKey() solana.PublicKey {
	return s.key.PublicKey()
}
