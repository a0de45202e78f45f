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
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offgridpay/solsync/config"
)

func TestEnqueueResync(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	config.MockConfig(&config.Configuration{
		Redis: config.RedisConfig{Dns: mr.Addr()},
	})
	cnf, err := config.Fetch()
	require.NoError(t, err)

	queue := NewQueue(cnf)
	txn := newOfflineTransaction("txn_resync", 1)

	err = queue.EnqueueResync(txn)
	assert.NoError(t, err)
	assert.NotEmpty(t, mr.Keys())

	// the task id pins the transaction, so a second enqueue is rejected
	err = queue.EnqueueResync(txn)
	assert.Error(t, err)
}
