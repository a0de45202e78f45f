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
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"

	"github.com/offgridpay/solsync/config"
	redis_db "github.com/offgridpay/solsync/internal/redis-db"
	"github.com/offgridpay/solsync/model"
)

// Queue represents a queue for background sync tasks.
type Queue struct {
	Client    *asynq.Client
	Inspector *asynq.Inspector
}

// ResyncPayload is the payload of one resync task.
type ResyncPayload struct {
	Data model.OfflineTransaction
}

// NewQueue initializes a new Queue instance with the provided configuration.
func NewQueue(conf *config.Configuration) *Queue {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns)
	if err != nil {
		log.Fatalf("Error parsing Redis URL: %v", err)
	}

	queueOptions := asynq.RedisClientOpt{Addr: redisOption.Addr, Password: redisOption.Password, DB: redisOption.DB, TLSConfig: redisOption.TLSConfig}
	client := asynq.NewClient(queueOptions)
	inspector := asynq.NewInspector(queueOptions)
	return &Queue{
		Client:    client,
		Inspector: inspector,
	}
}

// EnqueueResync schedules a failed transaction for a background sync attempt.
// The task id is the transaction id, so a transaction is queued at most once
// until its task completes.
func (q *Queue) EnqueueResync(transaction *model.OfflineTransaction) error {
	cfg, err := config.Fetch()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(ResyncPayload{Data: *transaction})
	if err != nil {
		return err
	}
	taskOptions := []asynq.Option{
		asynq.TaskID(transaction.TransactionID),
		asynq.Queue(cfg.Sync.ResyncQueue),
	}
	task := asynq.NewTask(cfg.Sync.ResyncQueue, payload, taskOptions...)
	info, err := q.Client.Enqueue(task)
	if err != nil {
		log.Println(err, info)
		return err
	}
	log.Printf(" [*] Successfully enqueued resync: %+v", transaction.TransactionID)
	return nil
}
