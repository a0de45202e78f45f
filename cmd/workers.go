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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/hibiken/asynq"
	"github.com/hibiken/asynqmon"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/offgridpay/solsync"
	"github.com/offgridpay/solsync/config"
	redis_db "github.com/offgridpay/solsync/internal/redis-db"
	"github.com/offgridpay/solsync/model"
)

// processResync handles one resync task from the queue. The sync pipeline's
// confirmed-record check keeps a replayed task from double-submitting.
func (b *solsyncInstance) processResync(ctx context.Context, t *asynq.Task) error {
	ctx, span := otel.Tracer("solsync.resync.worker").Start(ctx, "Process Resync From Redis Queue")
	defer span.End()

	var payload solsync.ResyncPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logrus.Error(err)
		return err
	}

	report, err := b.solsync.SyncTransactions(ctx, []*model.OfflineTransaction{&payload.Data})
	if err != nil {
		logrus.Infof("Resync of %s pushed back for retry due to error: %v", payload.Data.TransactionID, err)
		return err
	}

	if report.Failed > 0 {
		return fmt.Errorf("resync of %s failed: %s", payload.Data.TransactionID, report.Errors[0].Error)
	}

	log.Println(" [*] Transaction Resynced", payload.Data.TransactionID)
	return nil
}

func initializeQueues() map[string]int {
	cfg, err := config.Fetch()
	if err != nil {
		log.Printf("Error fetching config, using defaults: %v", err)
		return nil
	}

	queues := make(map[string]int)
	queues[cfg.Sync.WebhookQueue] = 3
	queues[cfg.Sync.ResyncQueue] = 1
	return queues
}

func initializeWorkerServer(conf *config.Configuration, queues map[string]int) (*asynq.Server, error) {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %v", err)
	}

	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:      redisOption.Addr,
			Password:  redisOption.Password,
			DB:        redisOption.DB,
			TLSConfig: redisOption.TLSConfig,
		},
		asynq.Config{
			Concurrency: 1,
			Queues:      queues,
		},
	), nil
}

func initializeTaskHandlers(b *solsyncInstance, mux *asynq.ServeMux) {
	cfg, err := config.Fetch()
	if err != nil {
		log.Fatal("Error fetching config:", err)
	}

	mux.HandleFunc(cfg.Sync.ResyncQueue, b.processResync)
	mux.HandleFunc(cfg.Sync.WebhookQueue, solsync.ProcessWebhook)
}

// workerCommands defines the "workers" command to start the background
// workers.
func workerCommands(b *solsyncInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "start solsync workers",
		Run: func(cmd *cobra.Command, args []string) {
			conf, err := config.Fetch()
			if err != nil {
				log.Fatal("Error fetching config:", err)
			}

			queues := initializeQueues()

			srv, err := initializeWorkerServer(conf, queues)
			if err != nil {
				log.Fatal(err)
			}

			mux := asynq.NewServeMux()
			initializeTaskHandlers(b, mux)

			// asynqmon for queue health checks and monitoring
			redisOption, _ := redis_db.ParseRedisURL(conf.Redis.Dns)
			h := asynqmon.New(asynqmon.Options{
				RootPath: "/monitoring",
				RedisConnOpt: asynq.RedisClientOpt{
					Addr:      redisOption.Addr,
					Password:  redisOption.Password,
					DB:        redisOption.DB,
					TLSConfig: redisOption.TLSConfig,
				},
			})

			go func() {
				monitoringAddr := ":5002"
				log.Printf("Asynqmon server listening on %s/monitoring", monitoringAddr)
				if err := http.ListenAndServe(monitoringAddr, h); err != nil {
					log.Fatalf("could not start asynqmon server: %v", err)
				}
			}()

			if err := srv.Run(mux); err != nil {
				log.Fatalf("could not run server: %v", err)
			}
		},
	}

	return cmd
}
