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

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "5001"

	// DefaultSyncGroupSize bounds how many ledger submissions a batched sync
	// keeps in flight at once.
	DefaultSyncGroupSize = 5
)

var ConfigStore atomic.Value

type ServerConfig struct {
	Secure    bool   `json:"secure" envconfig:"SOLSYNC_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"SOLSYNC_SERVER_SECRET_KEY"`
	Port      string `json:"port" envconfig:"SOLSYNC_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"SOLSYNC_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns string `json:"dns" envconfig:"SOLSYNC_REDIS_DNS"`
}

// SolanaConfig points the service at the ledger network and carries the signer
// key. The key is a base58-encoded private key; it never appears in logs.
type SolanaConfig struct {
	RpcEndpoint string `json:"rpc_endpoint" envconfig:"SOLSYNC_SOLANA_RPC_ENDPOINT"`
	Commitment  string `json:"commitment" envconfig:"SOLSYNC_SOLANA_COMMITMENT"`
	SignerKey   string `json:"signer_key" envconfig:"SOLSYNC_SOLANA_SIGNER_KEY"`
	FeePayer    string `json:"fee_payer" envconfig:"SOLSYNC_SOLANA_FEE_PAYER"`
}

type SyncConfig struct {
	GroupSize    int    `json:"group_size" envconfig:"SOLSYNC_SYNC_GROUP_SIZE"`
	ResyncQueue  string `json:"resync_queue" envconfig:"SOLSYNC_SYNC_RESYNC_QUEUE"`
	WebhookQueue string `json:"webhook_queue" envconfig:"SOLSYNC_SYNC_WEBHOOK_QUEUE"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack   SlackWebhook `json:"slack"`
	Webhook struct {
		Url     string            `json:"url"`
		Headers map[string]string `json:"headers"`
	} `json:"webhook"`
}

type Configuration struct {
	ProjectName  string           `json:"project_name" envconfig:"SOLSYNC_PROJECT_NAME"`
	Server       ServerConfig     `json:"server"`
	DataSource   DataSourceConfig `json:"data_source"`
	Redis        RedisConfig      `json:"redis"`
	Solana       SolanaConfig     `json:"solana"`
	Sync         SyncConfig       `json:"sync"`
	Notification Notification     `json:"notification"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}
	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("solsync", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called solsync.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Solsync Server"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Redis.Dns == "" {
		log.Println("Error: Redis DNS is empty. It's a required field.")
		return errors.New("redis DNS is required")
	}

	if cnf.Solana.RpcEndpoint == "" {
		log.Println("Error: Solana RPC endpoint is empty. It's a required field.")
		return errors.New("solana RPC endpoint is required")
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)
	cnf.Solana.RpcEndpoint = strings.TrimSpace(cnf.Solana.RpcEndpoint)

	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.Solana.Commitment == "" {
		cnf.Solana.Commitment = "confirmed"
	}

	if cnf.Sync.GroupSize <= 0 {
		cnf.Sync.GroupSize = DefaultSyncGroupSize
	}

	if cnf.Sync.ResyncQueue == "" {
		cnf.Sync.ResyncQueue = "new:resync"
	}

	if cnf.Sync.WebhookQueue == "" {
		cnf.Sync.WebhookQueue = "new:webhook"
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	if mockConfig.Sync.GroupSize <= 0 {
		mockConfig.Sync.GroupSize = DefaultSyncGroupSize
	}
	if mockConfig.Sync.ResyncQueue == "" {
		mockConfig.Sync.ResyncQueue = "new:resync"
	}
	if mockConfig.Sync.WebhookQueue == "" {
		mockConfig.Sync.WebhookQueue = "new:webhook"
	}
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
