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
	"log"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/offgridpay/solsync/api"
	"github.com/offgridpay/solsync/config"
)

func initializeRouter(b *solsyncInstance) *gin.Engine {
	return api.NewAPI(b.solsync).Router()
}

func startServer(router *gin.Engine, cfg config.ServerConfig) error {
	port := cfg.Port
	if port == "" {
		port = config.DEFAULT_PORT
	}
	log.Printf("Starting server on :%s", port)
	return router.Run(":" + port)
}

// serverCommands returns the Cobra command responsible for starting the HTTP
// server.
func serverCommands(b *solsyncInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "start solsync server",
		Run: func(cmd *cobra.Command, args []string) {
			router := initializeRouter(b)

			cfg, err := config.Fetch()
			if err != nil {
				log.Fatal(err)
			}

			if err := startServer(router, cfg.Server); err != nil {
				log.Fatal(err)
			}
		},
	}

	return cmd
}
