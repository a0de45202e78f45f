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
	"github.com/gin-gonic/gin"

	"github.com/offgridpay/solsync"
	"github.com/offgridpay/solsync/api/middleware"
	"github.com/offgridpay/solsync/config"
)

type Api struct {
	solsync *solsync.Solsync
	router  *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/sync", a.SyncTransactions)

	router.POST("/transactions", a.CreateTransaction)
	router.GET("/transactions/:id/status", a.GetTransactionStatus)

	router.GET("/ledger/transactions/:signature", a.ValidateLedgerTransaction)
	router.GET("/balances/:account", a.GetBalance)

	router.POST("/vendor-events", a.SyncVendorEvent)
	return a.router
}

func NewAPI(s *solsync.Solsync) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{solsync: s, router: r}
}
