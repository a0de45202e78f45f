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
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/offgridpay/solsync"
	"github.com/offgridpay/solsync/config"
	"github.com/offgridpay/solsync/database"
	"github.com/offgridpay/solsync/internal/notification"
)

// Solsync represents the CLI application, encapsulating the root Cobra command.
type Solsync struct {
	cmd *cobra.Command
}

// solsyncInstance holds the engine instance and its configuration for use by
// the subcommands.
type solsyncInstance struct {
	solsync *solsync.Solsync
	cnf     *config.Configuration
}

// recoverPanic handles any panics during program execution and logs the error.
func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and initializes the engine before running any
// command.
func preRun(app *solsyncInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("solsync.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newSolsync, err := setupSolsync(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.solsync = newSolsync
		app.cnf = cnf

		return nil
	}
}

// setupSolsync creates and initializes a new engine instance from the provided
// configuration, connecting to the durable store first.
func setupSolsync(cfg *config.Configuration) (*solsync.Solsync, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	newSolsync, err := solsync.NewSolsync(db)
	if err != nil {
		return nil, fmt.Errorf("error creating solsync: %v", err)
	}
	return newSolsync, nil
}

// NewCLI creates the command-line interface for the application with the
// server and worker subcommands.
func NewCLI() *Solsync {
	var configFile string
	b := &solsyncInstance{}

	var rootCmd = &cobra.Command{
		Use:   "solsync",
		Short: "Offline payment sync engine",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./solsync.json", "Configuration file for solsync")

	rootCmd.PersistentPreRunE = preRun(b)

	rootCmd.AddCommand(serverCommands(b))
	rootCmd.AddCommand(workerCommands(b))

	return &Solsync{cmd: rootCmd}
}

// executeCLI runs the root command, handling any errors that occur during
// execution.
func (w Solsync) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
