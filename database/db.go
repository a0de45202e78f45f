package database

import (
	"database/sql"
	"log"
	"sync"

	"github.com/offgridpay/solsync/config"
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn *sql.DB
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		instance = &Datasource{Conn: con}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		log.Printf("database Connection error ❌: %v", err)
		return nil, err
	}
	err = createPendingTransactionTable(db)
	if err != nil {
		return nil, err
	}
	err = createConfirmedTransactionTable(db)
	if err != nil {
		return nil, err
	}
	err = createVendorEventTable(db)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// createPendingTransactionTable creates the PostgreSQL table backing the pending collection
func createPendingTransactionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS pending_transactions (
			id SERIAL PRIMARY KEY,
			transaction_id TEXT NOT NULL UNIQUE,
			customer_id TEXT NOT NULL,
			vendor_id TEXT NOT NULL,
			total_amount DOUBLE PRECISION NOT NULL,
			sync_status TEXT NOT NULL DEFAULT 'pending',
			error_message TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			meta_data JSONB
		)
	`)
	if err != nil {
		log.Printf("Error creating pending_transactions table: %v", err)
	}
	return err
}

// createConfirmedTransactionTable creates the PostgreSQL table backing the confirmed collection
func createConfirmedTransactionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS confirmed_transactions (
			id SERIAL PRIMARY KEY,
			transaction_id TEXT NOT NULL UNIQUE,
			customer_id TEXT NOT NULL,
			vendor_id TEXT NOT NULL,
			total_amount DOUBLE PRECISION NOT NULL,
			signature TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'confirmed',
			created_at TIMESTAMP NOT NULL,
			synced_at TIMESTAMP NOT NULL DEFAULT NOW(),
			meta_data JSONB
		)
	`)
	if err != nil {
		log.Printf("Error creating confirmed_transactions table: %v", err)
	}
	return err
}

// createVendorEventTable creates the PostgreSQL table for vendor event records
func createVendorEventTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS vendor_events (
			id SERIAL PRIMARY KEY,
			vendor_id TEXT NOT NULL UNIQUE,
			name TEXT,
			meta_data JSONB,
			last_updated TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		log.Printf("Error creating vendor_events table: %v", err)
	}
	return err
}
