package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE,
		name TEXT,
		password_hash TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createWalletTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE wallets (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		chain TEXT NOT NULL,
		address TEXT NOT NULL,
		is_primary BOOLEAN DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME,
		UNIQUE(chain, address)
	);`)
}

func createOrderTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE orders (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		recipient_user_id TEXT NOT NULL,
		chain TEXT NOT NULL,
		amount TEXT NOT NULL,
		token_address TEXT,
		token_symbol TEXT NOT NULL,
		token_decimals INTEGER NOT NULL,
		receiving_address TEXT NOT NULL,
		status TEXT NOT NULL,
		tx_hash TEXT,
		failure_reason TEXT,
		amount_received TEXT,
		verified_at DATETIME,
		expires_at DATETIME NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}
