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

func createContractTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE contracts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		address TEXT,
		abi_path TEXT NOT NULL,
		artifact_path TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createContractTransactionTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE contract_transactions (
		id TEXT PRIMARY KEY,
		contract_id TEXT NOT NULL,
		hash TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL,
		function TEXT,
		status TEXT NOT NULL,
		block_hash TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}
