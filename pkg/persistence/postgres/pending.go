package postgres

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/sazalo101/paywall/pkg/model"
)

const (
	defaultPendingTableName = "pending_redemption"
)

// CreatePendingRedemptionTableQuery returns the query to create the
// pending_redemption table
func CreatePendingRedemptionTableQuery() string {
	return CreatePendingRedemptionTableQueryString(defaultPendingTableName)
}

// CreatePendingRedemptionTableQueryString returns the query to create the
// pending_redemption table
func CreatePendingRedemptionTableQueryString(tableName string) string {
	queryString := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s(
			id BIGSERIAL PRIMARY KEY,
			content_id TEXT,
			user_id TEXT,
			tx_hash TEXT,
			attempts INT,
			creation_timestamp INT,
			last_attempt_timestamp INT
		);
	`, tableName)
	return queryString
}

// CreatePendingRedemptionTableIndices returns the query to create indices for this table
func CreatePendingRedemptionTableIndices() string {
	return CreatePendingRedemptionTableIndicesString(defaultPendingTableName)
}

// CreatePendingRedemptionTableIndicesString returns the query to create indices for this table
func CreatePendingRedemptionTableIndicesString(tableName string) string {
	queryString := fmt.Sprintf(`
		CREATE UNIQUE INDEX IF NOT EXISTS pending_redemption_idx ON %s (content_id, tx_hash);
	`, tableName)
	return queryString
}

// NewPendingRedemption creates a new postgres PendingRedemption from
// model.PendingRedemption
func NewPendingRedemption(pending *model.PendingRedemption) *PendingRedemption {
	dbPending := &PendingRedemption{}
	dbPending.PendingID = pending.PendingID()
	dbPending.ContentID = pending.ContentID()
	dbPending.UserID = pending.UserID()
	dbPending.TxHash = pending.TxHash().Hex()
	dbPending.Attempts = pending.Attempts()
	dbPending.CreationTimestamp = pending.CreatedDateTs()
	dbPending.LastAttemptTimestamp = pending.LastAttemptTs()
	return dbPending
}

// PendingRedemption is the postgres definition of a model.PendingRedemption
type PendingRedemption struct {
	PendingID int64 `db:"id"`

	ContentID string `db:"content_id"`

	UserID string `db:"user_id"`

	TxHash string `db:"tx_hash"`

	Attempts int `db:"attempts"`

	CreationTimestamp int64 `db:"creation_timestamp"`

	LastAttemptTimestamp int64 `db:"last_attempt_timestamp"`
}

// DbToPendingRedemptionData creates a model.PendingRedemption from a
// postgres.PendingRedemption
func (p *PendingRedemption) DbToPendingRedemptionData() *model.PendingRedemption {
	params := &model.PendingRedemptionParams{}
	params.PendingID = p.PendingID
	params.ContentID = p.ContentID
	params.UserID = p.UserID
	params.TxHash = common.HexToHash(p.TxHash)
	params.Attempts = p.Attempts
	params.CreatedDateTs = p.CreationTimestamp
	params.LastAttemptTs = p.LastAttemptTimestamp
	return model.NewPendingRedemption(params)
}
