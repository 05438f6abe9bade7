package postgres

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/sazalo101/paywall/pkg/model"
)

const (
	defaultCreatorTableName = "creator"
)

// CreateCreatorTableQuery returns the query to create the creator table
func CreateCreatorTableQuery() string {
	return CreateCreatorTableQueryString(defaultCreatorTableName)
}

// CreateCreatorTableQueryString returns the query to create the creator table
func CreateCreatorTableQueryString(tableName string) string {
	queryString := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s(
			id TEXT PRIMARY KEY,
			wallet_address TEXT,
			last_updated_timestamp INT
		);
	`, tableName)
	return queryString
}

// NewCreator creates a new postgres Creator from model.Creator
func NewCreator(creator *model.Creator) *Creator {
	dbCreator := &Creator{}
	dbCreator.CreatorID = creator.CreatorID()
	dbCreator.WalletAddress = creator.WalletAddress().Hex()
	dbCreator.LastUpdatedTimestamp = creator.LastUpdatedDateTs()
	return dbCreator
}

// Creator is the postgres definition of a model.Creator
type Creator struct {
	CreatorID string `db:"id"`

	WalletAddress string `db:"wallet_address"`

	LastUpdatedTimestamp int64 `db:"last_updated_timestamp"`
}

// DbToCreatorData creates a model.Creator from a postgres.Creator
func (c *Creator) DbToCreatorData() *model.Creator {
	params := &model.CreatorParams{}
	params.CreatorID = c.CreatorID
	params.WalletAddress = common.HexToAddress(c.WalletAddress)
	params.LastUpdatedDateTs = c.LastUpdatedTimestamp
	return model.NewCreator(params)
}
