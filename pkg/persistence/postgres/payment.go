package postgres

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/sazalo101/paywall/pkg/model"
)

const (
	defaultPaymentTableName = "payment"
)

// CreatePaymentTableQuery returns the query to create the payment table
func CreatePaymentTableQuery() string {
	return CreatePaymentTableQueryString(defaultPaymentTableName)
}

// CreatePaymentTableQueryString returns the query to create the payment table
func CreatePaymentTableQueryString(tableName string) string {
	queryString := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s(
			id BIGSERIAL PRIMARY KEY,
			content_id TEXT,
			user_id TEXT,
			tx_hash TEXT,
			amount NUMERIC,
			service_fee NUMERIC,
			creator_earnings NUMERIC,
			purchase_timestamp INT
		);
	`, tableName)
	return queryString
}

// CreatePaymentTableIndices returns the query to create indices for this table.
// The unique index on the redemption key is what makes redemption at-most-once
// under concurrent requests.
func CreatePaymentTableIndices() string {
	return CreatePaymentTableIndicesString(defaultPaymentTableName)
}

// CreatePaymentTableIndicesString returns the query to create indices for this table
func CreatePaymentTableIndicesString(tableName string) string {
	queryString := fmt.Sprintf(`
		CREATE UNIQUE INDEX IF NOT EXISTS payment_redemption_idx ON %s (content_id, tx_hash);
		CREATE INDEX IF NOT EXISTS payment_user_idx ON %s (user_id);
	`, tableName, tableName)
	return queryString
}

// NewPaymentRecord creates a new postgres PaymentRecord from model.PaymentRecord
func NewPaymentRecord(record *model.PaymentRecord) *PaymentRecord {
	payment := &PaymentRecord{}
	payment.PaymentID = record.PaymentID()
	payment.ContentID = record.ContentID()
	payment.UserID = record.UserID()
	payment.TxHash = record.TxHash().Hex()
	payment.Amount = record.Amount()
	payment.ServiceFee = record.ServiceFee()
	payment.CreatorEarnings = record.CreatorEarnings()
	payment.PurchaseTimestamp = record.PurchaseDateTs()
	return payment
}

// PaymentRecord is the postgres definition of a model.PaymentRecord
type PaymentRecord struct {
	PaymentID int64 `db:"id"`

	ContentID string `db:"content_id"`

	UserID string `db:"user_id"`

	TxHash string `db:"tx_hash"`

	Amount float64 `db:"amount"`

	ServiceFee float64 `db:"service_fee"`

	CreatorEarnings float64 `db:"creator_earnings"`

	PurchaseTimestamp int64 `db:"purchase_timestamp"`
}

// DbToPaymentRecordData creates a model.PaymentRecord from a postgres.PaymentRecord
func (p *PaymentRecord) DbToPaymentRecordData() *model.PaymentRecord {
	params := &model.PaymentRecordParams{}
	params.PaymentID = p.PaymentID
	params.ContentID = p.ContentID
	params.UserID = p.UserID
	params.TxHash = common.HexToHash(p.TxHash)
	params.Amount = p.Amount
	params.ServiceFee = p.ServiceFee
	params.CreatorEarnings = p.CreatorEarnings
	params.PurchaseDateTs = p.PurchaseTimestamp
	return model.NewPaymentRecord(params)
}
