// Package persistence contains components to interact with the DB
package persistence // import "github.com/sazalo101/paywall/pkg/persistence"

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	cpersist "github.com/joincivil/go-common/pkg/persistence"

	"github.com/sazalo101/paywall/pkg/model"
	"github.com/sazalo101/paywall/pkg/persistence/postgres"
)

const (
	uniqueViolationCode = "23505"
)

// NewPostgresPersister creates a new postgres persister
func NewPostgresPersister(host string, port int, user string, password string,
	dbname string) (*PostgresPersister, error) {
	pgPersister := &PostgresPersister{}
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
	db, err := sqlx.Connect("postgres", psqlInfo)
	if err != nil {
		return pgPersister, fmt.Errorf("Error connecting to sqlx: %v", err)
	}
	pgPersister.db = db
	return pgPersister, nil
}

// PostgresPersister holds the DB connection and persistence
type PostgresPersister struct {
	db *sqlx.DB
}

// CreateTables creates the paywall tables if they don't exist
func (p *PostgresPersister) CreateTables() error {
	contentSchema := postgres.CreateContentTableQuery()
	creatorSchema := postgres.CreateCreatorTableQuery()
	paymentSchema := postgres.CreatePaymentTableQuery()
	pendingSchema := postgres.CreatePendingRedemptionTableQuery()

	_, err := p.db.Exec(contentSchema)
	if err != nil {
		return fmt.Errorf("Error creating content table in postgres: %v", err)
	}
	_, err = p.db.Exec(creatorSchema)
	if err != nil {
		return fmt.Errorf("Error creating creator table in postgres: %v", err)
	}
	_, err = p.db.Exec(paymentSchema)
	if err != nil {
		return fmt.Errorf("Error creating payment table in postgres: %v", err)
	}
	_, err = p.db.Exec(pendingSchema)
	if err != nil {
		return fmt.Errorf("Error creating pending_redemption table in postgres: %v", err)
	}
	return err
}

// CreateIndices creates the indices for the paywall tables. The payment
// table's unique redemption index enforces at-most-once redemption.
func (p *PostgresPersister) CreateIndices() error {
	indexQueries := []string{
		postgres.CreateContentTableIndices(),
		postgres.CreatePaymentTableIndices(),
		postgres.CreatePendingRedemptionTableIndices(),
	}
	for _, indexQuery := range indexQueries {
		_, err := p.db.Exec(indexQuery)
		if err != nil {
			return fmt.Errorf("Error creating indices in postgres: %v", err)
		}
	}
	return nil
}

// Close closes the DB connection
func (p *PostgresPersister) Close() error {
	return p.db.Close()
}

// ContentByID retrieves a content item by its unique ID
func (p *PostgresPersister) ContentByID(contentID string) (*model.ContentItem, error) {
	queryString := p.contentByIDQuery("content")
	dbContent := postgres.ContentItem{}
	err := p.db.Get(&dbContent, queryString, contentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, cpersist.ErrPersisterNoResults
		}
		return nil, fmt.Errorf("Wasn't able to get content from postgres table: %v", err)
	}
	return dbContent.DbToContentItemData(), nil
}

// ContentsByGroup retrieves all content items sharing a group ID
func (p *PostgresPersister) ContentsByGroup(groupID string) ([]*model.ContentItem, error) {
	queryString := p.contentsByGroupQuery("content")
	dbContents := []postgres.ContentItem{}
	err := p.db.Select(&dbContents, queryString, groupID)
	if err != nil {
		return nil, fmt.Errorf("Wasn't able to get contents from postgres table: %v", err)
	}
	contents := make([]*model.ContentItem, len(dbContents))
	for index, dbContent := range dbContents {
		content := dbContent
		contents[index] = content.DbToContentItemData()
	}
	return contents, nil
}

// CreateContent creates a new content item
func (p *PostgresPersister) CreateContent(content *model.ContentItem) error {
	queryString := p.createContentQuery("content")
	dbContent := postgres.NewContentItem(content)
	_, err := p.db.NamedExec(queryString, dbContent)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrPersisterDuplicate
		}
		return fmt.Errorf("Error saving content to table: %v", err)
	}
	return nil
}

// CreatorByID retrieves a creator by ID
func (p *PostgresPersister) CreatorByID(creatorID string) (*model.Creator, error) {
	queryString := p.creatorByIDQuery("creator")
	dbCreator := postgres.Creator{}
	err := p.db.Get(&dbCreator, queryString, creatorID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, cpersist.ErrPersisterNoResults
		}
		return nil, fmt.Errorf("Wasn't able to get creator from postgres table: %v", err)
	}
	return dbCreator.DbToCreatorData(), nil
}

// UpsertCreator creates or updates a creator, last write wins on the wallet address
func (p *PostgresPersister) UpsertCreator(creator *model.Creator) error {
	queryString := p.upsertCreatorQuery("creator")
	dbCreator := postgres.NewCreator(creator)
	_, err := p.db.NamedExec(queryString, dbCreator)
	if err != nil {
		return fmt.Errorf("Error upserting creator to table: %v", err)
	}
	return nil
}

// CreatePaymentIfAbsent atomically inserts the payment record unless one
// already exists for (contentID, txHash). The insert and the uniqueness check
// are a single statement, so two racing redemptions commit exactly one record.
func (p *PostgresPersister) CreatePaymentIfAbsent(record *model.PaymentRecord) (*model.PaymentRecord, error) {
	queryString := p.createPaymentIfAbsentQuery("payment")
	dbPayment := postgres.NewPaymentRecord(record)
	rows, err := p.db.NamedQuery(queryString, dbPayment)
	if err != nil {
		return nil, fmt.Errorf("Error saving payment to table: %v", err)
	}
	defer rows.Close() // nolint: errcheck

	if !rows.Next() {
		return nil, model.ErrPersisterDuplicate
	}
	var paymentID int64
	err = rows.Scan(&paymentID)
	if err != nil {
		return nil, fmt.Errorf("Error scanning payment id: %v", err)
	}
	dbPayment.PaymentID = paymentID
	return dbPayment.DbToPaymentRecordData(), nil
}

// PaymentByContentAndUser retrieves the most recent payment for the exact
// (contentID, userID) pair
func (p *PostgresPersister) PaymentByContentAndUser(contentID string, userID string) (*model.PaymentRecord, error) {
	queryString := p.paymentByContentAndUserQuery("payment")
	return p.getPaymentFromTable(queryString, contentID, userID)
}

// PaymentByGroupAndUser retrieves the most recent payment by the user for any
// content whose ID carries the group prefix
func (p *PostgresPersister) PaymentByGroupAndUser(groupID string, userID string) (*model.PaymentRecord, error) {
	queryString := p.paymentByGroupAndUserQuery("payment")
	return p.getPaymentFromTable(queryString, likeEscape(groupID), userID)
}

// CreatePendingRedemption queues a redemption for retry
func (p *PostgresPersister) CreatePendingRedemption(pending *model.PendingRedemption) error {
	queryString := p.createPendingRedemptionQuery("pending_redemption")
	dbPending := postgres.NewPendingRedemption(pending)
	_, err := p.db.NamedExec(queryString, dbPending)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrPersisterDuplicate
		}
		return fmt.Errorf("Error saving pending redemption to table: %v", err)
	}
	return nil
}

// PendingRedemptions retrieves up to limit queued redemptions, oldest first
func (p *PostgresPersister) PendingRedemptions(limit int) ([]*model.PendingRedemption, error) {
	queryString := p.pendingRedemptionsQuery("pending_redemption")
	dbPendings := []postgres.PendingRedemption{}
	err := p.db.Select(&dbPendings, queryString, limit)
	if err != nil {
		return nil, fmt.Errorf("Wasn't able to get pending redemptions from postgres table: %v", err)
	}
	pendings := make([]*model.PendingRedemption, len(dbPendings))
	for index, dbPending := range dbPendings {
		pending := dbPending
		pendings[index] = pending.DbToPendingRedemptionData()
	}
	return pendings, nil
}

// UpdatePendingRedemptionAttempts bumps the attempt count and timestamp
func (p *PostgresPersister) UpdatePendingRedemptionAttempts(pendingID int64, attempts int,
	lastAttemptTs int64) error {
	queryString := p.updatePendingAttemptsQuery("pending_redemption")
	_, err := p.db.Exec(queryString, attempts, lastAttemptTs, pendingID)
	if err != nil {
		return fmt.Errorf("Error updating pending redemption attempts: %v", err)
	}
	return nil
}

// DeletePendingRedemption removes a queued redemption
func (p *PostgresPersister) DeletePendingRedemption(pendingID int64) error {
	queryString := p.deletePendingRedemptionQuery("pending_redemption")
	_, err := p.db.Exec(queryString, pendingID)
	if err != nil {
		return fmt.Errorf("Error deleting pending redemption: %v", err)
	}
	return nil
}

func (p *PostgresPersister) getPaymentFromTable(query string, args ...interface{}) (*model.PaymentRecord, error) {
	dbPayment := postgres.PaymentRecord{}
	err := p.db.Get(&dbPayment, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, cpersist.ErrPersisterNoResults
		}
		return nil, fmt.Errorf("Wasn't able to get payment from postgres table: %v", err)
	}
	return dbPayment.DbToPaymentRecordData(), nil
}

func (p *PostgresPersister) contentByIDQuery(tableName string) string {
	queryString := fmt.Sprintf("SELECT id, content_type, title, description, url, price, creator_id, "+
		"group_id, metadata, creation_timestamp FROM %s WHERE id=$1;", tableName)
	return queryString
}

func (p *PostgresPersister) contentsByGroupQuery(tableName string) string {
	queryString := fmt.Sprintf("SELECT id, content_type, title, description, url, price, creator_id, "+
		"group_id, metadata, creation_timestamp FROM %s WHERE group_id=$1 ORDER BY creation_timestamp;", tableName)
	return queryString
}

func (p *PostgresPersister) createContentQuery(tableName string) string {
	queryString := fmt.Sprintf("INSERT INTO %s (id, content_type, title, description, url, price, "+
		"creator_id, group_id, metadata, creation_timestamp) VALUES (:id, :content_type, :title, "+
		":description, :url, :price, :creator_id, :group_id, :metadata, :creation_timestamp);", tableName)
	return queryString
}

func (p *PostgresPersister) creatorByIDQuery(tableName string) string {
	queryString := fmt.Sprintf("SELECT id, wallet_address, last_updated_timestamp FROM %s "+
		"WHERE id=$1;", tableName)
	return queryString
}

func (p *PostgresPersister) upsertCreatorQuery(tableName string) string {
	queryString := fmt.Sprintf("INSERT INTO %s (id, wallet_address, last_updated_timestamp) "+
		"VALUES (:id, :wallet_address, :last_updated_timestamp) ON CONFLICT (id) DO UPDATE SET "+
		"wallet_address=EXCLUDED.wallet_address, last_updated_timestamp=EXCLUDED.last_updated_timestamp;",
		tableName)
	return queryString
}

func (p *PostgresPersister) createPaymentIfAbsentQuery(tableName string) string {
	queryString := fmt.Sprintf("INSERT INTO %s (content_id, user_id, tx_hash, amount, service_fee, "+
		"creator_earnings, purchase_timestamp) VALUES (:content_id, :user_id, :tx_hash, :amount, "+
		":service_fee, :creator_earnings, :purchase_timestamp) "+
		"ON CONFLICT (content_id, tx_hash) DO NOTHING RETURNING id;", tableName)
	return queryString
}

func (p *PostgresPersister) paymentByContentAndUserQuery(tableName string) string {
	queryString := fmt.Sprintf("SELECT id, content_id, user_id, tx_hash, amount, service_fee, "+
		"creator_earnings, purchase_timestamp FROM %s WHERE content_id=$1 AND user_id=$2 "+
		"ORDER BY id DESC LIMIT 1;", tableName)
	return queryString
}

func (p *PostgresPersister) paymentByGroupAndUserQuery(tableName string) string {
	queryString := fmt.Sprintf("SELECT id, content_id, user_id, tx_hash, amount, service_fee, "+
		"creator_earnings, purchase_timestamp FROM %s WHERE content_id LIKE $1 || '-%%' AND user_id=$2 "+
		"ORDER BY id DESC LIMIT 1;", tableName)
	return queryString
}

func (p *PostgresPersister) createPendingRedemptionQuery(tableName string) string {
	queryString := fmt.Sprintf("INSERT INTO %s (content_id, user_id, tx_hash, attempts, "+
		"creation_timestamp, last_attempt_timestamp) VALUES (:content_id, :user_id, :tx_hash, "+
		":attempts, :creation_timestamp, :last_attempt_timestamp) "+
		"ON CONFLICT (content_id, tx_hash) DO NOTHING;", tableName)
	return queryString
}

func (p *PostgresPersister) pendingRedemptionsQuery(tableName string) string {
	queryString := fmt.Sprintf("SELECT id, content_id, user_id, tx_hash, attempts, creation_timestamp, "+
		"last_attempt_timestamp FROM %s ORDER BY id LIMIT $1;", tableName)
	return queryString
}

func (p *PostgresPersister) updatePendingAttemptsQuery(tableName string) string {
	queryString := fmt.Sprintf("UPDATE %s SET attempts=$1, last_attempt_timestamp=$2 WHERE id=$3;", tableName)
	return queryString
}

func (p *PostgresPersister) deletePendingRedemptionQuery(tableName string) string {
	queryString := fmt.Sprintf("DELETE FROM %s WHERE id=$1;", tableName)
	return queryString
}

// likeEscape escapes LIKE wildcard characters so a group ID only ever matches
// as a literal prefix
func likeEscape(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == uniqueViolationCode
}
