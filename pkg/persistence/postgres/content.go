package postgres // import "github.com/sazalo101/paywall/pkg/persistence/postgres"

import (
	"fmt"

	cpostgres "github.com/joincivil/go-common/pkg/persistence/postgres"

	"github.com/sazalo101/paywall/pkg/model"
)

const (
	defaultContentTableName = "content"
)

// CreateContentTableQuery returns the query to create the content table
func CreateContentTableQuery() string {
	return CreateContentTableQueryString(defaultContentTableName)
}

// CreateContentTableQueryString returns the query to create the content table
func CreateContentTableQueryString(tableName string) string {
	queryString := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s(
			id TEXT PRIMARY KEY,
			content_type TEXT,
			title TEXT,
			description TEXT,
			url TEXT,
			price NUMERIC,
			creator_id TEXT,
			group_id TEXT,
			metadata JSONB,
			creation_timestamp INT
		);
	`, tableName)
	return queryString
}

// CreateContentTableIndices returns the query to create indices for this table
func CreateContentTableIndices() string {
	return CreateContentTableIndicesString(defaultContentTableName)
}

// CreateContentTableIndicesString returns the query to create indices for this table
func CreateContentTableIndicesString(tableName string) string {
	queryString := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS content_group_idx ON %s (group_id);
	`, tableName)
	return queryString
}

// NewContentItem creates a new postgres ContentItem from model.ContentItem
func NewContentItem(contentItem *model.ContentItem) *ContentItem {
	content := &ContentItem{}
	content.ContentID = contentItem.ID()
	content.ContentType = string(contentItem.ContentType())
	content.Title = contentItem.Title()
	content.Description = contentItem.Description()
	content.URL = contentItem.URL()
	content.Price = contentItem.Price()
	content.CreatorID = contentItem.CreatorID()
	content.GroupID = contentItem.GroupID()
	content.Metadata = cpostgres.JsonbPayload(contentItem.Metadata())
	content.CreationTimestamp = contentItem.CreatedDateTs()
	return content
}

// ContentItem is the postgres definition of a model.ContentItem
type ContentItem struct {
	ContentID string `db:"id"`

	ContentType string `db:"content_type"`

	Title string `db:"title"`

	Description string `db:"description"`

	URL string `db:"url"`

	Price float64 `db:"price"`

	CreatorID string `db:"creator_id"`

	GroupID string `db:"group_id"`

	Metadata cpostgres.JsonbPayload `db:"metadata"`

	CreationTimestamp int64 `db:"creation_timestamp"`
}

// DbToContentItemData creates a model.ContentItem from a postgres.ContentItem
func (c *ContentItem) DbToContentItemData() *model.ContentItem {
	params := &model.ContentItemParams{}
	params.ID = c.ContentID
	params.ContentType = model.ContentType(c.ContentType)
	params.Title = c.Title
	params.Description = c.Description
	params.URL = c.URL
	params.Price = c.Price
	params.CreatorID = c.CreatorID
	params.GroupID = c.GroupID
	params.Metadata = model.ContentMetadata(c.Metadata)
	params.CreatedDateTs = c.CreationTimestamp
	return model.NewContentItem(params)
}
