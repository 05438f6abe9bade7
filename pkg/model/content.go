package model // import "github.com/sazalo101/paywall/pkg/model"

// ContentType is the kind of material a content item points to.
type ContentType string

const (
	// ContentTypeFile is a downloadable file
	ContentTypeFile ContentType = "file"

	// ContentTypeLink is an external link
	ContentTypeLink ContentType = "link"

	// ContentTypeCourse is a multi-part course
	ContentTypeCourse ContentType = "course"
)

var validContentTypes = map[ContentType]bool{
	ContentTypeFile:   true,
	ContentTypeLink:   true,
	ContentTypeCourse: true,
}

// Valid returns true if this is a known content type
func (t ContentType) Valid() bool {
	return validContentTypes[t]
}

// ContentMetadata is optional creator-supplied metadata for a content item
type ContentMetadata map[string]interface{}

// ContentItemParams are the params to initialize a new ContentItem
type ContentItemParams struct {
	ID            string
	ContentType   ContentType
	Title         string
	Description   string
	URL           string
	Price         float64
	CreatorID     string
	GroupID       string
	Metadata      ContentMetadata
	CreatedDateTs int64
}

// NewContentItem is a convenience method to init a ContentItem struct
func NewContentItem(params *ContentItemParams) *ContentItem {
	return &ContentItem{
		id:            params.ID,
		contentType:   params.ContentType,
		title:         params.Title,
		description:   params.Description,
		url:           params.URL,
		price:         params.Price,
		creatorID:     params.CreatorID,
		groupID:       params.GroupID,
		metadata:      params.Metadata,
		createdDateTs: params.CreatedDateTs,
	}
}

// ContentItem represents a single priced, creator-owned unit of paywalled
// material. Immutable once created.
type ContentItem struct {
	// id is globally unique, prefixed by the group ID
	id string

	contentType ContentType

	title string

	description string

	url string

	// price in currency units, set by the creator
	price float64

	creatorID string

	// groupID is the logical bundle key for batch listing
	groupID string

	metadata ContentMetadata

	createdDateTs int64
}

// ID returns the unique content ID
func (c *ContentItem) ID() string {
	return c.id
}

// ContentType returns the kind of content
func (c *ContentItem) ContentType() ContentType {
	return c.contentType
}

// Title returns the content title
func (c *ContentItem) Title() string {
	return c.title
}

// Description returns the content description
func (c *ContentItem) Description() string {
	return c.description
}

// URL returns the location of the underlying material
func (c *ContentItem) URL() string {
	return c.url
}

// Price is the creator-set price in currency units, not smallest units
func (c *ContentItem) Price() float64 {
	return c.price
}

// CreatorID returns the ID of the owning creator
func (c *ContentItem) CreatorID() string {
	return c.creatorID
}

// GroupID returns the bundle key this content belongs to
func (c *ContentItem) GroupID() string {
	return c.groupID
}

// Metadata returns the optional creator-supplied metadata
func (c *ContentItem) Metadata() ContentMetadata {
	return c.metadata
}

// CreatedDateTs returns the timestamp of content creation
func (c *ContentItem) CreatedDateTs() int64 {
	return c.createdDateTs
}
