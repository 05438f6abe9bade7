package registry_test

import (
	"context"
	"math/big"
	"strconv"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	cpersist "github.com/joincivil/go-common/pkg/persistence"

	"github.com/sazalo101/paywall/pkg/model"
	"github.com/sazalo101/paywall/pkg/pricing"
	"github.com/sazalo101/paywall/pkg/registry"
	"github.com/sazalo101/paywall/pkg/verifier"
)

var (
	feeTxHash = common.HexToHash("0xfee1")
)

// TestOracle resolves transactions from a fixed map
type TestOracle struct {
	amounts map[common.Hash]int64
}

func (o *TestOracle) Lookup(ctx context.Context, txHash common.Hash) (*model.TransactionFacts, error) {
	amount, ok := o.amounts[txHash]
	if !ok {
		return nil, model.ErrTransactionNotFound
	}
	return model.NewTransactionFacts(&model.TransactionFactsParams{
		TxHash:    txHash,
		Amount:    big.NewInt(amount),
		Confirmed: true,
	}), nil
}

// TestContentPersister stores content items in memory
type TestContentPersister struct {
	contents map[string]*model.ContentItem
	order    []string
}

func (t *TestContentPersister) ContentByID(contentID string) (*model.ContentItem, error) {
	content, ok := t.contents[contentID]
	if !ok {
		return nil, cpersist.ErrPersisterNoResults
	}
	return content, nil
}

func (t *TestContentPersister) ContentsByGroup(groupID string) ([]*model.ContentItem, error) {
	contents := []*model.ContentItem{}
	for _, contentID := range t.order {
		content := t.contents[contentID]
		if content.GroupID() == groupID {
			contents = append(contents, content)
		}
	}
	return contents, nil
}

func (t *TestContentPersister) CreateContent(content *model.ContentItem) error {
	if t.contents == nil {
		t.contents = map[string]*model.ContentItem{}
	}
	if _, ok := t.contents[content.ID()]; ok {
		return model.ErrPersisterDuplicate
	}
	t.contents[content.ID()] = content
	t.order = append(t.order, content.ID())
	return nil
}

// TestCreatorPersister stores creators in memory
type TestCreatorPersister struct {
	creators map[string]*model.Creator
}

func (t *TestCreatorPersister) CreatorByID(creatorID string) (*model.Creator, error) {
	creator, ok := t.creators[creatorID]
	if !ok {
		return nil, cpersist.ErrPersisterNoResults
	}
	return creator, nil
}

func (t *TestCreatorPersister) UpsertCreator(creator *model.Creator) error {
	if t.creators == nil {
		t.creators = map[string]*model.Creator{}
	}
	t.creators[creator.CreatorID()] = creator
	return nil
}

// TestPaymentPersister is unused by registry flows but required by the verifier
type TestPaymentPersister struct {
}

func (t *TestPaymentPersister) CreatePaymentIfAbsent(record *model.PaymentRecord) (*model.PaymentRecord, error) {
	return record, nil
}

func (t *TestPaymentPersister) PaymentByContentAndUser(contentID string, userID string) (*model.PaymentRecord, error) {
	return nil, cpersist.ErrPersisterNoResults
}

func (t *TestPaymentPersister) PaymentByGroupAndUser(groupID string, userID string) (*model.PaymentRecord, error) {
	return nil, cpersist.ErrPersisterNoResults
}

func setupTestRegistry(listingFeeRequired bool) (*registry.ContentRegistry, *TestOracle,
	*TestContentPersister) {
	testOracle := &TestOracle{amounts: map[common.Hash]int64{}}
	contentPersister := &TestContentPersister{contents: map[string]*model.ContentItem{}}
	creatorPersister := &TestCreatorPersister{creators: map[string]*model.Creator{}}
	creatorPersister.creators["creator1"] = model.NewCreator(&model.CreatorParams{
		CreatorID: "creator1",
	})

	policy := pricing.NewPolicy(0, 0)
	paymentVerifier := verifier.NewPaymentVerifier(&verifier.NewPaymentVerifierParams{
		Oracle:           testOracle,
		ContentPersister: contentPersister,
		CreatorPersister: creatorPersister,
		PaymentPersister: &TestPaymentPersister{},
		Pricing:          policy,
	})
	contentRegistry := registry.NewContentRegistry(&registry.NewContentRegistryParams{
		ContentPersister:   contentPersister,
		CreatorPersister:   creatorPersister,
		Verifier:           paymentVerifier,
		Pricing:            policy,
		ListingFeeRequired: listingFeeRequired,
	})
	return contentRegistry, testOracle, contentPersister
}

func createRequest() *registry.CreateContentRequest {
	return &registry.CreateContentRequest{
		CreatorID:   "creator1",
		GroupID:     "g1",
		ContentType: model.ContentTypeFile,
		Title:       "test_content",
		Description: "a test content item",
		URL:         "https://content.example/file",
		Price:       5.0,
	}
}

func TestCreateContent(t *testing.T) {
	contentRegistry, _, contentPersister := setupTestRegistry(false)

	content, err := contentRegistry.CreateContent(context.Background(), createRequest())
	if err != nil {
		t.Fatalf("Should not have gotten error creating content: err: %v", err)
	}
	if !strings.HasPrefix(content.ID(), "g1-") {
		t.Errorf("Content ID should carry the group prefix, got %v", content.ID())
	}
	if len(contentPersister.contents) != 1 {
		t.Errorf("Should have stored one content item, got %v", len(contentPersister.contents))
	}
}

func TestCreateContentInvalidType(t *testing.T) {
	contentRegistry, _, _ := setupTestRegistry(false)

	req := createRequest()
	req.ContentType = model.ContentType("video")
	_, err := contentRegistry.CreateContent(context.Background(), req)
	if err != model.ErrInvalidContentType {
		t.Errorf("Should have gotten ErrInvalidContentType, got %v", err)
	}
}

func TestCreateContentNegativePrice(t *testing.T) {
	contentRegistry, _, _ := setupTestRegistry(false)

	req := createRequest()
	req.Price = -1.0
	_, err := contentRegistry.CreateContent(context.Background(), req)
	if err != model.ErrInvalidPrice {
		t.Errorf("Should have gotten ErrInvalidPrice, got %v", err)
	}
}

func TestCreateContentFreePrice(t *testing.T) {
	contentRegistry, _, _ := setupTestRegistry(false)

	req := createRequest()
	req.Price = 0
	_, err := contentRegistry.CreateContent(context.Background(), req)
	if err != nil {
		t.Errorf("Zero price should be allowed: err: %v", err)
	}
}

func TestCreateContentUnknownCreator(t *testing.T) {
	contentRegistry, _, _ := setupTestRegistry(false)

	req := createRequest()
	req.CreatorID = "ghost"
	_, err := contentRegistry.CreateContent(context.Background(), req)
	if err != model.ErrCreatorNotFound {
		t.Errorf("Should have gotten ErrCreatorNotFound, got %v", err)
	}
}

func TestCreateContentEmptyFields(t *testing.T) {
	contentRegistry, _, _ := setupTestRegistry(false)

	req := createRequest()
	req.GroupID = ""
	_, err := contentRegistry.CreateContent(context.Background(), req)
	if err != model.ErrInvalidRequest {
		t.Errorf("Should have gotten ErrInvalidRequest for empty group, got %v", err)
	}
}

func TestCreateContentIDsStrictlyIncreasing(t *testing.T) {
	contentRegistry, _, _ := setupTestRegistry(false)

	var lastSeq int64
	for i := 0; i < 5; i++ {
		content, err := contentRegistry.CreateContent(context.Background(), createRequest())
		if err != nil {
			t.Fatalf("Should not have gotten error creating content: err: %v", err)
		}
		seqStr := strings.TrimPrefix(content.ID(), "g1-")
		seq, err := strconv.ParseInt(seqStr, 10, 64)
		if err != nil {
			t.Fatalf("Content ID suffix should be numeric, got %v", content.ID())
		}
		if seq <= lastSeq {
			t.Errorf("Content ID sequence should be strictly increasing: %v <= %v", seq, lastSeq)
		}
		lastSeq = seq
	}
}

// collidingContentPersister rejects every insert as a duplicate ID
type collidingContentPersister struct {
	TestContentPersister
}

func (c *collidingContentPersister) CreateContent(content *model.ContentItem) error {
	return model.ErrPersisterDuplicate
}

func TestCreateContentIDCollisionExhausted(t *testing.T) {
	creatorPersister := &TestCreatorPersister{creators: map[string]*model.Creator{}}
	creatorPersister.creators["creator1"] = model.NewCreator(&model.CreatorParams{
		CreatorID: "creator1",
	})
	contentRegistry := registry.NewContentRegistry(&registry.NewContentRegistryParams{
		ContentPersister: &collidingContentPersister{},
		CreatorPersister: creatorPersister,
		Pricing:          pricing.NewPolicy(0, 0),
	})

	_, err := contentRegistry.CreateContent(context.Background(), createRequest())
	if err != model.ErrContentIDConflict {
		t.Fatalf("Should have gotten ErrContentIDConflict, got %v", err)
	}
	if model.IsErrTransient(err) {
		t.Errorf("Exhausted ID attempts should not be a transient failure")
	}
}

func TestCreateContentListingFeeGate(t *testing.T) {
	contentRegistry, testOracle, contentPersister := setupTestRegistry(true)

	req := createRequest()
	req.FeeTxHash = feeTxHash

	// No fee transaction on-chain
	_, err := contentRegistry.CreateContent(context.Background(), req)
	if err != model.ErrTransactionNotFound {
		t.Errorf("Should have gotten ErrTransactionNotFound, got %v", err)
	}

	// Fee transaction below the flat listing fee
	testOracle.amounts[feeTxHash] = 700000
	_, err = contentRegistry.CreateContent(context.Background(), req)
	if err != model.ErrPaymentInsufficient {
		t.Errorf("Should have gotten ErrPaymentInsufficient, got %v", err)
	}
	if len(contentPersister.contents) != 0 {
		t.Errorf("Should not have stored content on fee failure, got %v", len(contentPersister.contents))
	}

	// Sufficient fee
	testOracle.amounts[feeTxHash] = 750000
	_, err = contentRegistry.CreateContent(context.Background(), req)
	if err != nil {
		t.Errorf("Should not have gotten error with sufficient fee: err: %v", err)
	}
}
