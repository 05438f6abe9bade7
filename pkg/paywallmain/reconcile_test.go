package paywallmain

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	cpersist "github.com/joincivil/go-common/pkg/persistence"

	"github.com/sazalo101/paywall/pkg/model"
	"github.com/sazalo101/paywall/pkg/pricing"
	"github.com/sazalo101/paywall/pkg/utils"
	"github.com/sazalo101/paywall/pkg/verifier"
)

var (
	reconcileTxHash = common.HexToHash("0xabc1")
)

type testOracle struct {
	amounts map[common.Hash]int64
	errors  map[common.Hash]error
}

func (o *testOracle) Lookup(ctx context.Context, txHash common.Hash) (*model.TransactionFacts, error) {
	if err, ok := o.errors[txHash]; ok {
		return nil, err
	}
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

type testStore struct {
	contents map[string]*model.ContentItem
	payments []*model.PaymentRecord
	pendings map[int64]*model.PendingRedemption
	attempts map[int64]int
	nextID   int64
}

func (t *testStore) ContentByID(contentID string) (*model.ContentItem, error) {
	content, ok := t.contents[contentID]
	if !ok {
		return nil, cpersist.ErrPersisterNoResults
	}
	return content, nil
}

func (t *testStore) ContentsByGroup(groupID string) ([]*model.ContentItem, error) {
	return []*model.ContentItem{}, nil
}

func (t *testStore) CreateContent(content *model.ContentItem) error {
	t.contents[content.ID()] = content
	return nil
}

func (t *testStore) CreatorByID(creatorID string) (*model.Creator, error) {
	return nil, cpersist.ErrPersisterNoResults
}

func (t *testStore) UpsertCreator(creator *model.Creator) error {
	return nil
}

func (t *testStore) CreatePaymentIfAbsent(record *model.PaymentRecord) (*model.PaymentRecord, error) {
	for _, payment := range t.payments {
		if payment.ContentID() == record.ContentID() && payment.TxHash() == record.TxHash() {
			return nil, model.ErrPersisterDuplicate
		}
	}
	t.payments = append(t.payments, record)
	return record, nil
}

func (t *testStore) PaymentByContentAndUser(contentID string, userID string) (*model.PaymentRecord, error) {
	return nil, cpersist.ErrPersisterNoResults
}

func (t *testStore) PaymentByGroupAndUser(groupID string, userID string) (*model.PaymentRecord, error) {
	return nil, cpersist.ErrPersisterNoResults
}

func (t *testStore) CreatePendingRedemption(pending *model.PendingRedemption) error {
	t.nextID++
	t.pendings[t.nextID] = pending
	return nil
}

func (t *testStore) PendingRedemptions(limit int) ([]*model.PendingRedemption, error) {
	pendings := []*model.PendingRedemption{}
	for _, pending := range t.pendings {
		pendings = append(pendings, pending)
	}
	return pendings, nil
}

func (t *testStore) UpdatePendingRedemptionAttempts(pendingID int64, attempts int,
	lastAttemptTs int64) error {
	t.attempts[pendingID] = attempts
	return nil
}

func (t *testStore) DeletePendingRedemption(pendingID int64) error {
	delete(t.pendings, pendingID)
	return nil
}

func setupReconcilerTest() (*utils.PaywallConfig, *InitializedPersisters, *testOracle, *testStore) {
	store := &testStore{
		contents: map[string]*model.ContentItem{},
		pendings: map[int64]*model.PendingRedemption{},
		attempts: map[int64]int{},
	}
	store.contents["g1-100"] = model.NewContentItem(&model.ContentItemParams{
		ID:          "g1-100",
		ContentType: model.ContentTypeFile,
		Price:       5.0,
		CreatorID:   "creator1",
		GroupID:     "g1",
	})
	oracle := &testOracle{amounts: map[common.Hash]int64{}, errors: map[common.Hash]error{}}

	config := &utils.PaywallConfig{
		PendingMaxAttempts: 2,
		PendingSweepLimit:  10,
	}
	persisters := &InitializedPersisters{
		Content: store,
		Creator: store,
		Payment: store,
		Pending: store,
	}
	return config, persisters, oracle, store
}

func queuePending(store *testStore, txHash common.Hash, attempts int) int64 {
	pending := model.NewPendingRedemption(&model.PendingRedemptionParams{
		PendingID: store.nextID + 1,
		ContentID: "g1-100",
		UserID:    "u1",
		TxHash:    txHash,
		Attempts:  attempts,
	})
	_ = store.CreatePendingRedemption(pending)
	return pending.PendingID()
}

func newTestVerifier(oracle *testOracle, store *testStore) *verifier.PaymentVerifier {
	return verifier.NewPaymentVerifier(&verifier.NewPaymentVerifierParams{
		Oracle:           oracle,
		ContentPersister: store,
		CreatorPersister: store,
		PaymentPersister: store,
		Pricing:          pricing.NewPolicy(0, 0),
	})
}

func TestReconcilerCommitsConfirmedRedemption(t *testing.T) {
	config, persisters, oracle, store := setupReconcilerTest()
	queuePending(store, reconcileTxHash, 0)

	// Transaction confirmed since the redemption was queued
	oracle.amounts[reconcileTxHash] = 5100000

	runReconciler(config, persisters, newTestVerifier(oracle, store))

	if len(store.payments) != 1 {
		t.Errorf("Should have committed exactly one payment, got %v", len(store.payments))
	}
	if len(store.pendings) != 0 {
		t.Errorf("Pending queue should be empty, got %v", len(store.pendings))
	}

	// Running again never double-credits
	queuePending(store, reconcileTxHash, 0)
	runReconciler(config, persisters, newTestVerifier(oracle, store))
	if len(store.payments) != 1 {
		t.Errorf("Reconciling again should not double-credit, got %v payments", len(store.payments))
	}
	if len(store.pendings) != 0 {
		t.Errorf("Duplicate redemption should clear the queue entry, got %v", len(store.pendings))
	}
}

func TestReconcilerBumpsAttemptsWhileTransient(t *testing.T) {
	config, persisters, oracle, store := setupReconcilerTest()
	pendingID := queuePending(store, reconcileTxHash, 0)
	oracle.errors[reconcileTxHash] = model.ErrTransactionPending

	runReconciler(config, persisters, newTestVerifier(oracle, store))

	if len(store.pendings) != 1 {
		t.Fatalf("Pending redemption should remain queued, got %v", len(store.pendings))
	}
	if store.attempts[pendingID] != 1 {
		t.Errorf("Attempts should have been bumped to 1, got %v", store.attempts[pendingID])
	}
	if len(store.payments) != 0 {
		t.Errorf("Nothing should be committed while pending, got %v", len(store.payments))
	}
}

func TestReconcilerGivesUpAfterMaxAttempts(t *testing.T) {
	config, persisters, oracle, store := setupReconcilerTest()
	queuePending(store, reconcileTxHash, 1)
	oracle.errors[reconcileTxHash] = model.ErrTransactionPending

	runReconciler(config, persisters, newTestVerifier(oracle, store))

	if len(store.pendings) != 0 {
		t.Errorf("Should have given up after max attempts, got %v queued", len(store.pendings))
	}
}

func TestReconcilerDropsPermanentFailures(t *testing.T) {
	config, persisters, oracle, store := setupReconcilerTest()
	queuePending(store, reconcileTxHash, 0)

	// Transaction exists now but does not cover the price
	oracle.amounts[reconcileTxHash] = 100

	runReconciler(config, persisters, newTestVerifier(oracle, store))

	if len(store.pendings) != 0 {
		t.Errorf("Permanent failures should be dropped, got %v queued", len(store.pendings))
	}
	if len(store.payments) != 0 {
		t.Errorf("Nothing should be committed, got %v", len(store.payments))
	}
}
