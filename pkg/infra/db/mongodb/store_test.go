package mongodb_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	ofacEntities "github.com/stablepay/gateway/pkg/domain/ofac/entities"
	"github.com/stablepay/gateway/pkg/domain/payment/entities"
	db "github.com/stablepay/gateway/pkg/infra/db/mongodb"
)

// These exercise the repositories against a real MongoDB instance and are
// skipped in short mode, matching how the rest of this module's infra
// layer treats store-backed tests.
const testDBName = "stablepay_test"

func getTestDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI("mongodb://127.0.0.1:27017"))
	if err != nil {
		t.Skipf("mongodb not available: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Skipf("mongodb not reachable: %v", err)
	}

	t.Cleanup(func() {
		_ = client.Database(testDBName).Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	return client.Database(testDBName)
}

func TestTenantRepository_SaveAndLookup(t *testing.T) {
	store := db.NewStore(getTestDatabase(t))
	ctx := context.Background()

	tenant := entities.NewTenant("Acme", "digest-abc")
	require.NoError(t, store.SaveTenant(ctx, tenant))

	byID, err := store.GetTenantByID(ctx, tenant.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "Acme", byID.Name)

	byDigest, err := store.GetTenantByAPIKeyDigest(ctx, "digest-abc")
	require.NoError(t, err)
	require.NotNil(t, byDigest)
	assert.Equal(t, tenant.ID, byDigest.ID)

	missing, err := store.GetTenantByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPlanRepository_SaveAndListActive(t *testing.T) {
	store := db.NewStore(getTestDatabase(t))
	ctx := context.Background()

	tenantID := uuid.New()
	active := entities.NewPlan(tenantID, entities.PlanSpec{PlanKey: "pro", Name: "Pro", Price: "9.99", Currency: entities.TokenUSDT})
	inactive := entities.NewPlan(tenantID, entities.PlanSpec{PlanKey: "legacy", Name: "Legacy", Price: "4.99", Currency: entities.TokenUSDT})
	inactive.Active = false

	require.NoError(t, store.SavePlan(ctx, active))
	require.NoError(t, store.SavePlan(ctx, inactive))

	byKey, err := store.GetPlanByKey(ctx, tenantID, "pro")
	require.NoError(t, err)
	require.NotNil(t, byKey)
	assert.Equal(t, active.ID, byKey.ID)

	listed, err := store.ListActivePlans(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, active.ID, listed[0].ID)
}

func TestPaymentRepository_CreateConfirmAndQuery(t *testing.T) {
	store := db.NewStore(getTestDatabase(t))
	ctx := context.Background()

	tenantID := uuid.New()
	payment := entities.NewPayment(tenantID, "user-1", uuid.New(), "10.00", entities.TokenUSDT, entities.NetworkArbitrum, "enc", "hmac-1", "0xreceiver")
	require.NoError(t, store.CreatePayment(ctx, payment))

	pending, err := store.PendingPaymentForUser(ctx, tenantID, "user-1")
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, payment.ID, pending.ID)

	payment.Status = entities.PaymentStatusAwaitingConfirmation
	require.NoError(t, store.SavePayment(ctx, payment))

	confirmedAt := time.Now().UTC()
	require.NoError(t, store.ConfirmPayment(ctx, payment.ID, "0xdeadbeef", 3, confirmedAt))

	byHash, err := store.PaymentByTxHash(ctx, "0xdeadbeef")
	require.NoError(t, err)
	require.NotNil(t, byHash)
	assert.Equal(t, entities.PaymentStatusConfirmed, byHash.Status)

	err = store.ConfirmPayment(ctx, payment.ID, "0xdeadbeef", 3, confirmedAt)
	assert.Error(t, err)

	history, err := store.PaymentHistory(ctx, tenantID, "user-1", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestSubscriptionRepository_ActivateAndExpire(t *testing.T) {
	store := db.NewStore(getTestDatabase(t))
	ctx := context.Background()

	tenantID := uuid.New()
	days := 30
	sub := entities.NewSubscription(tenantID, "user-2", uuid.New(), uuid.New(), &days)
	require.NoError(t, store.SaveSubscription(ctx, sub))

	active, err := store.ActiveSubscription(ctx, tenantID, "user-2")
	require.NoError(t, err)
	require.NotNil(t, active)

	require.NoError(t, store.ExpireActiveForUser(ctx, tenantID, "user-2"))

	afterExpiry, err := store.ActiveSubscription(ctx, tenantID, "user-2")
	require.NoError(t, err)
	assert.Nil(t, afterExpiry)

	history, err := store.SubscriptionHistory(ctx, tenantID, "user-2")
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestSubscriptionRepository_ExpiredSubscriptionsMatchesExpiresAtField(t *testing.T) {
	store := db.NewStore(getTestDatabase(t))
	ctx := context.Background()

	tenantID := uuid.New()
	days := 1
	sub := entities.NewSubscription(tenantID, "user-3", uuid.New(), uuid.New(), &days)
	past := time.Now().UTC().Add(-time.Hour)
	sub.ExpiresAt = &past
	require.NoError(t, store.SaveSubscription(ctx, sub))

	expired, err := store.ExpiredSubscriptions(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, sub.ID, expired[0].ID)
}

func TestWebhookRepository_SaveAndListPending(t *testing.T) {
	store := db.NewStore(getTestDatabase(t))
	ctx := context.Background()

	log := entities.NewWebhookLog(uuid.New(), entities.WebhookEventPaymentConfirmed, uuid.New(), map[string]any{"foo": "bar"})
	require.NoError(t, store.SaveWebhookLog(ctx, log))

	pending, err := store.PendingWebhooks(ctx, time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, log.ID, pending[0].ID)
}

func TestOfacRepository_ReplaceAllAndLookup(t *testing.T) {
	ctx := context.Background()
	ofacStore := db.NewOfacRepository(getTestDatabase(t))

	addrs := []*ofacEntities.SanctionedAddress{
		ofacEntities.NewSanctionedAddress("0xDEAD", "digital currency address", "Sanctioned Co", "12345", time.Now().UTC()),
		ofacEntities.NewSanctionedAddress("TXYZ", "digital currency address", "Other Co", "67890", time.Now().UTC()),
	}
	require.NoError(t, ofacStore.ReplaceAll(ctx, addrs, 500))

	count, err := ofacStore.CountSanctioned(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	found, err := ofacStore.FindByAddressLower(ctx, "0xdead")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Sanctioned Co", found[0].SDNName)

	log := ofacEntities.NewUpdateLog(0, 2, true, "")
	require.NoError(t, ofacStore.AppendUpdateLog(ctx, log))

	latest, err := ofacStore.LatestUpdateLog(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.True(t, latest.Success)
}
