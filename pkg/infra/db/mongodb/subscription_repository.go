package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stablepay/gateway/pkg/domain/payment/entities"
)

const subscriptionsCollection = "subscriptions"

type SubscriptionRepository struct {
	collection *mongo.Collection
}

func NewSubscriptionRepository(db *mongo.Database) *SubscriptionRepository {
	repo := &SubscriptionRepository{collection: db.Collection(subscriptionsCollection)}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *SubscriptionRepository) ensureIndexes(ctx context.Context) {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "external_user_id", Value: 1}}},
		{Keys: bson.D{{Key: "expires_at", Value: 1}}},
	}
	_, _ = r.collection.Indexes().CreateMany(ctx, models)
}

func (r *SubscriptionRepository) ActiveSubscription(ctx context.Context, tenantID uuid.UUID, externalUserID string) (*entities.Subscription, error) {
	var s entities.Subscription
	filter := bson.M{
		"tenant_id":        tenantID,
		"external_user_id": externalUserID,
		"status":           entities.SubscriptionStatusActive,
	}
	err := r.collection.FindOne(ctx, filter).Decode(&s)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("SubscriptionRepository.ActiveSubscription: %w", err)
	}
	return &s, nil
}

func (r *SubscriptionRepository) SubscriptionHistory(ctx context.Context, tenantID uuid.UUID, externalUserID string) ([]*entities.Subscription, error) {
	filter := bson.M{"tenant_id": tenantID, "external_user_id": externalUserID}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("SubscriptionRepository.SubscriptionHistory: %w", err)
	}
	defer cursor.Close(ctx)

	var subs []*entities.Subscription
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, fmt.Errorf("SubscriptionRepository.SubscriptionHistory: decode: %w", err)
	}
	return subs, nil
}

func (r *SubscriptionRepository) ExpiredSubscriptions(ctx context.Context, now time.Time) ([]*entities.Subscription, error) {
	filter := bson.M{
		"status":     entities.SubscriptionStatusActive,
		"expires_at": bson.M{"$ne": nil, "$lte": now},
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("SubscriptionRepository.ExpiredSubscriptions: %w", err)
	}
	defer cursor.Close(ctx)

	var subs []*entities.Subscription
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, fmt.Errorf("SubscriptionRepository.ExpiredSubscriptions: decode: %w", err)
	}
	return subs, nil
}

func (r *SubscriptionRepository) SaveSubscription(ctx context.Context, s *entities.Subscription) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": s.ID}, s, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("SubscriptionRepository.SaveSubscription: %w", err)
	}
	return nil
}

func (r *SubscriptionRepository) ExpireActiveForUser(ctx context.Context, tenantID uuid.UUID, externalUserID string) error {
	filter := bson.M{
		"tenant_id":        tenantID,
		"external_user_id": externalUserID,
		"status":           entities.SubscriptionStatusActive,
	}
	update := bson.M{"$set": bson.M{"status": entities.SubscriptionStatusExpired, "updated_at": time.Now().UTC()}}
	_, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("SubscriptionRepository.ExpireActiveForUser: %w", err)
	}
	return nil
}
