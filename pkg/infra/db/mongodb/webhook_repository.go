package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stablepay/gateway/pkg/domain/payment/entities"
)

const webhookLogsCollection = "webhook_logs"

type WebhookRepository struct {
	collection *mongo.Collection
}

func NewWebhookRepository(db *mongo.Database) *WebhookRepository {
	repo := &WebhookRepository{collection: db.Collection(webhookLogsCollection)}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *WebhookRepository) ensureIndexes(ctx context.Context) {
	_, _ = r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "next_attempt_at", Value: 1}},
	})
}

func (r *WebhookRepository) PendingWebhooks(ctx context.Context, now time.Time) ([]*entities.WebhookLog, error) {
	filter := bson.M{
		"status":          entities.WebhookDeliveryPending,
		"next_attempt_at": bson.M{"$lte": now},
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("WebhookRepository.PendingWebhooks: %w", err)
	}
	defer cursor.Close(ctx)

	var logs []*entities.WebhookLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("WebhookRepository.PendingWebhooks: decode: %w", err)
	}
	return logs, nil
}

func (r *WebhookRepository) SaveWebhookLog(ctx context.Context, w *entities.WebhookLog) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": w.ID}, w, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("WebhookRepository.SaveWebhookLog: %w", err)
	}
	return nil
}
