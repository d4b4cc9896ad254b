// Package mongodb implements the Storage ports against MongoDB: one
// concrete repository per entity family, each owning its collection's
// indexes.
package mongodb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stablepay/gateway/pkg/domain/payment/entities"
)

const tenantsCollection = "tenants"

type TenantRepository struct {
	collection *mongo.Collection
}

func NewTenantRepository(db *mongo.Database) *TenantRepository {
	repo := &TenantRepository{collection: db.Collection(tenantsCollection)}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *TenantRepository) ensureIndexes(ctx context.Context) {
	_, _ = r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "api_key_digest", Value: 1}},
		Options: options.Index().SetUnique(true).SetSparse(true),
	})
}

func (r *TenantRepository) GetTenantByID(ctx context.Context, id uuid.UUID) (*entities.Tenant, error) {
	var t entities.Tenant
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("TenantRepository.GetTenantByID: %w", err)
	}
	return &t, nil
}

func (r *TenantRepository) GetTenantByAPIKeyDigest(ctx context.Context, digest string) (*entities.Tenant, error) {
	var t entities.Tenant
	err := r.collection.FindOne(ctx, bson.M{"api_key_digest": digest}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("TenantRepository.GetTenantByAPIKeyDigest: %w", err)
	}
	return &t, nil
}

func (r *TenantRepository) SaveTenant(ctx context.Context, t *entities.Tenant) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": t.ID}, t, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("TenantRepository.SaveTenant: %w", err)
	}
	return nil
}
