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

const plansCollection = "plans"

type PlanRepository struct {
	collection *mongo.Collection
}

func NewPlanRepository(db *mongo.Database) *PlanRepository {
	repo := &PlanRepository{collection: db.Collection(plansCollection)}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *PlanRepository) ensureIndexes(ctx context.Context) {
	_, _ = r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "plan_key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
}

func (r *PlanRepository) GetPlanByID(ctx context.Context, tenantID, planID uuid.UUID) (*entities.Plan, error) {
	var p entities.Plan
	err := r.collection.FindOne(ctx, bson.M{"_id": planID, "tenant_id": tenantID}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("PlanRepository.GetPlanByID: %w", err)
	}
	return &p, nil
}

func (r *PlanRepository) GetPlanByKey(ctx context.Context, tenantID uuid.UUID, planKey string) (*entities.Plan, error) {
	var p entities.Plan
	err := r.collection.FindOne(ctx, bson.M{"tenant_id": tenantID, "plan_key": planKey}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("PlanRepository.GetPlanByKey: %w", err)
	}
	return &p, nil
}

func (r *PlanRepository) ListActivePlans(ctx context.Context, tenantID uuid.UUID) ([]*entities.Plan, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"tenant_id": tenantID, "active": true})
	if err != nil {
		return nil, fmt.Errorf("PlanRepository.ListActivePlans: %w", err)
	}
	defer cursor.Close(ctx)

	var plans []*entities.Plan
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, fmt.Errorf("PlanRepository.ListActivePlans: decode: %w", err)
	}
	return plans, nil
}

func (r *PlanRepository) SavePlan(ctx context.Context, p *entities.Plan) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": p.ID}, p, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("PlanRepository.SavePlan: %w", err)
	}
	return nil
}
