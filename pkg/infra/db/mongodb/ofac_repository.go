package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stablepay/gateway/pkg/domain/ofac/entities"
)

const (
	ofacAddressesCollection = "ofac_sanctioned_addresses"
	ofacUpdateLogCollection = "ofac_update_logs"
)

type OfacRepository struct {
	addresses  *mongo.Collection
	updateLogs *mongo.Collection
}

func NewOfacRepository(db *mongo.Database) *OfacRepository {
	repo := &OfacRepository{
		addresses:  db.Collection(ofacAddressesCollection),
		updateLogs: db.Collection(ofacUpdateLogCollection),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *OfacRepository) ensureIndexes(ctx context.Context) {
	_, _ = r.addresses.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "address_lower", Value: 1}},
	})
}

func (r *OfacRepository) CountSanctioned(ctx context.Context) (int, error) {
	count, err := r.addresses.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("OfacRepository.CountSanctioned: %w", err)
	}
	return int(count), nil
}

// ReplaceAll deletes every existing row and inserts addrs in batches,
// matching the full-replace publication model. Not a multi-document
// transaction: a crash mid-run can leave the set briefly empty, which is
// acceptable for a compliance data set re-ingested daily from source of
// truth and is surfaced via OfacUpdateLog rather than hidden.
func (r *OfacRepository) ReplaceAll(ctx context.Context, addrs []*entities.SanctionedAddress, batchSize int) error {
	if _, err := r.addresses.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("OfacRepository.ReplaceAll: delete: %w", err)
	}

	for i := 0; i < len(addrs); i += batchSize {
		end := i + batchSize
		if end > len(addrs) {
			end = len(addrs)
		}
		batch := make([]interface{}, 0, end-i)
		for _, a := range addrs[i:end] {
			batch = append(batch, a)
		}
		if len(batch) == 0 {
			continue
		}
		if _, err := r.addresses.InsertMany(ctx, batch); err != nil {
			return fmt.Errorf("OfacRepository.ReplaceAll: insert batch: %w", err)
		}
	}
	return nil
}

func (r *OfacRepository) FindByAddressLower(ctx context.Context, addressLower string) ([]*entities.SanctionedAddress, error) {
	cursor, err := r.addresses.Find(ctx, bson.M{"address_lower": addressLower})
	if err != nil {
		return nil, fmt.Errorf("OfacRepository.FindByAddressLower: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []*entities.SanctionedAddress
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("OfacRepository.FindByAddressLower: decode: %w", err)
	}
	return rows, nil
}

func (r *OfacRepository) CountByType(ctx context.Context) (map[string]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$address_type"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := r.addresses.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("OfacRepository.CountByType: %w", err)
	}
	defer cursor.Close(ctx)

	counts := make(map[string]int)
	var rows []struct {
		ID    string `bson:"_id"`
		Count int    `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("OfacRepository.CountByType: decode: %w", err)
	}
	for _, row := range rows {
		counts[row.ID] = row.Count
	}
	return counts, nil
}

func (r *OfacRepository) AppendUpdateLog(ctx context.Context, log *entities.UpdateLog) error {
	_, err := r.updateLogs.InsertOne(ctx, log)
	if err != nil {
		return fmt.Errorf("OfacRepository.AppendUpdateLog: %w", err)
	}
	return nil
}

func (r *OfacRepository) LatestUpdateLog(ctx context.Context) (*entities.UpdateLog, error) {
	var log entities.UpdateLog
	opts := options.FindOne().SetSort(bson.D{{Key: "ran_at", Value: -1}})
	err := r.updateLogs.FindOne(ctx, bson.M{}, opts).Decode(&log)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("OfacRepository.LatestUpdateLog: %w", err)
	}
	return &log, nil
}
