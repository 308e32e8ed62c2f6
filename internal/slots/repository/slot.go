package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	slotserrors "slotline/internal/slots/errors"
	"slotline/pkg/config"
	"slotline/pkg/model"
)

const (
	CollectionName     = "Slots"
	servicesCollection = "Services"
	bookingsCollection = "Bookings"
)

// SearchFilter narrows slot listings. Zero values mean "no constraint".
type SearchFilter struct {
	ServiceID     string
	Date          *time.Time
	From          *time.Time
	AvailableOnly bool
}

type SlotRepository interface {
	FindByID(ctx context.Context, id string) (*model.Slot, error)
	FindViews(ctx context.Context, filter SearchFilter, limit int, offset int64) ([]*model.SlotView, error)
	Count(ctx context.Context, filter SearchFilter) (int64, error)
	Claim(ctx context.Context, id string) (*model.Slot, error)
	Release(ctx context.Context, id string) error
}

type mongoSlotRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

func NewMongoSlotRepository(cfg *config.Config) SlotRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

// withTimeout wraps the context with a timeout unless already inside a
// transaction. A SessionContext cannot be wrapped without breaking
// transaction semantics, so it is returned unchanged with a no-op cancel.
func (r *mongoSlotRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoSlotRepository) FindByID(ctx context.Context, id string) (*model.Slot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	if !primitive.IsValidObjectID(id) {
		return nil, fmt.Errorf("%w: %s", slotserrors.ErrInvalidID, id)
	}

	var slot model.Slot
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&slot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, slotserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find slot: %w", err)
	}

	return &slot, nil
}

func (r *mongoSlotRepository) FindViews(ctx context.Context, filter SearchFilter, limit int, offset int64) ([]*model.SlotView, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: buildMatch(filter)}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "slot_date", Value: 1},
			{Key: "slot_time", Value: 1},
		}}},
		bson.D{{Key: "$skip", Value: offset}},
		bson.D{{Key: "$limit", Value: int64(limit)}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         servicesCollection,
			"localField":   "service_id",
			"foreignField": "_id",
			"as":           "service",
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{
			"path":                       "$service",
			"preserveNullAndEmptyArrays": true,
		}}},
		// Attach the confirmed booking holding a taken slot, if any.
		bson.D{{Key: "$lookup", Value: bson.M{
			"from": bookingsCollection,
			"let":  bson.M{"slot_id": bson.M{"$toString": "$_id"}},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$slot_id", "$$slot_id"}},
					bson.M{"$eq": bson.A{"$status", model.StatusConfirmed}},
				}}}},
				bson.M{"$limit": 1},
			},
			"as": "booking",
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{
			"path":                       "$booking",
			"preserveNullAndEmptyArrays": true,
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"_id":              1,
			"service_id":       1,
			"slot_date":        1,
			"slot_time":        1,
			"available":        1,
			"service_name":     "$service.name",
			"duration_minutes": "$service.duration_minutes",
			"price":            "$service.price",
			"customer_name":    "$booking.customer_name",
			"customer_email":   "$booking.customer_email",
			"booking_status":   "$booking.status",
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate slots: %w", err)
	}
	defer cursor.Close(ctx)

	var views []*model.SlotView
	if err = cursor.All(ctx, &views); err != nil {
		return nil, fmt.Errorf("failed to decode slot views: %w", err)
	}

	return views, nil
}

func (r *mongoSlotRepository) Count(ctx context.Context, filter SearchFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildMatch(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count slots: %w", err)
	}
	return count, nil
}

// Claim atomically flips an open slot to taken. The filter on available
// guarantees at most one concurrent caller succeeds; losers get
// ErrUnavailable. Run inside a transaction together with the booking insert.
func (r *mongoSlotRepository) Claim(ctx context.Context, id string) (*model.Slot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoWriteTimeout)
	defer cancel()

	if !primitive.IsValidObjectID(id) {
		return nil, fmt.Errorf("%w: %s", slotserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": id, "available": true}
	update := bson.M{"$set": bson.M{"available": false}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var slot model.Slot
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&slot)
	if err == nil {
		return &slot, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to claim slot: %w", err)
	}

	// Distinguish a missing slot from one already taken.
	count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if countErr != nil {
		return nil, fmt.Errorf("failed to check slot existence: %w", countErr)
	}
	if count == 0 {
		return nil, slotserrors.ErrNotFound
	}
	return nil, slotserrors.ErrUnavailable
}

// Release reopens a slot after its booking is cancelled.
func (r *mongoSlotRepository) Release(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoWriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"available": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to release slot: %w", err)
	}
	if result.MatchedCount == 0 {
		return slotserrors.ErrNotFound
	}
	return nil
}

func buildMatch(filter SearchFilter) bson.M {
	match := bson.M{}
	if filter.ServiceID != "" {
		match["service_id"] = filter.ServiceID
	}
	if filter.Date != nil {
		dayStart := filter.Date.UTC().Truncate(24 * time.Hour)
		match["slot_date"] = bson.M{
			"$gte": dayStart,
			"$lt":  dayStart.Add(24 * time.Hour),
		}
	} else if filter.From != nil {
		match["slot_date"] = bson.M{
			"$gte": filter.From.UTC().Truncate(24 * time.Hour),
		}
	}
	if filter.AvailableOnly {
		match["available"] = true
	}
	return match
}
