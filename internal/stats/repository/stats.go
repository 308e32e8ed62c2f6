package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"slotline/pkg/config"
	"slotline/pkg/model"
)

type StatsRepository interface {
	CountByStatus(ctx context.Context) (*model.BookingTotals, error)
	CountAvailableSlots(ctx context.Context) (int64, error)
	AggregateByService(ctx context.Context) ([]model.ServiceStats, error)
}

type mongoStatsRepository struct {
	cfg      *config.Config
	bookings *mongo.Collection
	slots    *mongo.Collection
}

func NewMongoStatsRepository(cfg *config.Config) StatsRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoStatsRepository{
		cfg:      cfg,
		bookings: db.Collection("Bookings"),
		slots:    db.Collection("Slots"),
	}
}

func (r *mongoStatsRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoStatsRepository) CountByStatus(ctx context.Context) (*model.BookingTotals, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.bookings.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate booking totals: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode booking totals: %w", err)
	}

	totals := &model.BookingTotals{}
	for _, row := range rows {
		switch row.Status {
		case model.StatusConfirmed:
			totals.Confirmed = row.Count
		case model.StatusCancelled:
			totals.Cancelled = row.Count
		case model.StatusCompleted:
			totals.Completed = row.Count
		}
		totals.Total += row.Count
	}

	return totals, nil
}

// CountAvailableSlots counts open slots from today onward. Past slots stay
// in the collection but no longer count as bookable inventory.
func (r *mongoStatsRepository) CountAvailableSlots(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	today := time.Now().UTC().Truncate(24 * time.Hour)
	count, err := r.slots.CountDocuments(ctx, bson.M{
		"available": true,
		"slot_date": bson.M{"$gte": today},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count available slots: %w", err)
	}
	return count, nil
}

// AggregateByService groups confirmed bookings by the service owning the
// booked slot, summing headcount and revenue.
func (r *mongoStatsRepository) AggregateByService(ctx context.Context) ([]model.ServiceStats, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"status": model.StatusConfirmed}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "Slots",
			"localField":   "slot_id",
			"foreignField": "_id",
			"as":           "slot",
		}}},
		bson.D{{Key: "$unwind", Value: "$slot"}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "Services",
			"localField":   "slot.service_id",
			"foreignField": "_id",
			"as":           "service",
		}}},
		bson.D{{Key: "$unwind", Value: "$service"}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":           "$service._id",
			"name":          bson.M{"$first": "$service.name"},
			"booking_count": bson.M{"$sum": 1},
			"total_revenue": bson.M{"$sum": "$service.price"},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "booking_count", Value: -1}}}},
	}

	cursor, err := r.bookings.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate service stats: %w", err)
	}
	defer cursor.Close(ctx)

	var stats []model.ServiceStats
	if err = cursor.All(ctx, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode service stats: %w", err)
	}

	return stats, nil
}
