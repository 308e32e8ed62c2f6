package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "slotline/internal/bookings/errors"
	"slotline/pkg/config"
	mongotx "slotline/pkg/db/mongo"
	"slotline/pkg/model"
)

const (
	CollectionName  = "Bookings"
	slotsCollection = "Slots"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	UpdateStatus(ctx context.Context, id string, status string) error
	FindViewByID(ctx context.Context, id string) (*model.BookingView, error)
	FindAllViews(ctx context.Context, status string, limit int, offset int64) ([]*model.BookingView, error)
	Count(ctx context.Context, status string) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless already inside a
// transaction. A SessionContext cannot be wrapped without breaking
// transaction semantics, so it is returned unchanged with a no-op cancel.
func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoWriteTimeout)
	defer cancel()

	booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	// The ledger carries the insert-time _id; the JSON-facing ID field
	// must stay empty so the driver assigns one.
	doc := bson.M{
		"slot_id":        booking.SlotID,
		"customer_name":  booking.CustomerName,
		"customer_email": booking.CustomerEmail,
		"status":         booking.Status,
		"created_at":     booking.CreatedAt,
	}
	if booking.CustomerPhone != "" {
		doc["customer_phone"] = booking.CustomerPhone
	}
	if booking.Notes != "" {
		doc["notes"] = booking.Notes
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var raw struct {
		ID            primitive.ObjectID `bson:"_id"`
		SlotID        string             `bson:"slot_id"`
		CustomerName  string             `bson:"customer_name"`
		CustomerEmail string             `bson:"customer_email"`
		CustomerPhone string             `bson:"customer_phone,omitempty"`
		Notes         string             `bson:"notes,omitempty"`
		Status        string             `bson:"status"`
		CreatedAt     time.Time          `bson:"created_at"`
	}
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &model.Booking{
		ID:            raw.ID.Hex(),
		SlotID:        raw.SlotID,
		CustomerName:  raw.CustomerName,
		CustomerEmail: raw.CustomerEmail,
		CustomerPhone: raw.CustomerPhone,
		Notes:         raw.Notes,
		Status:        raw.Status,
		CreatedAt:     raw.CreatedAt,
	}, nil
}

func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoWriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

func (r *mongoBookingRepository) FindViewByID(ctx context.Context, id string) (*model.BookingView, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	pipeline := append(mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"_id": objectID}}},
	}, viewStages()...)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate booking view: %w", err)
	}
	defer cursor.Close(ctx)

	var views []*model.BookingView
	if err = cursor.All(ctx, &views); err != nil {
		return nil, fmt.Errorf("failed to decode booking view: %w", err)
	}
	if len(views) == 0 {
		return nil, bookingserrors.ErrNotFound
	}

	return views[0], nil
}

func (r *mongoBookingRepository) FindAllViews(ctx context.Context, status string, limit int, offset int64) ([]*model.BookingView, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	cursor, err := r.collection.Aggregate(ctx, listViewsPipeline(status, limit, offset))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate booking views: %w", err)
	}
	defer cursor.Close(ctx)

	var views []*model.BookingView
	if err = cursor.All(ctx, &views); err != nil {
		return nil, fmt.Errorf("failed to decode booking views: %w", err)
	}

	return views, nil
}

func (r *mongoBookingRepository) Count(ctx context.Context, status string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	return count, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

// listViewsPipeline lists joined views newest slot first: slot date then
// slot time, descending. The sort runs on the flattened view fields, so it
// has to come after the joins.
func listViewsPipeline(status string, limit int, offset int64) mongo.Pipeline {
	match := bson.M{}
	if status != "" {
		match["status"] = status
	}

	pipeline := append(mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
	}, viewStages()...)

	return append(pipeline,
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "slot_date", Value: -1},
			{Key: "slot_time", Value: -1},
		}}},
		bson.D{{Key: "$skip", Value: offset}},
		bson.D{{Key: "$limit", Value: int64(limit)}},
	)
}

// viewStages joins a booking with its slot and the slot's service, then
// flattens the result into the denormalized view shape.
func viewStages() mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         slotsCollection,
			"localField":   "slot_id",
			"foreignField": "_id",
			"as":           "slot",
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{
			"path":                       "$slot",
			"preserveNullAndEmptyArrays": true,
		}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "Services",
			"localField":   "slot.service_id",
			"foreignField": "_id",
			"as":           "service",
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{
			"path":                       "$service",
			"preserveNullAndEmptyArrays": true,
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"_id":              bson.M{"$toString": "$_id"},
			"slot_id":          1,
			"customer_name":    1,
			"customer_email":   1,
			"customer_phone":   1,
			"notes":            1,
			"status":           1,
			"created_at":       1,
			"slot_date":        "$slot.slot_date",
			"slot_time":        "$slot.slot_time",
			"service_id":       "$slot.service_id",
			"service_name":     "$service.name",
			"duration_minutes": "$service.duration_minutes",
			"price":            "$service.price",
		}}},
	}
}
