package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"slotline/internal/migrations/mongo/validators"
	"slotline/pkg/model"
)

var (
	ServicesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
	}

	SlotsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "service_id", Value: 1},
			{Key: "slot_date", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "available", Value: 1},
			{Key: "slot_date", Value: 1},
		}},
	}

	// The partial unique index is the storage-level backstop for the
	// one-confirmed-booking-per-slot invariant. The reservation
	// transaction enforces it first; this catches anything that slips
	// past, such as a manual write.
	BookingsIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "slot_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": "confirmed"}),
		},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "customer_email", Value: 1}}},
	}
)

func RunMigration(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)
	fmt.Printf("🚀 Running Slotline Mongo migrations on database: %s\n", dbName)

	collections := map[string]struct {
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		"Services": {
			Indexes:   ServicesIndexes,
			Validator: validators.ServiceValidator,
		},
		"Slots": {
			Indexes:   SlotsIndexes,
			Validator: validators.SlotValidator,
		},
		"Bookings": {
			Indexes:   BookingsIndexes,
			Validator: validators.BookingValidator,
		},
	}

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	fmt.Println("✅ All migrations applied successfully.")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		fmt.Printf("🆕 Creating collection: %s\n", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
	} else {
		fmt.Printf("ℹ️ Collection %s already exists — updating validator if needed\n", name)
		command := bson.D{
			{Key: "collMod", Value: name},
			{Key: "validator", Value: validator},
		}
		if err := db.RunCommand(ctx, command).Err(); err != nil {
			fmt.Printf("⚠️ Warning: failed updating validator for %s: %v\n", name, err)
		}
	}

	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	coll := db.Collection(name)
	_, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	fmt.Printf("📚 Ensured indexes for %s\n", name)
	return nil
}

// Seed fills an empty database with a demo catalog: three services and a
// week of hourly slots each. Running it against a non-empty database is a
// no-op.
func Seed(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)

	count, err := db.Collection("Services").CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to check existing services: %w", err)
	}
	if count > 0 {
		fmt.Println("ℹ️ Database already seeded — skipping")
		return nil
	}

	services := seedServices()
	serviceDocs := make([]any, 0, len(services))
	for _, svc := range services {
		serviceDocs = append(serviceDocs, svc)
	}
	if _, err := db.Collection("Services").InsertMany(ctx, serviceDocs); err != nil {
		return fmt.Errorf("failed to seed services: %w", err)
	}
	fmt.Printf("🌱 Seeded %d services\n", len(services))

	slots := seedSlots(services)
	slotDocs := make([]any, 0, len(slots))
	for _, slot := range slots {
		slotDocs = append(slotDocs, slot)
	}
	if _, err := db.Collection("Slots").InsertMany(ctx, slotDocs); err != nil {
		return fmt.Errorf("failed to seed slots: %w", err)
	}
	fmt.Printf("🌱 Seeded %d slots\n", len(slots))

	return nil
}

func seedServices() []*model.Service {
	return []*model.Service{
		{
			ID:              "65a000000000000000000001",
			Name:            "Consultation",
			Description:     "Initial 30 minute consultation",
			DurationMinutes: 30,
			Price:           50,
		},
		{
			ID:              "65a000000000000000000002",
			Name:            "Standard Session",
			Description:     "One hour standard session",
			DurationMinutes: 60,
			Price:           90,
		},
		{
			ID:              "65a000000000000000000003",
			Name:            "Extended Session",
			Description:     "Ninety minute extended session",
			DurationMinutes: 90,
			Price:           130,
		},
	}
}

func seedSlots(services []*model.Service) []*model.Slot {
	var slots []*model.Slot
	day := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)

	seq := 0
	for d := 0; d < 7; d++ {
		date := day.Add(time.Duration(d) * 24 * time.Hour)
		for _, svc := range services {
			for hour := 9; hour < 17; hour++ {
				seq++
				slots = append(slots, &model.Slot{
					ID:        fmt.Sprintf("65b0000000000000%08x", seq),
					ServiceID: svc.ID,
					Date:      date,
					Time:      fmt.Sprintf("%02d:00", hour),
					Available: true,
				})
			}
		}
	}

	return slots
}
