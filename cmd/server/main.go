package main

import (
	bookingshandler "slotline/internal/bookings/handler"
	bookingsrepo "slotline/internal/bookings/repository"
	bookingsservice "slotline/internal/bookings/service"
	"slotline/internal/bookings/validator"
	serviceshandler "slotline/internal/services/handler"
	servicesrepo "slotline/internal/services/repository"
	servicesservice "slotline/internal/services/service"
	slotshandler "slotline/internal/slots/handler"
	slotsrepo "slotline/internal/slots/repository"
	slotsservice "slotline/internal/slots/service"
	statshandler "slotline/internal/stats/handler"
	statsrepo "slotline/internal/stats/repository"
	statsservice "slotline/internal/stats/service"
	"slotline/pkg/app"
	"slotline/pkg/config"
	"slotline/pkg/contracts"
	"slotline/pkg/events"
	"slotline/pkg/kafka"
	kafka_config "slotline/pkg/kafka/config"
	kafka_middleware "slotline/pkg/kafka/middleware"
)

const ServiceName = "slotline"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Slotline server")

	serverApp := app.NewApplication()

	hub := events.NewHub(cfg.EventBufferSize, cfg.Log)
	serverApp.OnShutdown(hub.Close)

	publisher := events.Fanout{hub}
	if cfg.KafkaEnabled {
		producer := initKafkaProducer(cfg)
		serverApp.OnShutdown(func() {
			if err := producer.Close(); err != nil {
				cfg.Log.Error("Failed to close Kafka producer", "error", err)
			}
		})
		publisher = append(publisher, events.NewKafkaPublisher(producer, ServiceName, cfg.Log))
	}

	apiHandler, streamHandler := initHandlers(cfg, hub, publisher)

	serverApp.OnShutdown(cfg.GracefulShutdown)
	serverApp.SetApp(cfg, apiHandler, streamHandler)
	serverApp.Run()
}

func initHandlers(cfg *config.Config, hub *events.Hub, publisher events.Publisher) (contracts.Handler, contracts.Handler) {
	slotRepo := slotsrepo.NewMongoSlotRepository(cfg)
	slotService := slotsservice.NewSlotService(slotRepo, cfg)

	serviceRepo := servicesrepo.NewMongoServiceRepository(cfg)
	catalogService := servicesservice.NewCatalogService(serviceRepo, cfg)

	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)
	bookingService := bookingsservice.NewBookingService(
		bookingRepo,
		slotRepo,
		bookingValidator,
		publisher,
		cfg,
	)

	statsRepo := statsrepo.NewMongoStatsRepository(cfg)
	statsService := statsservice.NewStatsService(statsRepo, cfg)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	api := contracts.Handlers{
		bookingshandler.NewBookingHandler(bookingService, cfg.Log),
		slotshandler.NewSlotHandler(slotService, cfg.Log),
		serviceshandler.NewServiceHandler(catalogService, cfg.Log),
		statshandler.NewStatsHandler(statsService, cfg.Log),
	}
	stream := bookingshandler.NewEventsHandler(hub, cfg.Log)

	return api, stream
}

func initKafkaProducer(cfg *config.Config) *kafka.Producer {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaTopic, cfg.KafkaTopic+"-dlq", cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))

	cfg.Log.Info("Kafka producer initialized", "topic", cfg.KafkaTopic)
	return producer
}
