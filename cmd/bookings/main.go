package main

import (
	availabilityhandler "groundbook/internal/availability/handler"
	availabilityservice "groundbook/internal/availability/service"
	"groundbook/internal/bookings/events"
	"groundbook/internal/bookings/handler"
	"groundbook/internal/bookings/repository"
	"groundbook/internal/bookings/service"
	"groundbook/internal/bookings/validator"
	reportshandler "groundbook/internal/reports/handler"
	reportsservice "groundbook/internal/reports/service"
	"groundbook/pkg/app"
	"groundbook/pkg/config"
	"groundbook/pkg/kafka"
	kafka_config "groundbook/pkg/kafka/config"
)

const ServiceName = "bookings"

// @title Groundbook Bookings API
// @version 1.0
// @description Slot availability, booking lifecycle and admin reporting for sports grounds.
// @BasePath /
func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Bookings service")

	bookingRepo := repository.NewMongoBookingRepository(cfg)
	lockRepo := repository.NewSlotLockRepository(cfg)
	bookingValidator := validator.NewBookingValidator(cfg.Log)

	publisher, producer := initPublisher(cfg)
	defer func() {
		if producer != nil {
			if err := producer.Close(); err != nil {
				cfg.Log.Error("Failed to close Kafka producer", "error", err)
			}
		}
	}()

	bookingService := service.NewBookingService(bookingRepo, lockRepo, publisher, cfg)
	availabilityService := availabilityservice.NewAvailabilityService(bookingRepo, cfg.Log)
	reportService := reportsservice.NewReportService(bookingRepo, cfg.Log)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg,
		handler.NewBookingHandler(bookingService, bookingValidator, cfg.AdminToken, cfg.Log),
		availabilityhandler.NewAvailabilityHandler(availabilityService, cfg.Log),
		reportshandler.NewReportHandler(reportService, cfg.AdminToken, cfg.Log),
	)
	serverApp.Run()
}

// initPublisher returns the lifecycle event publisher and, when Kafka is
// enabled, the producer that must be closed on shutdown.
func initPublisher(cfg *config.Config) (events.Publisher, *kafka.Producer) {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return events.NopPublisher{}, nil
	}

	producer, err := kafka.NewProducer(kafka_config.Load(), cfg.BookingEventsTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	cfg.Log.Info("Kafka producer initialized", "topic", cfg.BookingEventsTopic)
	return events.NewKafkaPublisher(producer, cfg.Log), producer
}
