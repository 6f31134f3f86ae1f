package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-maintenance/internal/auth"
	"github.com/ukydev/fleet-maintenance/internal/billing"
	"github.com/ukydev/fleet-maintenance/internal/config"
	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/handlers"
	"github.com/ukydev/fleet-maintenance/internal/middleware"
	"github.com/ukydev/fleet-maintenance/internal/notify"
	"github.com/ukydev/fleet-maintenance/internal/server"
	"github.com/ukydev/fleet-maintenance/internal/storage"
	"github.com/ukydev/fleet-maintenance/internal/vin"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	cfg := config.Load()

	client, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.WithError(err).Warn("mongo disconnect failed")
		}
	}()
	log.Info("connected to MongoDB")

	database := client.Database(cfg.MongoDB)
	vehicles := &db.MongoVehicleCollection{Collection: database.Collection("vehicles")}
	vendors := &db.MongoVendorCollection{Collection: database.Collection("vendors")}
	services := &db.MongoServiceTypeCollection{Collection: database.Collection("service_types")}
	invoices := &db.MongoInvoiceCollection{Collection: database.Collection("invoices")}
	items := &db.MongoLineItemCollection{Collection: database.Collection("line_items")}
	alerts := &db.MongoAlertCollection{Collection: database.Collection("alerts")}
	documents := &db.MongoDocumentCollection{Collection: database.Collection("documents")}
	users := &db.MongoUserCollection{Collection: database.Collection("users")}

	var notifier notify.Publisher = notify.NopPublisher{}
	if cfg.MQTTBrokerURL != "" {
		mqttPublisher, err := notify.NewMQTTPublisher(cfg.MQTTBrokerURL, "fleet-maintenance-api", cfg.MQTTAlertTopic)
		if err != nil {
			log.WithError(err).Warn("MQTT broker unreachable, alerts will not be published")
		} else {
			defer mqttPublisher.Close()
			notifier = mqttPublisher
			log.WithField("topic", cfg.MQTTAlertTopic).Info("alert bus connected")
		}
	}

	totals := billing.NewTotalsAggregator(invoices, items, cfg.TaxRate)
	status := billing.NewStatusMachine(invoices, alerts)
	rules := billing.NewRuleEngine(items, alerts)
	orch := billing.NewOrchestrator(vehicles, vendors, services, invoices, items, alerts,
		totals, status, rules, notifier)

	blobs, err := storage.NewFileStore(cfg.DocumentDir)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize document store")
	}

	authService := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	authMW := middleware.NewAuthMiddleware(authService)
	decoder := vin.NewHTTPDecoder(cfg.VINDecoderURL)

	router := server.NewRouter(server.Handlers{
		Auth:         handlers.NewAuthHandler(authService, users),
		Vehicles:     handlers.NewVehicleHandler(orch, vehicles, decoder),
		Vendors:      handlers.NewVendorHandler(vendors),
		ServiceTypes: handlers.NewServiceTypeHandler(services),
		Invoices:     handlers.NewInvoiceHandler(orch, invoices),
		LineItems:    handlers.NewLineItemHandler(orch, items),
		Alerts:       handlers.NewAlertHandler(orch, alerts),
		Documents:    handlers.NewDocumentHandler(documents, blobs),
		Health:       handlers.NewHealthHandler(client),
	}, authMW)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
