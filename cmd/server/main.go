package main

import (
	"context"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/patrickmn/go-cache"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v82"
	"golang.org/x/time/rate"

	"parkdeck/internal/api"
	"parkdeck/internal/auth"
	"parkdeck/internal/client"
	"parkdeck/internal/config"
	"parkdeck/internal/service"
	"parkdeck/internal/session"
	"parkdeck/internal/store"
)

func main() {
	godotenv.Load()
	cfg := config.Load()
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	stripe.Key = cfg.StripeKey

	tokens := session.NewFileTokenStore(cfg.SessionFile)
	backend := client.New(cfg.BackendURL, tokens)
	sess := session.New(backend, tokens)
	st := store.New(backend)

	ctx := context.Background()
	if err := sess.Init(ctx); err != nil {
		logrus.Warnf("Stored session rejected: %v", err)
	}
	if _, ok := sess.Current(); !ok && cfg.ConsoleEmail != "" {
		if err := sess.Login(ctx, cfg.ConsoleEmail, cfg.ConsolePassword); err != nil {
			logrus.Fatalf("Console login failed: %v", err)
		}
	}
	if user, ok := sess.Current(); ok {
		if err := st.LoadAll(ctx, user.Role, user.ID); err != nil {
			logrus.Warnf("Initial load incomplete: %v", err)
		}
	}

	payments := service.NewPaymentService(cfg.StripeSuccessURL, cfg.StripeCancelURL)
	notifier := service.NewNotifyService()
	jobs := service.NewJobService(st, sess)

	scheduler := cron.New()
	scheduler.AddFunc(cfg.RefreshSpec, func() {
		if err := jobs.RefreshCollections(context.Background()); err != nil {
			logrus.Errorf("%v", err)
		}
	})
	scheduler.AddFunc(cfg.RefreshSpec, func() {
		if err := jobs.CompleteElapsedReservations(context.Background()); err != nil {
			logrus.Errorf("%v", err)
		}
	})
	scheduler.Start()
	defer scheduler.Stop()

	authHandler := api.NewAuthHandler(sess, st)
	parkingHandler := api.NewParkingHandler(st, sess, payments, notifier)

	r := mux.NewRouter()
	r.Use(api.RateLimit(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst))

	// Public endpoints
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST")
	r.HandleFunc("/auth/profile", authHandler.Profile).Methods("GET")

	// Console endpoints (protected)
	console := r.PathPrefix("/console").Subrouter()
	if cfg.ConsoleToken != "" {
		console.Use(auth.ConsoleAuthMiddleware(cfg.ConsoleToken))
	}
	console.Use(api.CacheGET(cache.New(cfg.CacheTTL, 2*cfg.CacheTTL), cfg.CacheTTL))

	console.HandleFunc("/stats", parkingHandler.GetStats).Methods("GET")

	console.HandleFunc("/slots", parkingHandler.ListSlots).Methods("GET")
	console.HandleFunc("/slots", parkingHandler.CreateSlot).Methods("POST")
	console.HandleFunc("/slots/available", parkingHandler.AvailableSlots).Methods("GET")
	console.HandleFunc("/slots/{id}", parkingHandler.UpdateSlot).Methods("PUT")
	console.HandleFunc("/slots/{id}", parkingHandler.DeleteSlot).Methods("DELETE")

	console.HandleFunc("/vehicle-logs", parkingHandler.ListVehicleLogs).Methods("GET")
	console.HandleFunc("/vehicle-logs/entry", parkingHandler.VehicleEntry).Methods("POST")
	console.HandleFunc("/vehicle-logs/{id}/exit", parkingHandler.VehicleExit).Methods("PUT")

	console.HandleFunc("/reservations", parkingHandler.ListReservations).Methods("GET")
	console.HandleFunc("/reservations", parkingHandler.CreateReservation).Methods("POST")
	console.HandleFunc("/reservations/{id}", parkingHandler.UpdateReservation).Methods("PUT")
	console.HandleFunc("/reservations/{id}", parkingHandler.CancelReservation).Methods("DELETE")

	console.HandleFunc("/invoices", parkingHandler.ListInvoices).Methods("GET")
	console.HandleFunc("/invoices/{id}/pay", parkingHandler.PayInvoice).Methods("PUT")
	console.HandleFunc("/invoices/{id}/fail", parkingHandler.FailInvoice).Methods("PUT")

	console.HandleFunc("/users", parkingHandler.ListUsers).Methods("GET")
	console.HandleFunc("/users", parkingHandler.CreateUser).Methods("POST")
	console.HandleFunc("/users/{id}", parkingHandler.UpdateUser).Methods("PUT")
	console.HandleFunc("/users/{id}", parkingHandler.DeleteUser).Methods("DELETE")

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	logrus.Infof("Console running on port %s", cfg.Port)
	logrus.Fatal(http.ListenAndServe(":"+cfg.Port, cors(handlers.LoggingHandler(logrus.StandardLogger().Writer(), r))))
}
