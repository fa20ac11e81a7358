package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/availability"
	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/booking"
	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/config"
	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/database"
	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/handler"
	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/lock"
	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/pricing"
	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/queue"
	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/repository"
	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/router"
	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/search"
	qp "github.com/rishabhborn2win/enterprise-bus-booking-service/internal/service"
	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/sweeper"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		// The lock layer is load-bearing; without Redis, concurrent
		// reservations cannot be made safe.
		log.Fatal("redis: connection failed, refusing to start without segment locks")
	}
	defer rdb.Close()

	// Repositories.
	stops := repository.NewStopRepo(db)
	schedules := repository.NewScheduleRepo(db)
	seats := repository.NewSeatRepo(db)
	bookings := repository.NewBookingRepo(db)
	addons := repository.NewAddonRepo(db)
	users := repository.NewUserRepo(db)

	// Domain services.
	locker := lock.NewManager(rdb)
	engine := pricing.NewEngine(pricing.DynamicPrice(pricing.Inventory{
		TotalSeats:    cfg.PricingTotalSeats,
		ReservedSeats: cfg.PricingReservedSeats,
	}))
	idx := search.NewIndex(rdb, schedules, seats)
	svc := booking.NewService(schedules, seats, bookings, addons, locker, engine, cfg.BookingHold, qp.Notifier{})
	calc := availability.NewCalculator(schedules, seats, bookings)

	// Background workers.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweeper.New(bookings, cfg.SweepInterval).Run(ctx)
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("queue: consumer stopped: %v", err)
		}
	}()

	// HTTP server.
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewAvailabilityHandler(calc), handler.NewSearchHandler(idx))
	router.RegisterBooking(e, handler.NewBookingHandler(svc), cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(stops, schedules, seats, idx), cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Print("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
