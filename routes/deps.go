package routes

import (
	"github.com/peaceghost-hub/EasyAccomodation/config"
	"github.com/peaceghost-hub/EasyAccomodation/services"
	"github.com/peaceghost-hub/EasyAccomodation/storage"
)

// Package-level service singletons, wired once after storage comes up.
var (
	clock        services.Clock
	changes      *services.ChangeTracker
	notifier     *services.NotificationService
	ledger       *services.RoomLedger
	gateway      *services.AccessGateway
	reservations *services.ReservationEngine
	verification *services.VerificationEngine
	inquiries    *services.InquiryService
	housekeeping *services.HousekeepingService
)

// InitializeServices wires the engines to the live DB/Redis handles. Must run
// after storage.InitializeDB and storage.InitializeRedis.
func InitializeServices() {
	clock = services.RealClock{}
	changes = services.NewChangeTracker(storage.Redis)
	notifier = services.NewNotificationService(storage.DB)
	ledger = services.NewRoomLedger(storage.DB)
	gateway = services.NewAccessGateway(storage.DB, clock)
	reservations = services.NewReservationEngine(
		storage.DB, ledger, gateway, clock,
		config.C.HoldDuration(), config.C.MaxConsecutiveBookings, changes)
	verification = services.NewVerificationEngine(
		storage.DB, clock, config.C.VerificationWindow(),
		config.C.MonthlySubscriptionFee, notifier, changes)
	inquiries = services.NewInquiryService(storage.DB, gateway, clock)
	housekeeping = services.NewHousekeepingService(storage.DB, ledger, notifier, clock)
}

// Sweeper builds the periodic expired-hold sweeper from the wired engine.
func Sweeper() *services.Sweeper {
	return services.NewSweeper(reservations, clock, config.C.SweepInterval())
}
