package routes

import (
	"onlyifyouknow-server/services"
	"onlyifyouknow-server/storage"
)

// Service constructors over the live database. Cheap to build per request,
// matching how handlers already instantiate services inline.

func lifecycleService() *services.LifecycleService {
	return services.NewLifecycleService(
		storage.NewGormPropertyStore(storage.DB),
		storage.NewGormUserStore(storage.DB),
		storage.NewGormAuditStore(storage.DB),
		services.NewBeds24Client(),
	)
}

func invitationService() *services.InvitationService {
	return services.NewInvitationService(
		storage.NewGormInvitationStore(storage.DB),
		storage.NewGormAuditStore(storage.DB),
	)
}

func registrationService() *services.RegistrationService {
	return services.NewRegistrationService(
		storage.NewGormUserStore(storage.DB),
		invitationService(),
	)
}

func bookingService() *services.BookingService {
	return services.NewBookingService(
		storage.NewGormBookingStore(storage.DB),
		storage.NewGormTrustStore(storage.DB),
	)
}
