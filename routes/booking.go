package routes

import (
	"context"
	"log"
	"net/http"
	"time"

	"onlyifyouknow-server/models"
	"onlyifyouknow-server/services"
	"onlyifyouknow-server/storage"
	"onlyifyouknow-server/utils"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
)

type BookingQuoteInput struct {
	PropertyID uint      `json:"propertyID" validate:"required"`
	CheckIn    time.Time `json:"checkIn" validate:"required"`
	CheckOut   time.Time `json:"checkOut" validate:"required"`
	NumGuests  int       `json:"numGuests" validate:"required,gte=1,lte=32"`
}

// QuoteBooking prices a stay, applying the caller's trust discount.
func QuoteBooking(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	userToken := tok.(*utils.AccessToken)

	var input BookingQuoteInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var prop models.Property
	if err := storage.DB.First(&prop, input.PropertyID).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "property not found")
		return
	}
	if prop.Status != models.PropertyStatusActive {
		utils.JSONError(ctx, http.StatusConflict, "invalid_state", "property is not bookable")
		return
	}

	quote, err := bookingService().Quote(&prop, userToken.ID, input.CheckIn, input.CheckOut)
	if err != nil {
		utils.ServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"success": true, "quote": quote})
}

// CreateBooking books a stay on an active property. Instant booking: the
// record is confirmed immediately; the provider calendar update is
// best-effort and never blocks the guest.
func CreateBooking(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	userToken := tok.(*utils.AccessToken)

	var input BookingQuoteInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var prop models.Property
	if err := storage.DB.First(&prop, input.PropertyID).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "property not found")
		return
	}
	if prop.Status != models.PropertyStatusActive {
		utils.JSONError(ctx, http.StatusConflict, "invalid_state", "property is not bookable")
		return
	}
	if prop.OwnerID == userToken.ID {
		utils.JSONError(ctx, http.StatusUnprocessableEntity, "invalid_payload", "cannot book your own property")
		return
	}
	if input.NumGuests > prop.Capacity {
		utils.JSONError(ctx, http.StatusUnprocessableEntity, "invalid_payload", "party exceeds property capacity")
		return
	}

	svc := bookingService()
	if err := svc.EnsureAvailable(prop.ID, input.CheckIn, input.CheckOut); err != nil {
		utils.ServiceError(ctx, err)
		return
	}

	quote, err := svc.Quote(&prop, userToken.ID, input.CheckIn, input.CheckOut)
	if err != nil {
		utils.ServiceError(ctx, err)
		return
	}

	booking := models.Booking{
		PropertyID:      prop.ID,
		GuestID:         userToken.ID,
		Reference:       uuid.NewString(),
		CheckIn:         input.CheckIn,
		CheckOut:        input.CheckOut,
		NumGuests:       input.NumGuests,
		NightlyPrice:    quote.NightlyPrice,
		Nights:          quote.Nights,
		DiscountPercent: quote.DiscountPercent,
		TotalPrice:      quote.TotalPrice,
		Currency:        quote.Currency,
		Status:          models.BookingStatusConfirmed,
	}
	if err := storage.DB.Create(&booking).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	utils.Audit(ctx, "booking.create", "booking", booking.ID, nil, booking)

	// Block the dates on the provider calendar
	if prop.Beds24PropertyID != nil {
		listingID := *prop.Beds24PropertyID
		checkIn, checkOut := input.CheckIn, input.CheckOut
		price := prop.NightlyPrice
		go func() {
			client := services.NewBeds24Client()
			if err := client.SetCalendar(context.Background(), listingID, checkIn, checkOut, price, false); err != nil {
				log.Printf("calendar update failed for booking %d: %v", booking.ID, err)
			}
		}()
	}

	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "booking": booking})
}

// GetMyBookings returns the caller's stays as a guest.
func GetMyBookings(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	userToken := tok.(*utils.AccessToken)

	var bookings []models.Booking
	storage.DB.Where("guest_id = ?", userToken.ID).Preload("Property").Order("check_in DESC").Find(&bookings)
	ctx.JSON(iris.Map{"success": true, "bookings": bookings})
}

// GetOwnerBookings returns bookings on the caller's properties.
func GetOwnerBookings(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	userToken := tok.(*utils.AccessToken)

	var bookings []models.Booking
	storage.DB.
		Joins("JOIN properties ON properties.id = bookings.property_id").
		Where("properties.owner_id = ?", userToken.ID).
		Preload("Property").Preload("Guest").
		Order("check_in DESC").
		Find(&bookings)
	ctx.JSON(iris.Map{"success": true, "bookings": bookings})
}

// CancelBooking lets the guest cancel a confirmed stay and reopens the
// provider calendar.
func CancelBooking(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	userToken := tok.(*utils.AccessToken)

	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var booking models.Booking
	if err := storage.DB.Preload("Property").First(&booking, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "booking not found")
		return
	}
	if booking.GuestID != userToken.ID {
		utils.JSONError(ctx, http.StatusForbidden, "forbidden", "not your booking")
		return
	}
	if booking.Status != models.BookingStatusConfirmed {
		utils.JSONError(ctx, http.StatusConflict, "invalid_state", "booking is not confirmed")
		return
	}

	before := booking
	booking.Status = models.BookingStatusCancelled
	if err := storage.DB.Save(&booking).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	utils.Audit(ctx, "booking.cancel", "booking", booking.ID, before, booking)

	if booking.Property.Beds24PropertyID != nil {
		listingID := *booking.Property.Beds24PropertyID
		checkIn, checkOut := booking.CheckIn, booking.CheckOut
		price := booking.Property.NightlyPrice
		go func() {
			client := services.NewBeds24Client()
			if err := client.SetCalendar(context.Background(), listingID, checkIn, checkOut, price, true); err != nil {
				log.Printf("calendar reopen failed for booking %d: %v", booking.ID, err)
			}
		}()
	}

	ctx.JSON(iris.Map{"success": true, "booking": booking})
}
