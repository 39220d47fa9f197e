package handlers

import (
	"net/http"
	"strings"

	"movebot/models"
	"movebot/services/dialogue"
	"movebot/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SubmitBookingHandler persists a booking directly, bypassing the chat
// flow. Used by the booking form on the website.
func SubmitBookingHandler(bundle *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		var rec models.BookingRecord
		if err := c.ShouldBindJSON(&rec); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}
		if missing := rec.MissingForSubmit(); len(missing) > 0 {
			utils.JSONError(c, http.StatusBadRequest, "Missing required fields", strings.Join(missing, ", "))
			return
		}

		ctx := c.Request.Context()
		booked := bundle.Availability.CountOnDate(ctx, rec.MoveDate)
		if booked >= bundle.Availability.DailyCapacity {
			c.JSON(http.StatusConflict, gin.H{
				"status":          "date_full",
				"message":         "That date is fully booked.",
				"suggested_dates": bundle.Availability.SuggestAlternates(ctx, rec.MoveDate, 3),
			})
			return
		}

		dialogue.EnrichRecord(ctx, bundle.Pricing, &rec)

		bookingID, err := bundle.Records.SaveBooking(ctx, rec)
		if err != nil {
			utils.JSONError(c, http.StatusInternalServerError, "Could not save booking", err.Error())
			return
		}

		if err := bundle.Orchestrator.Notifier.BookingAlert(ctx, rec, bookingID); err != nil {
			utils.GetLogger().Warn("booking alert failed", zap.String("booking", bookingID), zap.Error(err))
		}
		if bundle.Orchestrator.SendCustomerEmail {
			if err := bundle.Orchestrator.Notifier.CustomerConfirmation(ctx, rec, bookingID); err != nil {
				utils.GetLogger().Warn("customer confirmation failed", zap.String("booking", bookingID), zap.Error(err))
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "confirmed",
			"booking_id": bookingID,
			"crew_size":  rec.CrewSize,
			"rate":       rec.EstimatedCost,
		})
	}
}

// RequestCallHandler records a direct call-back request and alerts the
// manager.
func RequestCallHandler(bundle *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CallRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}
		if strings.TrimSpace(req.Phone) == "" {
			utils.JSONError(c, http.StatusBadRequest, "Phone number is required", "")
			return
		}
		if req.Timing == "" {
			req.Timing = "as soon as possible"
		}

		if err := bundle.Orchestrator.Notifier.CallRequestAlert(c.Request.Context(), req); err != nil {
			utils.JSONError(c, http.StatusInternalServerError, "Could not send call request", err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "requested",
			"message": "Got it! Someone from our team will call you " + req.Timing + ".",
		})
	}
}
