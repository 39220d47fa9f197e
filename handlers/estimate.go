package handlers

import (
	"errors"
	"net/http"
	"strings"

	"movebot/models"
	"movebot/services/pricing"
	"movebot/utils"

	"github.com/gin-gonic/gin"
)

// GenerateEstimateHandler computes a crew/rate recommendation for a move.
func GenerateEstimateHandler(bundle *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.EstimateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}
		req.PickupAddress = strings.TrimSpace(req.PickupAddress)
		req.DropAddress = strings.TrimSpace(req.DropAddress)
		if req.PickupAddress == "" || req.DropAddress == "" {
			utils.JSONError(c, http.StatusBadRequest, "Both addresses are required", "pickup_address and drop_address must be provided")
			return
		}
		if req.Rooms < 0 || req.Rooms > 20 {
			utils.JSONError(c, http.StatusBadRequest, "Invalid room count", "rooms must be between 0 and 20")
			return
		}

		est, err := bundle.Pricing.Estimate(c.Request.Context(),
			req.Rooms, req.PickupAddress, req.DropAddress, req.StairsElevator, req.MoveDate)
		if err != nil {
			if errors.Is(err, pricing.ErrUnroutable) {
				utils.JSONError(c, http.StatusBadRequest, "Could not route the move", "One or both addresses could not be resolved to a driving route")
				return
			}
			utils.JSONError(c, http.StatusInternalServerError, "Estimate failed", err.Error())
			return
		}
		c.JSON(http.StatusOK, est.Slim())
	}
}

// CalculateDistanceHandler returns the one-way driving distance between
// two addresses.
func CalculateDistanceHandler(bundle *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Origin      string `json:"origin"`
			Destination string `json:"destination"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}
		if strings.TrimSpace(req.Origin) == "" || strings.TrimSpace(req.Destination) == "" {
			utils.JSONError(c, http.StatusBadRequest, "Both addresses are required", "origin and destination must be provided")
			return
		}

		miles, err := bundle.Pricing.Distance.OneWayMiles(c.Request.Context(), req.Origin, req.Destination)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Could not calculate distance", err.Error())
			return
		}
		category := models.MoveLocal
		if miles >= pricing.LongDistanceThresholdMiles {
			category = models.MoveLongDistance
		}
		c.JSON(http.StatusOK, gin.H{
			"miles":         miles,
			"move_category": category,
		})
	}
}
