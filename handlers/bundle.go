// Package handlers contains the Gin HTTP handlers. Handlers validate and
// translate; all booking logic lives in the service packages.
package handlers

import (
	"movebot/database/records"
	"movebot/services/availability"
	"movebot/services/dialogue"
	"movebot/services/pricing"
	"movebot/services/speech"
)

// HandlerBundle carries the wired services into the handlers.
type HandlerBundle struct {
	Orchestrator *dialogue.Orchestrator
	Pricing      *pricing.Engine
	Availability *availability.Tracker
	Records      records.Repository
	Transcriber  speech.Transcriber
	Streams      *speech.StreamBuffer

	CompanyPhone  string
	OfficeAddress string
}
