// Package models defines step identifiers for the call-flow graph.
package models

// StepType names one node of the call-flow graph. The step name travels in
// the webhook action URL so the next request knows which handler to run.
type StepType string

const (
	// Entry and menu steps
	StepWelcome    StepType = "welcome"
	StepMainMenu   StepType = "main-menu"
	StepMenuSelect StepType = "menu-select"

	// Existing-appointment management
	StepManageAppointment StepType = "manage-appointment"
	StepManageSelect      StepType = "manage-select"

	// Booking sub-flow
	StepAskName         StepType = "ask-name"
	StepCollectName     StepType = "collect-name"
	StepConfirmName     StepType = "confirm-name"
	StepAskBusinessType StepType = "ask-business-type"
	StepCollectBusiness StepType = "collect-business-type"
	StepConfirmBusiness StepType = "confirm-business-type"
	StepAskServiceType  StepType = "ask-service-type"
	StepCollectService  StepType = "collect-service-type"
	StepConfirmService  StepType = "confirm-service-type"
	StepOfferDate       StepType = "offer-date"
	StepCollectDate     StepType = "collect-date"
	StepAskTime         StepType = "ask-time"
	StepCollectTime     StepType = "collect-time"
	StepSaveAppointment StepType = "save-appointment"

	// Representative sub-flow
	StepAskReason     StepType = "ask-reason"
	StepCollectReason StepType = "collect-reason"
	StepConfirmReason StepType = "confirm-reason"
	StepRepAnswer     StepType = "representative-answer"
	StepRepQuestion   StepType = "representative-question"

	// Creative director sub-flow
	StepDirectorIntro    StepType = "director-intro"
	StepDirectorQuestion StepType = "director-question"

	// After-hours sub-flow
	StepClosedMenu    StepType = "closed-menu"
	StepClosedSelect  StepType = "closed-select"
	StepVoicemailDone StepType = "voicemail-done"

	// Partnership sub-flow
	StepAskPartnership     StepType = "ask-partnership"
	StepCollectPartnership StepType = "collect-partnership"
)
