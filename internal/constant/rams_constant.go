package constant

import "time"

const (
	// QuestionCount is how many questions one session collects answers for.
	QuestionCount = 20

	SessionTTL           = 1 * time.Hour
	SessionSweepInterval = 10 * time.Minute
	SessionCookieName    = "rams_session"

	// Template markers
	HazardSentinel     = "Insert hazards here"
	HazardMarkerColumn = 1
	HazardMaxFields    = 6
	SequenceMarker     = "[Enter Sequence of Activities Here]"
	MethodMarker       = "[Enter Method Statement Here]"

	DocumentFilename = "completed_rams.docx"

	// SystemPromptCutMarker ends the usable part of the system prompt file;
	// everything after it is plugin-submission instructions.
	SystemPromptCutMarker = "RAMS Section Submission Logic"
)

// Lifecycle event types
const (
	EventSessionStarted    = "rams.session_started"
	EventSessionCompleted  = "rams.session_completed"
	EventDocumentGenerated = "rams.document_generated"
	EventSessionsExpired   = "rams.sessions_expired"

	LifecycleTopic = "rams.lifecycle"
)
