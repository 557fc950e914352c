package usecase

// CaptureLeadInput mirrors the body of POST /api/leads.
type CaptureLeadInput struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`

	UTMSource   string `json:"utmSource,omitempty"`
	UTMMedium   string `json:"utmMedium,omitempty"`
	UTMCampaign string `json:"utmCampaign,omitempty"`
	UTMContent  string `json:"utmContent,omitempty"`
	UTMTerm     string `json:"utmTerm,omitempty"`

	// Source is a free-text label for the notification email. When empty it
	// falls back to the UTM source, then to the default funnel label.
	Source string `json:"source,omitempty"`

	QuizAnswers map[int]string `json:"quizAnswers,omitempty"`
}

// CaptureLeadOutput reports the canonical lead id. Duplicate is internal
// routing information for the HTTP status; the response body never exposes
// whether the email was already on file.
type CaptureLeadOutput struct {
	LeadID    string
	Duplicate bool
}

// StepCounts maps step event types to their counts. It marshals its keys in
// numeric step order rather than Go's lexical map order, so quiz_step_2
// presents before quiz_step_10.
type StepCounts map[string]int

// StatsData is the aggregate payload of GET /api/analytics/stats.
type StatsData struct {
	TotalPageViews    int        `json:"totalPageViews"`
	UniqueVisitors    int        `json:"uniqueVisitors"`
	ReturningVisitors int        `json:"returningVisitors"`
	NewVisitors       int        `json:"newVisitors"`
	QuizStarted       int        `json:"quizStarted"`
	QuizCompleted     int        `json:"quizCompleted"`
	QuizDisqualified  int        `json:"quizDisqualified"`
	QuizStepCounts    StepCounts `json:"quizStepCounts"`
	LeadsGenerated    int        `json:"leadsGenerated"`
}
