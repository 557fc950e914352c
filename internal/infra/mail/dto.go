package mail

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string

	// From and To for the lead notification summary; the recipient is the
	// funnel owner's inbox, not the lead.
	From string
	To   string
}
