package notification

// NotificationType identifies the kind of notice being sent
type NotificationType string

const (
	// ImpersonationNotice informs a user that a delegated session was
	// minted on their behalf
	ImpersonationNotice NotificationType = "impersonation_notice"
)

// NotificationData carries the recipient and content of a notice
type NotificationData struct {
	To      string            // Recipient identifier (e.g., email address)
	Subject string            // Optional: subject for notifications like email
	Body    string            // The content or message to send
	Data    map[string]string // Additional metadata for template rendering
}

// Notifier delivers a notice to a recipient. Implementations are injected
// into services at construction time.
type Notifier interface {
	Send(notificationType NotificationType, notification NotificationData) error
}
