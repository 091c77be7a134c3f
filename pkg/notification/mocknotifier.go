package notification

import "sync"

// MockNotifier records sent notices for tests
type MockNotifier struct {
	mu   sync.Mutex
	Sent []SentNotification
	Err  error // returned from Send when set
}

// SentNotification is one recorded Send call
type SentNotification struct {
	Type NotificationType
	Data NotificationData
}

// NewMockNotifier creates a new recording notifier
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// Send records the notice
func (m *MockNotifier) Send(notificationType NotificationType, notification NotificationData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentNotification{Type: notificationType, Data: notification})
	return nil
}

// Count returns the number of recorded notices
func (m *MockNotifier) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}
