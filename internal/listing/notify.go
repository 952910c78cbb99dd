package listing

import (
	"errors"
	"strings"
	"time"
)

// Level is the kind of toast shown to the admin.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// Notification is a transient toast.
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
	Screen  string `json:"screen,omitempty"`
}

// Notifier surfaces notifications to the admin.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

type discardNotifier struct{}

func (discardNotifier) Notify(Notification) {}

// Recorder observes controller activity. Outcomes are "ok", "error",
// "stale" and "invalid".
type Recorder interface {
	FetchDone(screen, outcome string, d time.Duration)
	MutationDone(screen, action, outcome string)
}

type discardRecorder struct{}

func (discardRecorder) FetchDone(string, string, time.Duration) {}
func (discardRecorder) MutationDone(string, string, string)    {}

// ValidationError is a precondition failure caught before any network call.
// Message is shown to the admin verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// RequireText returns a precondition that fails with message when value is blank.
func RequireText(value, message string) func() error {
	return func() error {
		if strings.TrimSpace(value) == "" {
			return &ValidationError{Message: message}
		}
		return nil
	}
}
