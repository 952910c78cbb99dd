package listing

import (
	"context"
	"errors"
	"strings"

	"github.com/dinehub/admin-console/internal/apiclient"
)

// Mutation is one single-entity change, e.g. approving a restaurant.
type Mutation struct {
	// Action labels the change for logs and metrics ("approve", "status").
	Action string

	// Precondition runs before any request. A failure is shown as a warning
	// and nothing is sent.
	Precondition func() error

	// Send performs the request and returns the server's message.
	Send func(ctx context.Context) (string, error)

	SuccessMessage string
	ErrorMessage   string
}

// Dispatch runs m. On success the admin gets a success toast and the list is
// refetched exactly once with the query current at that moment. On failure
// the list is left as it was. The returned notification is the one shown.
func (c *Controller[T, F]) Dispatch(ctx context.Context, m Mutation) (Notification, error) {
	if m.Precondition != nil {
		if err := m.Precondition(); err != nil {
			n := Notification{Level: LevelWarning, Message: validationMessage(err), Screen: c.name}
			c.notifier.Notify(n)
			c.recorder.MutationDone(c.name, m.Action, "invalid")
			return n, err
		}
	}
	if m.Send == nil {
		return Notification{}, errors.New("listing: mutation has no Send")
	}

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return Notification{}, ErrClosed
	}

	c.setUpdateLoading(true)
	msg, err := m.Send(ctx)
	c.setUpdateLoading(false)

	if err != nil {
		n := Notification{Level: LevelError, Message: apiclient.Message(err, m.ErrorMessage), Screen: c.name}
		c.notifier.Notify(n)
		c.recorder.MutationDone(c.name, m.Action, "error")
		c.log.WithError(err).WithField("action", m.Action).Warn("mutation failed")
		return n, err
	}

	if strings.TrimSpace(msg) == "" {
		msg = m.SuccessMessage
	}
	n := Notification{Level: LevelSuccess, Message: msg, Screen: c.name}
	c.notifier.Notify(n)
	c.recorder.MutationDone(c.name, m.Action, "ok")

	// The refetch outcome lands in the result; the mutation itself succeeded.
	if _, ferr := c.Refetch(ctx); ferr != nil && !errors.Is(ferr, ErrSuperseded) {
		c.log.WithError(ferr).WithField("action", m.Action).Debug("refetch after mutation failed")
	}
	return n, nil
}

func validationMessage(err error) string {
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Message
	}
	return err.Error()
}
