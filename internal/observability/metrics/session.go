// Package metrics derives session metrics from state transitions and auth attempts.
package metrics

import (
	"time"

	domainauth "github.com/target/pulsecare-portal/internal/domain/auth"
	apperrors "github.com/target/pulsecare-portal/internal/errors"
	"github.com/target/pulsecare-portal/internal/observability/statsd"
)

// Result tags.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultInvalid  = "invalid"
	ResultError    = "error"
)

// SessionObserver counts transitions and times the startup restore. Its signature matches
// session.Observer.
func SessionObserver(sink statsd.Sink) func(from, to domainauth.Snapshot) {
	if sink == nil {
		sink = statsd.Noop{}
	}
	var restoreStart time.Time
	return func(from, to domainauth.Snapshot) {
		tags := map[string]string{
			"from": from.Status.String(),
			"to":   to.Status.String(),
		}
		if to.Identity != nil {
			tags["role"] = to.Identity.Role.String()
		}
		sink.Count("session.transition", 1, tags)

		// Observers are invoked serially, so restoreStart needs no lock.
		switch {
		case to.Status == domainauth.StatusRestoring:
			restoreStart = time.Now()
		case from.Status == domainauth.StatusRestoring && !restoreStart.IsZero():
			sink.Timing("session.restore", time.Since(restoreStart), map[string]string{"to": to.Status.String()})
			restoreStart = time.Time{}
		}
	}
}

// AuthAttemptRecorder emits session.auth_attempt for each login or signup. Its signature matches
// session.AttemptFunc.
func AuthAttemptRecorder(sink statsd.Sink) func(action string, role domainauth.Role, err error) {
	if sink == nil {
		sink = statsd.Noop{}
	}
	return func(action string, role domainauth.Role, err error) {
		RecordAuthAttempt(sink, action, role, err)
	}
}

// RecordAuthAttempt emits one session.auth_attempt counter.
func RecordAuthAttempt(sink statsd.Sink, action string, role domainauth.Role, err error) {
	if sink == nil {
		return
	}
	sink.Count("session.auth_attempt", 1, map[string]string{
		"action": action,
		"role":   role.String(),
		"result": Classify(err),
	})
}

// Classify maps an attempt outcome to a result tag.
func Classify(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case apperrors.IsValidation(err):
		return ResultInvalid
	case apperrors.IsRejected(err):
		return ResultRejected
	default:
		return ResultError
	}
}
