package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/pulsecare-portal/internal/domain/auth"
	apperrors "github.com/target/pulsecare-portal/internal/errors"
)

type recordedMetric struct {
	kind string
	name string
	tags map[string]string
}

type recordingSink struct {
	mu      sync.Mutex
	metrics []recordedMetric
}

func (r *recordingSink) add(kind, name string, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = append(r.metrics, recordedMetric{kind: kind, name: name, tags: tags})
}

func (r *recordingSink) Count(name string, _ int64, tags map[string]string) { r.add("count", name, tags) }
func (r *recordingSink) Gauge(name string, _ float64, tags map[string]string) {
	r.add("gauge", name, tags)
}

func (r *recordingSink) Timing(name string, _ time.Duration, tags map[string]string) {
	r.add("timing", name, tags)
}

func TestSessionObserver(t *testing.T) {
	sink := &recordingSink{}
	observe := SessionObserver(sink)

	uninit := domainauth.Snapshot{}
	restoring := domainauth.Snapshot{Status: domainauth.StatusRestoring}
	authed := domainauth.Snapshot{
		Status:   domainauth.StatusAuthenticated,
		Identity: &domainauth.Identity{Name: "Dr. Lee", Role: domainauth.RoleDoctor},
	}

	observe(uninit, restoring)
	observe(restoring, authed)

	require.Len(t, sink.metrics, 3)
	assert.Equal(t, recordedMetric{"count", "session.transition", map[string]string{
		"from": "uninitialized", "to": "restoring",
	}}, sink.metrics[0])
	assert.Equal(t, recordedMetric{"count", "session.transition", map[string]string{
		"from": "restoring", "to": "authenticated", "role": "doctor",
	}}, sink.metrics[1])
	assert.Equal(t, "timing", sink.metrics[2].kind)
	assert.Equal(t, "session.restore", sink.metrics[2].name)
}

func TestRecordAuthAttempt(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"success", nil, ResultSuccess},
		{"validation", apperrors.Validation("bad"), ResultInvalid},
		{"rejected", apperrors.Rejected(401, "Invalid credentials"), ResultRejected},
		{"transport", apperrors.Transport(errors.New("down")), ResultError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			AuthAttemptRecorder(sink)("login", domainauth.RoleStaff, tt.err)

			require.Len(t, sink.metrics, 1)
			assert.Equal(t, "session.auth_attempt", sink.metrics[0].name)
			assert.Equal(t, map[string]string{
				"action": "login", "role": "staff", "result": tt.want,
			}, sink.metrics[0].tags)
		})
	}

	assert.NotPanics(t, func() { RecordAuthAttempt(nil, "login", domainauth.RoleAdmin, nil) })
}
