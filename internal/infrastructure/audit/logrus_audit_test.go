package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larkes/communities-api/domain"
)

type countingRecorder struct {
	calls map[string]int
}

func (c *countingRecorder) RecordAuthEvent(event string, success bool) {
	key := event
	if !success {
		key += ":fail"
	}
	c.calls[key]++
}

func TestLogrusAuditLogger_LogEvent(t *testing.T) {
	logger, hook := test.NewNullLogger()
	counter := &countingRecorder{calls: map[string]int{}}
	audit := NewLogrusAuditLogger(logger, counter)

	audit.LogEvent(context.Background(), domain.NewAuditEvent(domain.UserLoginEvent, "user-1").
		WithEmail("a@x.com").
		WithRole(domain.RoleCompany))
	audit.LogEvent(context.Background(), domain.NewAuditEvent(domain.UserLoginEvent, "").
		WithEmail("a@x.com").
		WithMetadata("reason", "wrong password").
		WithError(errors.New("invalid credentials")))
	audit.LogEvent(context.Background(), nil)

	require.Len(t, hook.AllEntries(), 2)

	ok := hook.AllEntries()[0]
	assert.Equal(t, logrus.InfoLevel, ok.Level)
	assert.Equal(t, "user-1", ok.Data["user_id"])
	assert.Equal(t, domain.RoleCompany, ok.Data["role"])

	failed := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, failed.Level)
	assert.Equal(t, "invalid credentials", failed.Data["error"])
	assert.Equal(t, "wrong password", failed.Data["meta_reason"])
	assert.NotContains(t, failed.Data, "user_id")

	assert.Equal(t, 1, counter.calls["USER_LOGIN"])
	assert.Equal(t, 1, counter.calls["USER_LOGIN:fail"])
}
