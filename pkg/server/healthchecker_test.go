package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompositeHealthChecker(t *testing.T) {
	up := HealthFunc(func(context.Context) bool { return true })
	down := HealthFunc(func(context.Context) bool { return false })

	hc := NewCompositeHealthChecker().Add("postgres", up).Add("app", NewOkHealthChecker())
	assert.True(t, hc.Healthy(context.Background()))
	assert.Equal(t, []string{"app", "postgres"}, hc.Names())

	hc.Add("redis", down)
	assert.False(t, hc.Healthy(context.Background()))
	assert.Equal(t, map[string]bool{"app": true, "postgres": true, "redis": false}, hc.Report(context.Background()))
}

func TestCompositeHealthChecker_Empty(t *testing.T) {
	assert.True(t, NewCompositeHealthChecker().Healthy(context.Background()))
}
