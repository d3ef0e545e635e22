package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg))
}

func TestAccessDecisionsCounter(t *testing.T) {
	before := testutil.ToFloat64(AccessDecisions.WithLabelValues("denied", "outstanding debt"))
	AccessDecisions.WithLabelValues("denied", "outstanding debt").Inc()
	after := testutil.ToFloat64(AccessDecisions.WithLabelValues("denied", "outstanding debt"))
	assert.Equal(t, before+1, after)
}
