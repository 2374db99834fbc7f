package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"rdt_go/pkg/reddit"
)

func TestObserve(t *testing.T) {
	before := testutil.ToFloat64(Operations.WithLabelValues("vote", reddit.KindNone.String()))
	Observe("vote", nil)
	assert.Equal(t, before+1, testutil.ToFloat64(Operations.WithLabelValues("vote", reddit.KindNone.String())))

	before = testutil.ToFloat64(Operations.WithLabelValues("vote", reddit.KindNoSession.String()))
	Observe("vote", reddit.ErrNoSession)
	assert.Equal(t, before+1, testutil.ToFloat64(Operations.WithLabelValues("vote", reddit.KindNoSession.String())))
}
