package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"storefront/internal/common/logger"
)

func TestRecordRun_NilSafe(t *testing.T) {
	var o *Observability
	assert.NotPanics(t, func() {
		o.RecordRun(context.Background(), "success", time.Second, 10)
		o.Shutdown()
	})

	empty := &Observability{}
	assert.NotPanics(t, func() {
		empty.RecordRun(context.Background(), "failed", time.Second, 0)
		empty.Shutdown()
	})
}

func TestNew_RecordsRuns(t *testing.T) {
	o := New("storefront-test", logger.NewTestLogger(t))
	defer o.Shutdown()

	assert.NotNil(t, o.meterProvider)
	assert.NotPanics(t, func() {
		o.RecordRun(context.Background(), "success", 1500*time.Millisecond, 42)
		o.RecordRun(context.Background(), "cancelled", 10*time.Millisecond, 0)
	})
}
