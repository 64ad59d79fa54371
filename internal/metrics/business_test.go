package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessMetrics_Exported(t *testing.T) {
	provider := newTestProvider(t, "biz_test")

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "biz_test")
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordOperation(ctx, "crypto", "encrypt", StatusSuccess)
	bm.RecordOperation(ctx, "crypto", "encrypt", StatusSuccess)
	bm.RecordOperation(ctx, "crypto", "decrypt", StatusError)
	bm.RecordOperation(ctx, "records", "record_create", StatusSuccess)

	bm.RecordDuration(ctx, "crypto", "encrypt", 120*time.Millisecond, StatusSuccess)
	bm.RecordDuration(ctx, "crypto", "encrypt", 180*time.Millisecond, StatusSuccess)

	output := scrape(t, provider)

	assertMetricLine(t, output, `biz_test_operations_total`,
		`domain="crypto".*operation="encrypt".*status="success"`, `2`)
	assertMetricLine(t, output, `biz_test_operations_total`,
		`domain="crypto".*operation="decrypt".*status="error"`, `1`)
	assertMetricLine(t, output, `biz_test_operations_total`,
		`domain="records".*operation="record_create".*status="success"`, `1`)
	assertMetricLine(t, output, `biz_test_operation_duration_seconds_count`,
		`domain="crypto".*operation="encrypt".*status="success"`, `2`)
}

func TestNoOpBusinessMetrics(t *testing.T) {
	noOp := NewNoOpBusinessMetrics()
	assert.IsType(t, &NoOpBusinessMetrics{}, noOp)

	assert.NotPanics(t, func() {
		noOp.RecordOperation(context.Background(), "crypto", "encrypt", StatusSuccess)
		noOp.RecordDuration(context.Background(), "crypto", "encrypt", time.Second, StatusError)
	})
}
