package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"multiparty-params/internal/types"
)

func TestMetricsObserveAndFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resolve.prom")
	metrics := NewMetrics(path)

	metrics.ObserveResolution(types.ResolutionResult{
		Valid:   false,
		Parties: []types.ResolvedParty{{Role: "guest", PartyID: 1}},
		Diagnostics: []types.Diagnostic{
			{Stage: types.StageValidation, Code: types.CodeFieldValidationError, Severity: types.SeverityError},
			{Stage: types.StageValidation, Code: types.CodeFieldValidationError, Severity: types.SeverityError},
		},
	}, 5*time.Millisecond)

	families, err := metrics.Gatherer().Gather()
	require.NoError(t, err)
	names := map[string]float64{}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			if counter := metric.GetCounter(); counter != nil {
				names[family.GetName()] += counter.GetValue()
			}
		}
	}
	require.Equal(t, 1.0, names["multiparty_params_resolutions_total"])
	require.Equal(t, 2.0, names["multiparty_params_diagnostics_total"])

	require.NoError(t, metrics.Flush())
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(content), `multiparty_params_resolutions_total{outcome="invalid"} 1`)
}

func TestMetricsFlushWithoutTextfile(t *testing.T) {
	require.NoError(t, NewMetrics("").Flush())
}

func TestSpansWithoutProvider(t *testing.T) {
	ctx, span := StartResolveSpan(context.Background(), "id", 2)
	require.NotNil(t, ctx)
	EndSpan(span, true, 0, nil)
	require.False(t, span.IsRecording())
}
