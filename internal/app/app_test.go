package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multiparty-params/internal/policies"
	"multiparty-params/internal/ports"
	"multiparty-params/internal/types"
)

func fixturePath(t *testing.T, name string) string {
	t.Helper()
	root, err := filepath.Abs(filepath.Join("..", ".."))
	require.NoError(t, err)
	return filepath.Join(root, "fixtures", name)
}

func TestValidateApp(t *testing.T) {
	service := NewService()
	result, err := service.Validate(t.Context(), ValidateRequest{
		JobPath: fixturePath(t, "job-hetero-lr.yaml"),
		Policy:  policies.DefaultResolutionPolicy(),
	})
	require.NoError(t, err)
	assert.True(t, result.Resolution.Valid)
	assert.Len(t, result.Resolution.Parties, 4)
	assert.Empty(t, result.Resolution.Errors())

	guest, ok := result.Resolution.Party("guest", 10000)
	require.True(t, ok)
	lr := guest.Components["hetero_lr_0"]
	label, ok := lr.Get("label_name")
	require.True(t, ok)
	assert.True(t, label.Equal(types.NewString("y")))
}

func TestValidateAppTopologyFailure(t *testing.T) {
	service := NewService()
	result, err := service.Validate(t.Context(), ValidateRequest{
		JobPath: fixturePath(t, "job-bad-initiator.yaml"),
		Policy:  policies.DefaultResolutionPolicy(),
	})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
	assert.False(t, result.Resolution.Valid)
	assert.Empty(t, result.Resolution.Parties)

	var fields []string
	for _, diag := range result.Resolution.Errors() {
		fields = append(fields, diag.Field)
	}
	assert.Contains(t, fields, "initiator.party_id")
}

func TestValidateAppParameterFailure(t *testing.T) {
	result, err := NewService().Validate(t.Context(), ValidateRequest{
		JobPath: fixturePath(t, "job-bad-params.json"),
		Policy:  policies.DefaultResolutionPolicy(),
	})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	assert.Len(t, result.Resolution.Parties, 2, "parties stay inspectable")
	assert.NotEmpty(t, result.Resolution.Warnings(), "unknown_knob is reported as a warning")
}

func TestValidateAppRequiresJobPath(t *testing.T) {
	_, err := NewService().Validate(t.Context(), ValidateRequest{Policy: policies.DefaultResolutionPolicy()})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestResolveAndInspect(t *testing.T) {
	outputDir := t.TempDir()
	service := NewService()
	metrics := &fakeMetrics{}
	service.Metrics = func(string) ports.MetricsPort { return metrics }

	result, err := service.Resolve(t.Context(), ResolveRequest{
		JobPath:     fixturePath(t, "job-hetero-lr.yaml"),
		Policy:      policies.DefaultResolutionPolicy(),
		OutputDir:   outputDir,
		MetricsFile: filepath.Join(outputDir, "metrics.prom"),
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outputDir, "bundle.yaml"), result.BundlePath)
	assert.FileExists(t, filepath.Join(outputDir, "guest", "10000.yaml"))
	assert.FileExists(t, filepath.Join(outputDir, "host", "9998.yaml"))
	assert.FileExists(t, filepath.Join(outputDir, "diagnostics.report"))
	assert.Equal(t, 1, metrics.observed)
	assert.Equal(t, 1, metrics.flushed)

	inspect, err := service.Inspect(InspectRequest{OutputDir: outputDir, Role: "host"})
	require.NoError(t, err)
	want := []InspectPartySummary{
		{Role: "host", PartyID: 9998, Components: []string{"data_transform_0", "hetero_lr_0", "intersection_0", "reader_0"}},
		{Role: "host", PartyID: 9999, Components: []string{"data_transform_0", "hetero_lr_0", "intersection_0", "reader_0"}},
	}
	if diff := cmp.Diff(want, inspect.Parties); diff != "" {
		t.Fatalf("unexpected inspect parties (-want +got):\n%s", diff)
	}
	assert.Zero(t, inspect.Errors)
	assert.Equal(t, len(result.Resolution.Warnings()), inspect.Warnings)

	_, err = service.Inspect(InspectRequest{OutputDir: outputDir, Role: "nobody"})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestResolveInvalidWritesOnlyDiagnostics(t *testing.T) {
	outputDir := t.TempDir()
	service := NewService()
	_, err := service.Resolve(t.Context(), ResolveRequest{
		JobPath:   fixturePath(t, "job-bad-params.json"),
		Policy:    policies.DefaultResolutionPolicy(),
		OutputDir: outputDir,
		Format:    types.OutputFormatJSON,
	})
	require.Error(t, err)
	assert.FileExists(t, filepath.Join(outputDir, "diagnostics.report"))
	assert.NoFileExists(t, filepath.Join(outputDir, "bundle.json"))
	assert.NoDirExists(t, filepath.Join(outputDir, "guest"))

	inspect, err := service.Inspect(InspectRequest{OutputDir: outputDir})
	require.NoError(t, err)
	assert.Empty(t, inspect.BundlePath)
	assert.Positive(t, inspect.Errors)
}

func TestResolveRejectsUnknownFormat(t *testing.T) {
	_, err := NewService().Resolve(t.Context(), ResolveRequest{
		JobPath:   fixturePath(t, "job-hetero-lr.yaml"),
		Policy:    policies.DefaultResolutionPolicy(),
		OutputDir: t.TempDir(),
		Format:    "toml",
	})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestCatalogApp(t *testing.T) {
	service := NewService()
	listing, err := service.Catalog(CatalogRequest{})
	require.NoError(t, err)
	assert.Contains(t, listing.Components, "hetero_lr")
	assert.Nil(t, listing.Descriptor)

	described, err := service.Catalog(CatalogRequest{
		Catalog:   CatalogOptions{Paths: []string{fixturePath(t, "catalog-extra.yaml")}},
		Component: "psi",
	})
	require.NoError(t, err)
	require.NotNil(t, described.Descriptor)
	assert.Equal(t, ">=2.0", described.Descriptor.Requires)

	_, err = service.Catalog(CatalogRequest{Catalog: CatalogOptions{NoBuiltin: true}, Component: "reader"})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestWatchRevalidatesOnChange(t *testing.T) {
	dir := t.TempDir()
	jobPath := filepath.Join(dir, "job.yaml")
	data, err := os.ReadFile(fixturePath(t, "job-hetero-lr.yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(jobPath, data, 0644))

	service := NewService()
	watcher := &fakeWatcher{
		beforeChange: func() {
			require.NoError(t, os.WriteFile(jobPath, []byte("dsl_version: 1\ninitiator: {role: guest, party_id: 1}\nrole: {guest: [1]}\n"), 0644))
		},
	}
	service.Watcher = watcher

	var outcomes []bool
	err = service.Watch(t.Context(), WatchRequest{
		Validate: ValidateRequest{
			JobPath: jobPath,
			Catalog: CatalogOptions{Paths: []string{fixturePath(t, "catalog-extra.yaml")}},
			Policy:  policies.DefaultResolutionPolicy(),
		},
		OnResult: func(result ValidateResult, err error) {
			outcomes = append(outcomes, err == nil && result.Resolution.Valid)
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, outcomes)
	assert.Equal(t, []string{jobPath, fixturePath(t, "catalog-extra.yaml")}, watcher.paths)
}

type fakeMetrics struct {
	observed int
	flushed  int
}

func (m *fakeMetrics) ObserveResolution(types.ResolutionResult, time.Duration) { m.observed++ }

func (m *fakeMetrics) Flush() error {
	m.flushed++
	return nil
}

// fakeWatcher reports one change and returns.
type fakeWatcher struct {
	paths        []string
	beforeChange func()
}

func (w *fakeWatcher) Watch(_ context.Context, paths []string, onChange func(string)) error {
	w.paths = paths
	w.beforeChange()
	onChange(paths[0])
	return nil
}
