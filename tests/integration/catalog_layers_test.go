package integration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multiparty-params/internal/app"
	"multiparty-params/internal/policies"
	"multiparty-params/internal/types"
	"multiparty-params/tests/testutil"
)

// TestCatalogLayerReplacesBuiltinEntry resolves the hetero-lr fixture with
// a site catalog layered over the builtin one. The site entry for
// hetero_lr has no init_param, so every party reports it as unknown.
func TestCatalogLayerReplacesBuiltinEntry(t *testing.T) {
	service := app.NewService()
	result, err := service.Validate(t.Context(), app.ValidateRequest{
		JobPath: testutil.Fixture(t, "job-hetero-lr.yaml"),
		Catalog: app.CatalogOptions{Paths: []string{testutil.Fixture(t, "catalog-extra.yaml")}},
		Policy:  policies.DefaultResolutionPolicy(),
	})
	require.NoError(t, err)
	require.True(t, result.Resolution.Valid)

	unknown := 0
	for _, diag := range result.Resolution.Warnings() {
		if diag.Code == types.CodeUnknownField {
			assert.Equal(t, "init_param", diag.Field)
			assert.Equal(t, "hetero_lr_0", diag.Component)
			unknown++
		}
	}
	assert.Equal(t, 4, unknown)
}

func TestCatalogLayerStrictUnknownFields(t *testing.T) {
	policy := policies.DefaultResolutionPolicy()
	policy.UnknownField = types.SeverityError

	result, err := app.NewService().Validate(t.Context(), app.ValidateRequest{
		JobPath: testutil.Fixture(t, "job-hetero-lr.yaml"),
		Catalog: app.CatalogOptions{Paths: []string{testutil.Fixture(t, "catalog-extra.yaml")}},
		Policy:  policy,
	})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	assert.False(t, result.Resolution.Valid)
	assert.Len(t, result.Resolution.Errors(), 4)
}

func TestPlatformVersionGatesComponents(t *testing.T) {
	jobPath := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(jobPath, []byte(`
dsl_version: 2
initiator: {role: guest, party_id: 10000}
role:
  guest: [10000]
  host: [9999]
components:
  psi_0: {module: PSI}
component_parameters:
  common:
    psi_0: {max_bin_num: 20}
`), 0o644))

	tests := []struct {
		name     string
		platform string
		valid    bool
	}{
		{name: "too old", platform: "1.9", valid: false},
		{name: "supported", platform: "2.0.1", valid: true},
		{name: "unspecified", platform: "", valid: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := policies.DefaultResolutionPolicy()
			policy.PlatformVersion = tt.platform
			result, err := app.NewService().Validate(t.Context(), app.ValidateRequest{
				JobPath: jobPath,
				Catalog: app.CatalogOptions{Paths: []string{testutil.Fixture(t, "catalog-extra.yaml")}},
				Policy:  policy,
			})
			assert.Equal(t, tt.valid, result.Resolution.Valid)
			if tt.valid {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, diag := range result.Resolution.Errors() {
				assert.Equal(t, types.CodeUnsupportedComponent, diag.Code)
			}
			assert.Len(t, result.Resolution.Errors(), 2)
		})
	}
}

func TestWithoutBuiltinCatalog(t *testing.T) {
	result, err := app.NewService().Validate(t.Context(), app.ValidateRequest{
		JobPath: testutil.Fixture(t, "job-hetero-lr.yaml"),
		Catalog: app.CatalogOptions{
			Paths:     []string{testutil.Fixture(t, "catalog-extra.yaml")},
			NoBuiltin: true,
		},
		Policy: policies.DefaultResolutionPolicy(),
	})
	require.NoError(t, err)

	unknownComponents := map[string]struct{}{}
	for _, diag := range result.Resolution.Warnings() {
		if diag.Code == types.CodeSchemaUnknownComponent {
			unknownComponents[diag.Component] = struct{}{}
		}
	}
	assert.Equal(t, map[string]struct{}{
		"reader_0":         {},
		"data_transform_0": {},
		"intersection_0":   {},
	}, unknownComponents)
}
