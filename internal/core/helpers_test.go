package core

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"multiparty-params/internal/types"
)

const testCatalogYAML = `
catalog_version: v1
components:
  job_parameters:
    fields:
      job_type:
        kind: enum
        enum: [train, predict]
        enum_fold: true
      task_cores:
        kind: integer
        min: 1
        default: 4
      computing_partitions:
        kind: integer
        min: 1
  reader:
    fields:
      table:
        kind: object
        fields:
          name:
            kind: string
          namespace:
            kind: string
  hetero_lr:
    fields:
      penalty:
        kind: enum
        enum: [L1, L2, none]
        enum_fold: true
      tol:
        kind: float
        min: 0
        exclusive_min: true
      batch_size:
        kind: integer
        min: 1
        sentinels: [-1]
        default: -1
      learning_rate:
        kind: float
        min: 0
        exclusive_min: true
      max_iter:
        kind: integer
        min: 1
        default: 100
      metrics:
        kind: array
        items:
          kind: string
      init_param:
        kind: object
        fields:
          init_method:
            kind: enum
            enum: [zeros, ones]
          fit_intercept:
            kind: boolean
            default: true
      label_name:
        kind: string
  secure_information_retrieval:
    requires: ">=1.7"
    fields:
      security_level:
        kind: float
        min: 0
        max: 1
      key_size:
        kind: integer
        min: 1024
        deprecated_since: "1.7"
        replaced_by: dh_params.key_length
      target_cols:
        nullable: true
        any_of:
          - kind: string
          - kind: array
            items:
              kind: string
`

func testCatalog(t *testing.T) SchemaCatalog {
	t.Helper()
	var file types.CatalogFile
	require.NoError(t, yaml.Unmarshal([]byte(testCatalogYAML), &file))
	return NewSchemaCatalog(file.Components)
}

func mustValue(t *testing.T, text string) types.Value {
	t.Helper()
	var value types.Value
	require.NoError(t, yaml.Unmarshal([]byte(text), &value))
	return value
}

func mustJob(t *testing.T, text string) types.JobDeclaration {
	t.Helper()
	var job types.JobDeclaration
	require.NoError(t, yaml.Unmarshal([]byte(text), &job))
	return job
}

func diagCodes(diags []types.Diagnostic) []types.DiagnosticCode {
	out := make([]types.DiagnosticCode, len(diags))
	for i, diag := range diags {
		out[i] = diag.Code
	}
	return out
}

func diagFields(diags []types.Diagnostic) []string {
	out := make([]string, len(diags))
	for i, diag := range diags {
		out[i] = diag.Field
	}
	return out
}

func errorsOnly(diags []types.Diagnostic) []types.Diagnostic {
	var out []types.Diagnostic
	for _, diag := range diags {
		if diag.IsError() {
			out = append(out, diag)
		}
	}
	return out
}
