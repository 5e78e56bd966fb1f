package core

import (
	"context"
	"strings"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"multiparty-params/internal/policies"
	"multiparty-params/internal/types"
)

const resolverJobYAML = `
dsl_version: 2
initiator: {role: guest, party_id: 10000}
role:
  guest: [10000]
  host: [9999, 9998]
components:
  reader_0: {module: Reader}
  hetero_lr_0: {module: HeteroLR}
job_parameters:
  common: {job_type: train, task_cores: 4}
  role:
    guest:
      "0": {computing_partitions: 8}
component_parameters:
  common:
    hetero_lr_0: {penalty: l2, batch_size: -1, max_iter: 30}
  role:
    guest:
      "0":
        reader_0: {table: {name: g, namespace: exp}}
        hetero_lr_0: {label_name: y}
    host:
      all:
        reader_0: {table: {name: h, namespace: exp}}
      "1":
        hetero_lr_0: {batch_size: BATCH}
`

func resolverJob(t *testing.T, batch string) types.JobDeclaration {
	t.Helper()
	return mustJob(t, strings.ReplaceAll(resolverJobYAML, "BATCH", batch))
}

func fixedResolver(t *testing.T, policy policies.ResolutionPolicy) ResolverCore {
	t.Helper()
	resolver := NewResolverCore(testCatalog(t), policy)
	resolver.NewID = func() string { return "resolution-1" }
	return resolver
}

func TestResolverProducesEveryParty(t *testing.T) {
	resolver := fixedResolver(t, policies.DefaultResolutionPolicy())
	result, err := resolver.Resolve(context.Background(), resolverJob(t, "320"))
	require.NoError(t, err)
	require.True(t, result.Valid)
	require.Empty(t, result.Diagnostics)
	require.Equal(t, "resolution-1", result.ID)
	require.Equal(t, types.Initiator{Role: "guest", PartyID: 10000}, result.Initiator)

	refs := make([]types.PartyRef, len(result.Parties))
	for i, party := range result.Parties {
		refs[i] = party.Ref()
	}
	require.Equal(t, []types.PartyRef{
		{Role: "guest", PartyID: 10000, Index: 0},
		{Role: "host", PartyID: 9999, Index: 0},
		{Role: "host", PartyID: 9998, Index: 1},
	}, refs)

	guest, ok := result.Party("guest", 10000)
	require.True(t, ok)
	require.Equal(t, map[string]any{
		"job_type":             "train",
		"task_cores":           int64(4),
		"computing_partitions": int64(8),
	}, guest.Job.Interface())
	if diff := cmp.Diff(map[string]any{
		"penalty":    "L2",
		"batch_size": int64(-1),
		"max_iter":   int64(30),
		"label_name": "y",
	}, guest.Components["hetero_lr_0"].Interface()); diff != "" {
		t.Fatalf("guest hetero_lr_0 mismatch (-want +got):\n%s", diff)
	}

	second, ok := result.Party("host", 9998)
	require.True(t, ok)
	batch, _ := second.Components["hetero_lr_0"].Get("batch_size")
	require.Equal(t, int64(320), batch.Interface())
	table, _ := second.Components["reader_0"].Get("table")
	require.Equal(t, map[string]any{"name": "h", "namespace": "exp"}, table.Interface())

	first, ok := result.Party("host", 9999)
	require.True(t, ok)
	batch, _ = first.Components["hetero_lr_0"].Get("batch_size")
	require.Equal(t, int64(-1), batch.Interface())
	require.Equal(t, map[string]any{"job_type": "train", "task_cores": int64(4)}, first.Job.Interface())
}

func TestResolverIsDeterministic(t *testing.T) {
	job := resolverJob(t, "0")

	render := func(workers int) string {
		policy := policies.DefaultResolutionPolicy()
		policy.Workers = workers
		result, err := fixedResolver(t, policy).Resolve(context.Background(), job)
		require.NoError(t, err)
		data, err := yaml.Marshal(result)
		require.NoError(t, err)
		return string(data)
	}

	first := render(1)
	require.Equal(t, first, render(1))
	require.Equal(t, first, render(8))
}

func TestResolverInvalidParameterRejectsWholeResult(t *testing.T) {
	resolver := fixedResolver(t, policies.DefaultResolutionPolicy())
	result, err := resolver.Resolve(context.Background(), resolverJob(t, "0"))
	require.NoError(t, err)
	require.False(t, result.Valid)
	require.Len(t, result.Parties, 3)

	errs := result.Errors()
	require.Len(t, errs, 1)
	require.Equal(t, "host", errs[0].Role)
	require.NotNil(t, errs[0].PartyID)
	require.Equal(t, types.PartyID(9998), *errs[0].PartyID)
	require.Equal(t, "hetero_lr_0", errs[0].Component)
	require.Equal(t, "batch_size", errs[0].Field)
}

func TestResolverTopologyFailureStopsBeforeMerge(t *testing.T) {
	job := mustJob(t, `
dsl_version: 2
initiator: {role: guest, party_id: 9999}
role:
  guest: [10000]
  host: [10000]
component_parameters:
  common:
    hetero_lr_0: {batch_size: 0}
`)
	result, err := fixedResolver(t, policies.DefaultResolutionPolicy()).Resolve(context.Background(), job)
	require.NoError(t, err)
	require.False(t, result.Valid)
	require.Empty(t, result.Parties)

	errs := result.Errors()
	require.Len(t, errs, 1)
	require.Equal(t, types.StageTopology, errs[0].Stage)
	require.Equal(t, "initiator.party_id", errs[0].Field)
	for _, diag := range result.Diagnostics {
		require.NotEqual(t, types.StageValidation, diag.Stage)
	}
}

func TestResolverValidatesJobParameters(t *testing.T) {
	job := mustJob(t, `
dsl_version: 2
initiator: {role: guest, party_id: 10000}
role:
  guest: [10000]
job_parameters:
  common: {task_cores: 0, job_type: TRAIN}
`)
	result, err := fixedResolver(t, policies.DefaultResolutionPolicy()).Resolve(context.Background(), job)
	require.NoError(t, err)
	require.False(t, result.Valid)
	require.Len(t, result.Diagnostics, 1)
	diag := result.Diagnostics[0]
	require.Equal(t, "guest", diag.Role)
	require.Empty(t, diag.Component)
	require.Equal(t, "task_cores", diag.Field)

	party, ok := result.Party("guest", 10000)
	require.True(t, ok)
	jobType, _ := party.Job.Get("job_type")
	require.Equal(t, "train", jobType.Interface())
}

func TestResolverPassesUnknownComponentsThrough(t *testing.T) {
	job := mustJob(t, `
dsl_version: 2
initiator: {role: guest, party_id: 10000}
role:
  guest: [10000]
component_parameters:
  common:
    mystery_0: {knob: 3}
`)
	result, err := fixedResolver(t, policies.DefaultResolutionPolicy()).Resolve(context.Background(), job)
	require.NoError(t, err)
	require.True(t, result.Valid)
	require.Equal(t, []types.DiagnosticCode{types.CodeSchemaUnknownComponent}, diagCodes(result.Warnings()))
	require.Equal(t, map[string]any{"knob": int64(3)}, result.Parties[0].Components["mystery_0"].Interface())

	policy := policies.DefaultResolutionPolicy()
	policy.UnknownComponent = types.UnknownComponentReject
	result, err = fixedResolver(t, policy).Resolve(context.Background(), job)
	require.NoError(t, err)
	require.False(t, result.Valid)
}

func TestResolverSortsDiagnostics(t *testing.T) {
	job := mustJob(t, `
dsl_version: 2
initiator: {role: guest, party_id: 10000}
role:
  guest: [10000]
  host: [9999]
component_parameters:
  common:
    hetero_lr_0: {max_iter: 0, tol: 0}
`)
	result, err := fixedResolver(t, policies.DefaultResolutionPolicy()).Resolve(context.Background(), job)
	require.NoError(t, err)

	var where []string
	for _, diag := range result.Diagnostics {
		where = append(where, diag.Role+"/"+diag.Field)
	}
	require.Equal(t, []string{"guest/max_iter", "guest/tol", "host/max_iter", "host/tol"}, where)
}

func TestResolverErrors(t *testing.T) {
	job := resolverJob(t, "320")

	_, err := NewResolverCore(nil, policies.DefaultResolutionPolicy()).Resolve(context.Background(), job)
	require.Error(t, err)
	require.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))

	_, err = NewResolverCore(testCatalog(t), policies.ResolutionPolicy{}).Resolve(context.Background(), job)
	require.Error(t, err)
	require.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewResolverCore(testCatalog(t), policies.DefaultResolutionPolicy()).Resolve(ctx, job)
	require.Error(t, err)
	require.Equal(t, errbuilder.CodeInternal, errbuilder.CodeOf(err))
}

func TestComponentsForRole(t *testing.T) {
	job := mustJob(t, `
components:
  reader_0: {module: Reader}
component_parameters:
  common:
    intersection_0: {}
  role:
    host:
      "0":
        evaluation_0: {}
    guest:
      "0":
        hetero_lr_0: {}
`)
	require.Equal(t, []string{"evaluation_0", "intersection_0", "reader_0"}, ComponentsForRole(job, "host"))
	require.Equal(t, []string{"hetero_lr_0", "intersection_0", "reader_0"}, ComponentsForRole(job, "guest"))
	require.Equal(t, []string{"intersection_0", "reader_0"}, ComponentsForRole(job, "arbiter"))
}

func TestComponentType(t *testing.T) {
	job := mustJob(t, `
components:
  lr: {module: HeteroLR}
`)
	tests := []struct {
		component string
		want      string
	}{
		{component: "lr", want: "HeteroLR"},
		{component: "reader_0", want: "reader"},
		{component: "hetero_lr_12", want: "hetero_lr"},
		{component: "union", want: "union"},
		{component: "union_", want: "union_"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.component, func(t *testing.T) {
			require.Equal(t, tt.want, ComponentType(job, tt.component))
		})
	}
}
