package core

import (
	"context"
	"sort"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"multiparty-params/internal/policies"
	"multiparty-params/internal/ports"
	"multiparty-params/internal/shared"
	"multiparty-params/internal/telemetry"
	"multiparty-params/internal/types"
)

// ResolverCore turns a job declaration into one validated parameter set
// per party. It is a pure function of (declaration, catalog, policy).
type ResolverCore struct {
	Catalog ports.CatalogPort
	Policy  policies.ResolutionPolicy

	// NewID names each resolution. Defaults to random UUIDs.
	NewID func() string
}

func NewResolverCore(catalog ports.CatalogPort, policy policies.ResolutionPolicy) ResolverCore {
	return ResolverCore{
		Catalog: catalog,
		Policy:  policy,
		NewID:   func() string { return uuid.New().String() },
	}
}

// resolveTask is one independent merge-then-validate unit. An empty
// component addresses the party's job parameters.
type resolveTask struct {
	party         types.PartyRef
	component     string
	componentType string
}

type taskResult struct {
	params types.Value
	diags  []types.Diagnostic
}

// Resolve runs the full pipeline. Findings about the declaration are
// reported in the result, never as a Go error: a returned error means the
// resolver itself could not run (bad policy, missing catalog, cancelled
// context). When any finding is an error the result is marked invalid as a
// whole.
func (r ResolverCore) Resolve(ctx context.Context, job types.JobDeclaration) (types.ResolutionResult, error) {
	if r.Catalog == nil {
		return types.ResolutionResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("resolver requires a schema catalog")
	}
	if err := r.Policy.Validate(); err != nil {
		return types.ResolutionResult{}, err
	}
	validator, err := NewParameterValidator(r.Catalog, r.Policy)
	if err != nil {
		return types.ResolutionResult{}, err
	}

	result := types.ResolutionResult{
		ID:        r.newID(),
		Initiator: job.Initiator,
		Parties:   []types.ResolvedParty{},
	}
	ctx, span := telemetry.StartResolveSpan(ctx, result.ID, len(Coordinates(job.Role)))

	diags := NewJobCompiler().Check(ctx, job)
	topology := NewTopologyValidator(r.Policy)
	diags = append(diags, topology.Validate(ctx, job.Role, job.Initiator)...)
	diags = append(diags, topology.ValidateOverrides(job.Role, job.JobParameters, "job_parameters")...)
	diags = append(diags, topology.ValidateOverrides(job.Role, job.ComponentParameters, "component_parameters")...)
	if hasErrors(diags) {
		sortDiagnostics(diags)
		result.Diagnostics = diags
		log.Ctx(ctx).Debug().Str("resolution", result.ID).Msg("declaration rejected before merge")
		telemetry.EndSpan(span, false, len(diags), nil)
		return result, nil
	}

	refs := Coordinates(job.Role)
	tasks := planTasks(job, refs)
	results := make([]taskResult, len(tasks))
	merger := NewOverrideMerger(r.Policy)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.Policy.EffectiveWorkers())
	for i, task := range tasks {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			results[i] = r.runTask(groupCtx, merger, validator, job, task)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		telemetry.EndSpan(span, false, len(diags), err)
		return types.ResolutionResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("resolution interrupted").
			WithCause(err)
	}

	parties := make(map[types.PartyRef]*types.ResolvedParty, len(refs))
	for _, ref := range refs {
		parties[ref] = &types.ResolvedParty{
			Role:       ref.Role,
			PartyID:    ref.PartyID,
			Index:      ref.Index,
			Job:        types.EmptyObject(),
			Components: map[string]types.Value{},
		}
	}
	for i, task := range tasks {
		party := parties[task.party]
		assert.NotEmpty(ctx, party.Role, "resolved party role must be set")
		if task.component == "" {
			party.Job = results[i].params
		} else {
			party.Components[task.component] = results[i].params
		}
		diags = append(diags, results[i].diags...)
	}
	for _, ref := range refs {
		result.Parties = append(result.Parties, *parties[ref])
	}

	sortDiagnostics(diags)
	result.Diagnostics = diags
	result.Valid = !hasErrors(diags)
	log.Ctx(ctx).Debug().
		Str("resolution", result.ID).
		Int("parties", len(result.Parties)).
		Int("tasks", len(tasks)).
		Bool("valid", result.Valid).
		Msg("resolution completed")
	telemetry.EndSpan(span, result.Valid, len(diags), nil)
	return result, nil
}

func (r ResolverCore) runTask(ctx context.Context, merger OverrideMerger, validator ParameterValidator, job types.JobDeclaration, task resolveTask) taskResult {
	if task.component == "" {
		merged, diags := merger.Merge(job.JobParameters, "", task.party.Role, task.party.Index)
		params := merged
		if descriptor, ok := r.Catalog.Lookup(types.JobParametersComponent); ok && !hasErrors(diags) {
			var found []types.Diagnostic
			params, found = validator.ValidateDescriptor(ctx, "", descriptor, merged)
			diags = append(diags, found...)
		}
		return taskResult{params: params, diags: scopeToParty(diags, task.party, "")}
	}

	merged, diags := merger.Merge(job.ComponentParameters, task.component, task.party.Role, task.party.Index)
	if hasErrors(diags) {
		return taskResult{params: merged, diags: scopeToParty(diags, task.party, task.component)}
	}
	params, found := validator.Validate(ctx, task.component, task.componentType, merged)
	diags = append(diags, found...)
	return taskResult{params: params, diags: scopeToParty(diags, task.party, task.component)}
}

func (r ResolverCore) newID() string {
	if r.NewID == nil {
		return uuid.New().String()
	}
	return r.NewID()
}

// planTasks lists one job-parameter task and one task per relevant
// component for every party, in a deterministic order.
func planTasks(job types.JobDeclaration, refs []types.PartyRef) []resolveTask {
	var tasks []resolveTask
	componentsByRole := map[string][]string{}
	for _, ref := range refs {
		tasks = append(tasks, resolveTask{party: ref})
		components, ok := componentsByRole[ref.Role]
		if !ok {
			components = ComponentsForRole(job, ref.Role)
			componentsByRole[ref.Role] = components
		}
		for _, component := range components {
			tasks = append(tasks, resolveTask{
				party:         ref,
				component:     component,
				componentType: ComponentType(job, component),
			})
		}
	}
	return tasks
}

// ComponentsForRole returns the components a party of role receives:
// every bound component, every component with common parameters, and every
// component any override layer of that role mentions.
func ComponentsForRole(job types.JobDeclaration, role string) []string {
	names := map[string]struct{}{}
	for name := range job.Components {
		names[name] = struct{}{}
	}
	for _, name := range job.ComponentParameters.Common.Keys() {
		names[name] = struct{}{}
	}
	for _, tier := range job.ComponentParameters.Role[role] {
		for _, name := range tier.Keys() {
			names[name] = struct{}{}
		}
	}
	out := make([]string, 0, len(names))
	for name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ComponentType resolves the catalog type of a component: its declared
// module when bound, otherwise its name without the instance suffix.
func ComponentType(job types.JobDeclaration, component string) string {
	if ref, ok := job.Components[component]; ok && strings.TrimSpace(ref.Module) != "" {
		return strings.TrimSpace(ref.Module)
	}
	return shared.InferComponentType(component)
}

func scopeToParty(diags []types.Diagnostic, party types.PartyRef, component string) []types.Diagnostic {
	out := make([]types.Diagnostic, len(diags))
	for i, diag := range diags {
		scoped := diag.AtParty(party)
		if scoped.Component == "" {
			scoped.Component = component
		}
		out[i] = scoped
	}
	return out
}
