package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"multiparty-params/internal/shared"
	"multiparty-params/internal/types"
)

// SupportedDSLVersion is the only declaration format this engine
// interprets.
const SupportedDSLVersion = 2

// JobCompiler performs structural checks on a declaration before any
// topology or parameter work happens.
type JobCompiler struct{}

func NewJobCompiler() JobCompiler {
	return JobCompiler{}
}

// Check returns every structural problem of job. It never stops at the
// first finding.
func (c JobCompiler) Check(ctx context.Context, job types.JobDeclaration) []types.Diagnostic {
	var diags []types.Diagnostic
	switch {
	case job.DSLVersion == 0:
		diags = append(diags, declarationError("dsl_version", "dsl_version must be set"))
	case job.DSLVersion != SupportedDSLVersion:
		diags = append(diags, declarationError("dsl_version",
			fmt.Sprintf("unsupported dsl_version %d; only %d is supported", job.DSLVersion, SupportedDSLVersion)))
	}
	diags = append(diags, checkLayeredSet("job_parameters", job.JobParameters, false)...)
	diags = append(diags, checkLayeredSet("component_parameters", job.ComponentParameters, true)...)

	names := make([]string, 0, len(job.Components))
	for name := range job.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			diags = append(diags, declarationError("components", "component name must not be empty"))
			continue
		}
		if strings.TrimSpace(job.Components[name].Module) == "" {
			diags = append(diags, declarationError("components."+name+".module",
				fmt.Sprintf("component %s has no module", name)))
		}
	}
	log.Ctx(ctx).Debug().Int("findings", len(diags)).Msg("declaration checked")
	return diags
}

// checkLayeredSet verifies that every tier holds an object. With
// perComponent set, each tier must further map component names to
// objects.
func checkLayeredSet(scope string, set types.LayeredParameterSet, perComponent bool) []types.Diagnostic {
	var diags []types.Diagnostic
	diags = append(diags, checkTierObject(shared.JoinPath(scope, "common"), set.Common, perComponent)...)
	roles := make([]string, 0, len(set.Role))
	for role := range set.Role {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	for _, role := range roles {
		keys := make([]string, 0, len(set.Role[role]))
		for key := range set.Role[role] {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			path := fmt.Sprintf("%s.role.%s.%s", scope, role, key)
			diags = append(diags, checkTierObject(path, set.Role[role][key], perComponent)...)
		}
	}
	return diags
}

func checkTierObject(path string, tier types.Value, perComponent bool) []types.Diagnostic {
	if tier.IsNull() {
		return nil
	}
	if !tier.IsObject() {
		return []types.Diagnostic{declarationError(path,
			fmt.Sprintf("expected an object, found %s", tier.Kind()))}
	}
	if !perComponent {
		return nil
	}
	var diags []types.Diagnostic
	for _, component := range tier.Keys() {
		params, _ := tier.Get(component)
		if params.IsNull() || params.IsObject() {
			continue
		}
		diag := declarationError(shared.JoinPath(path, component),
			fmt.Sprintf("parameters of %s must be an object, found %s", component, params.Kind()))
		diag.Component = component
		diags = append(diags, diag)
	}
	return diags
}

func declarationError(field string, message string) types.Diagnostic {
	return newDiagnostic(types.StageDeclaration, types.CodeDeclarationError, types.SeverityError, field, message)
}
