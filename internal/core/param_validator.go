package core

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"multiparty-params/internal/policies"
	"multiparty-params/internal/ports"
	"multiparty-params/internal/shared"
	"multiparty-params/internal/types"
)

// ParameterValidator checks merged parameter objects against the catalog.
// One generic interpreter serves every component type.
type ParameterValidator struct {
	Catalog ports.CatalogPort
	Policy  policies.ResolutionPolicy

	versions *versionGate
}

func NewParameterValidator(catalog ports.CatalogPort, policy policies.ResolutionPolicy) (ParameterValidator, error) {
	if catalog == nil {
		return ParameterValidator{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("parameter validator requires a catalog")
	}
	gate, err := newVersionGate(strings.TrimSpace(policy.PlatformVersion))
	if err != nil {
		return ParameterValidator{}, err
	}
	return ParameterValidator{Catalog: catalog, Policy: policy, versions: gate}, nil
}

// Validate checks params of the named component against the schema of
// componentType. It returns the normalized parameters (folded enum
// literals, optional defaults) and every finding; it never stops at the
// first violation.
func (v ParameterValidator) Validate(ctx context.Context, component string, componentType string, params types.Value) (types.Value, []types.Diagnostic) {
	descriptor, ok := v.Catalog.Lookup(componentType)
	if !ok {
		diag := newDiagnostic(types.StageSchema, types.CodeSchemaUnknownComponent, v.Policy.UnknownComponentSeverity(), "",
			fmt.Sprintf("component type %s is not in the catalog", componentType))
		diag.Component = component
		return params, []types.Diagnostic{diag}
	}
	return v.ValidateDescriptor(ctx, component, descriptor, params)
}

// ValidateDescriptor is Validate with the catalog lookup already done.
func (v ParameterValidator) ValidateDescriptor(ctx context.Context, component string, descriptor types.SchemaDescriptor, params types.Value) (types.Value, []types.Diagnostic) {
	run := validationRun{validator: v, component: component}
	if descriptor.Requires != "" {
		ok, err := v.gate().satisfies(descriptor.Requires)
		switch {
		case err != nil:
			run.add(types.StageSchema, types.CodeUnsupportedComponent, types.SeverityError, "",
				fmt.Sprintf("catalog entry %s has invalid requires specifier %q: %v", descriptor.Component, descriptor.Requires, err))
		case !ok:
			run.add(types.StageSchema, types.CodeUnsupportedComponent, types.SeverityError, "",
				fmt.Sprintf("component type %s requires platform %s, target is %s", descriptor.Component, descriptor.Requires, v.Policy.PlatformVersion))
		}
	}
	if params.IsNull() {
		params = types.EmptyObject()
	}
	if !params.IsObject() {
		run.add(types.StageValidation, types.CodeFieldValidationError, types.SeverityError, "",
			fmt.Sprintf("parameters must be an object, found %s", params.Kind()))
		return params, run.diags
	}
	normalized := run.checkObject(descriptor.Fields, params, "")
	log.Ctx(ctx).Debug().
		Str("component", component).
		Str("type", descriptor.Component).
		Int("findings", len(run.diags)).
		Msg("parameters validated")
	return normalized, run.diags
}

func (v ParameterValidator) gate() *versionGate {
	if v.versions == nil {
		gate, _ := newVersionGate("")
		return gate
	}
	return v.versions
}

// validationRun accumulates findings for one parameter object.
type validationRun struct {
	validator ParameterValidator
	component string
	diags     []types.Diagnostic
}

func (r *validationRun) add(stage types.Stage, code types.DiagnosticCode, severity types.Severity, field string, message string) {
	diag := newDiagnostic(stage, code, severity, field, message)
	diag.Component = r.component
	r.diags = append(r.diags, diag)
}

func (r *validationRun) fieldError(field string, message string) {
	r.add(types.StageValidation, types.CodeFieldValidationError, types.SeverityError, field, message)
}

func (r *validationRun) checkObject(fields map[string]types.FieldSpec, obj types.Value, path string) types.Value {
	out := obj.Fields()
	for _, key := range obj.Keys() {
		child, _ := obj.Get(key)
		fieldPath := shared.JoinPath(path, key)
		spec, known := fields[key]
		if !known {
			r.add(types.StageValidation, types.CodeUnknownField, r.validator.Policy.UnknownFieldSeverity(), fieldPath,
				fmt.Sprintf("%s is not a recognized parameter", fieldPath))
			continue
		}
		r.checkDeprecated(spec, fieldPath)
		out[key] = r.checkValue(spec, child, fieldPath)
	}
	if r.validator.Policy.ApplyDefaults {
		for _, key := range sortedFieldNames(fields) {
			if _, present := out[key]; present {
				continue
			}
			if spec := fields[key]; spec.Default != nil {
				out[key] = spec.Default.Clone()
			}
		}
	}
	return types.NewObject(out)
}

func (r *validationRun) checkDeprecated(spec types.FieldSpec, path string) {
	if spec.DeprecatedSince == "" {
		return
	}
	reached, err := r.validator.gate().reached(spec.DeprecatedSince)
	if err != nil || !reached {
		return
	}
	message := fmt.Sprintf("%s is deprecated since %s", path, spec.DeprecatedSince)
	if spec.ReplacedBy != "" {
		message += "; use " + spec.ReplacedBy
	}
	r.add(types.StageValidation, types.CodeDeprecatedField, types.SeverityWarning, path, message)
}

// checkValue validates one value and returns its normalized form.
func (r *validationRun) checkValue(spec types.FieldSpec, value types.Value, path string) types.Value {
	if value.IsNull() {
		if !spec.Nullable && spec.Kind != types.FieldKindAny {
			r.fieldError(path, fmt.Sprintf("%s must not be null", path))
		}
		return value
	}
	for _, sentinel := range spec.Sentinels {
		if value.Equal(sentinel) {
			return value
		}
	}
	if len(spec.AnyOf) > 0 {
		return r.checkUnion(spec, value, path)
	}

	switch spec.Kind {
	case types.FieldKindBoolean:
		if _, ok := value.AsBool(); !ok {
			r.kindMismatch(spec, value, path)
		}
	case types.FieldKindInteger:
		number, ok := value.AsInt()
		if !ok {
			r.kindMismatch(spec, value, path)
			return value
		}
		r.checkIntBounds(spec, number, value, path)
	case types.FieldKindFloat:
		number, ok := value.AsFloat()
		if !ok {
			r.kindMismatch(spec, value, path)
			return value
		}
		if math.IsNaN(number) || math.IsInf(number, 0) {
			r.fieldError(path, fmt.Sprintf("%s = %s is not a finite number", path, value))
			return value
		}
		r.checkBounds(spec, number, value, path)
	case types.FieldKindString:
		text, ok := value.AsString()
		if !ok {
			r.kindMismatch(spec, value, path)
			return value
		}
		if len(spec.Enum) > 0 {
			return r.checkEnum(spec, text, value, path)
		}
	case types.FieldKindEnum:
		text, ok := value.AsString()
		if !ok {
			r.kindMismatch(spec, value, path)
			return value
		}
		return r.checkEnum(spec, text, value, path)
	case types.FieldKindObject:
		if !value.IsObject() {
			r.kindMismatch(spec, value, path)
			return value
		}
		if len(spec.Fields) > 0 {
			return r.checkObject(spec.Fields, value, path)
		}
	case types.FieldKindArray:
		if !value.IsArray() {
			r.kindMismatch(spec, value, path)
			return value
		}
		if spec.Items != nil {
			items := value.Items()
			for i, item := range items {
				items[i] = r.checkValue(*spec.Items, item, shared.IndexPath(path, i))
			}
			return types.NewArray(items...)
		}
	case types.FieldKindAny, "":
	default:
		r.fieldError(path, fmt.Sprintf("catalog declares unsupported kind %s for %s", spec.Kind, path))
	}
	return value
}

// checkUnion accepts value when any alternative accepts it. Findings of the
// alternatives are folded into one message so a failed union reads as a
// single violation.
func (r *validationRun) checkUnion(spec types.FieldSpec, value types.Value, path string) types.Value {
	for _, alternative := range spec.AnyOf {
		trial := validationRun{validator: r.validator, component: r.component}
		normalized := trial.checkValue(alternative, value, path)
		if !hasErrors(trial.diags) {
			r.diags = append(r.diags, trial.diags...)
			return normalized
		}
	}
	r.fieldError(path, fmt.Sprintf("%s = %s matches none of: %s", path, value, describe(spec)))
	return value
}

func (r *validationRun) checkBounds(spec types.FieldSpec, number float64, value types.Value, path string) {
	if spec.Min != nil {
		if number < *spec.Min || (spec.ExclusiveMin && number == *spec.Min) {
			r.fieldError(path, fmt.Sprintf("%s = %s is out of range, expected %s", path, value, describe(spec)))
			return
		}
	}
	if spec.Max != nil {
		if number > *spec.Max || (spec.ExclusiveMax && number == *spec.Max) {
			r.fieldError(path, fmt.Sprintf("%s = %s is out of range, expected %s", path, value, describe(spec)))
		}
	}
}

// checkIntBounds compares in int64 when a bound is integral so values
// beyond 2^53 keep their precision at the boundary.
func (r *validationRun) checkIntBounds(spec types.FieldSpec, number int64, value types.Value, path string) {
	outOfRange := false
	if spec.Min != nil {
		if bound, ok := integralBound(*spec.Min); ok {
			outOfRange = number < bound || (spec.ExclusiveMin && number == bound)
		} else {
			outOfRange = float64(number) < *spec.Min
		}
	}
	if !outOfRange && spec.Max != nil {
		if bound, ok := integralBound(*spec.Max); ok {
			outOfRange = number > bound || (spec.ExclusiveMax && number == bound)
		} else {
			outOfRange = float64(number) > *spec.Max
		}
	}
	if outOfRange {
		r.fieldError(path, fmt.Sprintf("%s = %s is out of range, expected %s", path, value, describe(spec)))
	}
}

func integralBound(bound float64) (int64, bool) {
	if math.Trunc(bound) != bound || bound < -(1<<63) || bound >= 1<<63 {
		return 0, false
	}
	return int64(bound), true
}

func (r *validationRun) checkEnum(spec types.FieldSpec, text string, value types.Value, path string) types.Value {
	for _, literal := range spec.Enum {
		if literal == text {
			return value
		}
		if spec.EnumFold && strings.EqualFold(literal, text) {
			return types.NewString(literal)
		}
	}
	r.fieldError(path, fmt.Sprintf("%s = %s is not one of %s", path, value, strings.Join(spec.Enum, ", ")))
	return value
}

func (r *validationRun) kindMismatch(spec types.FieldSpec, value types.Value, path string) {
	r.fieldError(path, fmt.Sprintf("%s expects %s, found %s %s", path, describe(spec), value.Kind(), value))
}

// describe renders a field spec for messages, e.g. "integer >= 1 or -1".
func describe(spec types.FieldSpec) string {
	if len(spec.AnyOf) > 0 {
		parts := make([]string, 0, len(spec.AnyOf)+len(spec.Sentinels))
		for _, alternative := range spec.AnyOf {
			parts = append(parts, describe(alternative))
		}
		for _, sentinel := range spec.Sentinels {
			parts = append(parts, sentinel.String())
		}
		return strings.Join(parts, " | ")
	}
	text := string(spec.Kind)
	if text == "" {
		text = string(types.FieldKindAny)
	}
	if len(spec.Enum) > 0 {
		text += " in [" + strings.Join(spec.Enum, ", ") + "]"
	}
	if spec.Min != nil {
		op := ">="
		if spec.ExclusiveMin {
			op = ">"
		}
		text += fmt.Sprintf(" %s %g", op, *spec.Min)
	}
	if spec.Max != nil {
		op := "<="
		if spec.ExclusiveMax {
			op = "<"
		}
		text += fmt.Sprintf(" %s %g", op, *spec.Max)
	}
	for _, sentinel := range spec.Sentinels {
		text += " or " + sentinel.String()
	}
	return text
}

func sortedFieldNames(fields map[string]types.FieldSpec) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
