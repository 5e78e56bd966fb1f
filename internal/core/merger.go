package core

import (
	"fmt"
	"sort"

	"multiparty-params/internal/policies"
	"multiparty-params/internal/shared"
	"multiparty-params/internal/types"
)

// OverrideMerger folds the tiers of a LayeredParameterSet into one
// parameter object for a single (component, role, index) coordinate.
type OverrideMerger struct {
	Tiers         []types.Tier
	StrictObjects bool
}

func NewOverrideMerger(policy policies.ResolutionPolicy) OverrideMerger {
	tiers := policy.Tiers
	if len(tiers) == 0 {
		tiers = policies.DefaultTiers()
	}
	return OverrideMerger{Tiers: tiers, StrictObjects: policy.StrictObjectMerge}
}

// Layer is one patch of the override stack together with where it came
// from.
type Layer struct {
	Source string
	Patch  types.Value
}

// Layers returns the patches that apply to component for the party at
// index within role, in application order. An empty component selects
// whole tier objects, which is how job parameters are addressed.
func (m OverrideMerger) Layers(set types.LayeredParameterSet, component string, role string, index int) []Layer {
	var layers []Layer
	for _, tier := range m.Tiers {
		switch tier {
		case types.TierCommon:
			layers = appendLayer(layers, "common", set.Common, component)
		case types.TierRole:
			for _, key := range roleWideKeys(set.Role[role]) {
				layers = appendLayer(layers, fmt.Sprintf("role.%s.%s", role, key), set.Role[role][key], component)
			}
		case types.TierParty:
			for _, key := range partyKeys(set.Role[role], index) {
				layers = appendLayer(layers, fmt.Sprintf("role.%s.%s", role, key), set.Role[role][key], component)
			}
		}
	}
	return layers
}

// Merge deep-merges the applicable layers. Later layers win key by key;
// nested objects merge recursively; arrays and scalars are replaced
// whole. In strict mode an object replaced by a non-object (or the
// reverse) is reported and the earlier value is kept.
func (m OverrideMerger) Merge(set types.LayeredParameterSet, component string, role string, index int) (types.Value, []types.Diagnostic) {
	merged := types.EmptyObject()
	var diags []types.Diagnostic
	for _, layer := range m.Layers(set, component, role, index) {
		if !layer.Patch.IsObject() {
			diag := newDiagnostic(types.StageMerge, types.CodeMergeError, types.SeverityError, "",
				fmt.Sprintf("layer %s is a %s, not an object", layer.Source, layer.Patch.Kind()))
			diag.Component = component
			diags = append(diags, diag)
			continue
		}
		var conflicts []string
		merged = deepMerge(merged, layer.Patch, "", m.StrictObjects, &conflicts)
		for _, path := range conflicts {
			diag := newDiagnostic(types.StageMerge, types.CodeMergeError, types.SeverityError, path,
				fmt.Sprintf("layer %s changes the shape of %s between object and non-object", layer.Source, path))
			diag.Component = component
			diags = append(diags, diag)
		}
	}
	return merged, diags
}

// DeepMerge overlays patch onto base without strict shape checks.
func DeepMerge(base types.Value, patch types.Value) types.Value {
	var conflicts []string
	return deepMerge(base, patch, "", false, &conflicts)
}

func deepMerge(base types.Value, patch types.Value, path string, strict bool, conflicts *[]string) types.Value {
	if !base.IsObject() || !patch.IsObject() {
		if strict && !base.IsNull() && !patch.IsNull() && base.IsObject() != patch.IsObject() {
			*conflicts = append(*conflicts, path)
			return base
		}
		return patch
	}
	fields := base.Fields()
	for _, key := range patch.Keys() {
		child, _ := patch.Get(key)
		existing, ok := fields[key]
		if !ok {
			fields[key] = child
			continue
		}
		fields[key] = deepMerge(existing, child, shared.JoinPath(path, key), strict, conflicts)
	}
	return types.NewObject(fields)
}

func appendLayer(layers []Layer, source string, tier types.Value, component string) []Layer {
	if tier.IsNull() {
		return layers
	}
	if component == "" {
		return append(layers, Layer{Source: source, Patch: tier})
	}
	patch, ok := tier.Get(component)
	if !ok || patch.IsNull() {
		return layers
	}
	return append(layers, Layer{Source: shared.JoinPath(source, component), Patch: patch})
}

func roleWideKeys(overrides map[string]types.Value) []string {
	var keys []string
	for key := range overrides {
		if shared.IsRoleWideKey(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// partyKeys selects the index keys that address index. Selectors covering
// more parties apply first so the single-index key is always the most
// specific layer.
func partyKeys(overrides map[string]types.Value, index int) []string {
	type selected struct {
		key   string
		width int
	}
	var matches []selected
	for key := range overrides {
		if shared.IsRoleWideKey(key) {
			continue
		}
		indexes, err := shared.ParseIndexSelector(key)
		if err != nil {
			continue
		}
		for _, candidate := range indexes {
			if candidate == index {
				matches = append(matches, selected{key: key, width: len(indexes)})
				break
			}
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].width != matches[j].width {
			return matches[i].width > matches[j].width
		}
		return matches[i].key < matches[j].key
	})
	keys := make([]string, len(matches))
	for i, match := range matches {
		keys[i] = match.key
	}
	return keys
}
