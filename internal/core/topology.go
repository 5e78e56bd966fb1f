package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"multiparty-params/internal/policies"
	"multiparty-params/internal/shared"
	"multiparty-params/internal/types"
)

// TopologyValidator checks the role -> party declaration, the initiator and
// the role/index keys used by override layers. All rules run; findings
// accumulate.
type TopologyValidator struct {
	// CrossRole is the severity of a party id declared under more than
	// one role.
	CrossRole types.Severity
}

func NewTopologyValidator(policy policies.ResolutionPolicy) TopologyValidator {
	return TopologyValidator{CrossRole: policy.CrossRoleSeverity()}
}

func (v TopologyValidator) Validate(ctx context.Context, topology types.RoleTopology, initiator types.Initiator) []types.Diagnostic {
	var diags []types.Diagnostic
	if len(topology) == 0 {
		diags = append(diags, topologyError("role", "role topology declares no roles"))
	}

	owner := map[types.PartyID]string{}
	for _, role := range topology.Roles() {
		parties := topology[role]
		path := shared.JoinPath("role", role)
		if strings.TrimSpace(role) == "" {
			diags = append(diags, topologyError("role", "role name must not be empty"))
		}
		if len(parties) == 0 {
			diags = append(diags, topologyError(path, fmt.Sprintf("role %s declares no parties", role)))
			continue
		}
		seen := map[types.PartyID]int{}
		for index, party := range parties {
			if party < 0 {
				diags = append(diags, topologyError(shared.IndexPath(path, index),
					fmt.Sprintf("party id %d under role %s is negative", party, role)))
			}
			if first, dup := seen[party]; dup {
				diags = append(diags, topologyError(shared.IndexPath(path, index),
					fmt.Sprintf("party id %d is declared twice under role %s (indexes %d and %d)", party, role, first, index)))
				continue
			}
			seen[party] = index
			if other, ok := owner[party]; ok {
				diag := newDiagnostic(types.StageTopology, types.CodeTopologyError, v.crossRoleSeverity(),
					shared.IndexPath(path, index),
					fmt.Sprintf("party id %d is declared under roles %s and %s", party, other, role))
				diags = append(diags, diag)
				continue
			}
			owner[party] = role
		}
	}

	diags = append(diags, v.validateInitiator(topology, initiator)...)
	log.Ctx(ctx).Debug().
		Int("roles", len(topology)).
		Int("findings", len(diags)).
		Msg("topology validated")
	return diags
}

func (v TopologyValidator) validateInitiator(topology types.RoleTopology, initiator types.Initiator) []types.Diagnostic {
	if strings.TrimSpace(initiator.Role) == "" {
		return []types.Diagnostic{topologyError("initiator.role", "initiator role must be set")}
	}
	parties, ok := topology[initiator.Role]
	if !ok {
		return []types.Diagnostic{topologyError("initiator.role",
			fmt.Sprintf("initiator role %s is not a declared role", initiator.Role))}
	}
	for _, party := range parties {
		if party == initiator.PartyID {
			return nil
		}
	}
	diag := topologyError("initiator.party_id",
		fmt.Sprintf("initiator party %d is not declared under role %s", initiator.PartyID, initiator.Role))
	diag.Role = initiator.Role
	return []types.Diagnostic{diag}
}

// ValidateOverrides checks that every role key of set names a declared role
// and every index key addresses parties that exist.
func (v TopologyValidator) ValidateOverrides(topology types.RoleTopology, set types.LayeredParameterSet, scope string) []types.Diagnostic {
	var diags []types.Diagnostic
	roles := make([]string, 0, len(set.Role))
	for role := range set.Role {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	for _, role := range roles {
		rolePath := fmt.Sprintf("%s.role.%s", scope, role)
		parties, declared := topology[role]
		if !declared {
			diags = append(diags, topologyError(rolePath,
				fmt.Sprintf("%s overrides undeclared role %s", scope, role)))
			continue
		}
		keys := make([]string, 0, len(set.Role[role]))
		for key := range set.Role[role] {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if shared.IsRoleWideKey(key) {
				continue
			}
			keyPath := shared.JoinPath(rolePath, key)
			indexes, err := shared.ParseIndexSelector(key)
			if err != nil {
				diags = append(diags, topologyError(keyPath, fmt.Sprintf("invalid party index key %q: %v", key, err)))
				continue
			}
			for _, index := range indexes {
				if index >= len(parties) {
					diag := topologyError(keyPath,
						fmt.Sprintf("party index %d is out of range for role %s with %d parties", index, role, len(parties)))
					diag.Role = role
					diags = append(diags, diag)
				}
			}
		}
	}
	return diags
}

func (v TopologyValidator) crossRoleSeverity() types.Severity {
	if v.CrossRole == "" {
		return types.SeverityWarning
	}
	return v.CrossRole
}

// Coordinates computes the explicit (role, party id, index) coordinate of
// every declared party, ordered by role name then index.
func Coordinates(topology types.RoleTopology) []types.PartyRef {
	var refs []types.PartyRef
	for _, role := range topology.Roles() {
		for index, party := range topology[role] {
			refs = append(refs, types.PartyRef{Role: role, PartyID: party, Index: index})
		}
	}
	return refs
}

func topologyError(field string, message string) types.Diagnostic {
	return newDiagnostic(types.StageTopology, types.CodeTopologyError, types.SeverityError, field, message)
}
