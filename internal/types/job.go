package types

import (
	"fmt"
	"sort"
	"strconv"
)

// PartyID identifies one participant of a job.
type PartyID int64

type Initiator struct {
	Role    string  `yaml:"role" json:"role"`
	PartyID PartyID `yaml:"party_id" json:"party_id"`
}

func (i Initiator) String() string {
	return fmt.Sprintf("%s:%d", i.Role, i.PartyID)
}

// RoleTopology maps a role name to its ordered party list. The position
// of a party in the list is its index for index-keyed overrides.
type RoleTopology map[string][]PartyID

// Roles returns the declared role names in sorted order.
func (t RoleTopology) Roles() []string {
	roles := make([]string, 0, len(t))
	for role := range t {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

// LayeredParameterSet is the common/role override structure shared by
// job_parameters and component_parameters.
//
// Common is an object. Role maps a role name to index keys ("0", "0|2",
// "all", "common") and each index key to an object. For component
// parameters the objects map component names to partial parameter
// objects; for job parameters they are the parameter objects themselves.
type LayeredParameterSet struct {
	Common Value                       `yaml:"common,omitempty"`
	Role   map[string]map[string]Value `yaml:"role,omitempty"`
}

// ComponentRef binds a component name to its catalog type.
type ComponentRef struct {
	Module string `yaml:"module"`
}

type JobDeclaration struct {
	DSLVersion          int                     `yaml:"dsl_version"`
	Initiator           Initiator               `yaml:"initiator"`
	Role                RoleTopology            `yaml:"role"`
	JobParameters       LayeredParameterSet     `yaml:"job_parameters"`
	ComponentParameters LayeredParameterSet     `yaml:"component_parameters"`
	Components          map[string]ComponentRef `yaml:"components,omitempty"`
}

// PartyRef is the explicit coordinate of one party: its role, its id and
// its 0-based index within the role's declared list.
type PartyRef struct {
	Role    string
	PartyID PartyID
	Index   int
}

// IndexKey is the override key addressing this party alone.
func (p PartyRef) IndexKey() string {
	return strconv.Itoa(p.Index)
}

func (p PartyRef) String() string {
	return fmt.Sprintf("%s:%d#%d", p.Role, p.PartyID, p.Index)
}
