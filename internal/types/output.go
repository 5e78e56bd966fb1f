package types

import (
	"fmt"
	"strings"
)

// Diagnostic is one finding of a resolution run. Coordinates that do not
// apply to the finding stay empty.
type Diagnostic struct {
	Stage     Stage          `yaml:"stage" json:"stage"`
	Severity  Severity       `yaml:"severity" json:"severity"`
	Code      DiagnosticCode `yaml:"code" json:"code"`
	Role      string         `yaml:"role,omitempty" json:"role,omitempty"`
	PartyID   *PartyID       `yaml:"party_id,omitempty" json:"party_id,omitempty"`
	Component string         `yaml:"component,omitempty" json:"component,omitempty"`
	Field     string         `yaml:"field,omitempty" json:"field,omitempty"`
	Message   string         `yaml:"message" json:"message"`
}

func (d Diagnostic) IsError() bool {
	return d.Severity == SeverityError
}

// AtParty returns a copy of d scoped to the given party.
func (d Diagnostic) AtParty(ref PartyRef) Diagnostic {
	id := ref.PartyID
	d.Role = ref.Role
	d.PartyID = &id
	return d
}

func (d Diagnostic) String() string {
	var where []string
	if d.Role != "" {
		where = append(where, "role="+d.Role)
	}
	if d.PartyID != nil {
		where = append(where, fmt.Sprintf("party=%d", *d.PartyID))
	}
	if d.Component != "" {
		where = append(where, "component="+d.Component)
	}
	if d.Field != "" {
		where = append(where, "field="+d.Field)
	}
	location := ""
	if len(where) > 0 {
		location = " [" + strings.Join(where, " ") + "]"
	}
	return fmt.Sprintf("%s %s %s%s: %s", d.Severity, d.Stage, d.Code, location, d.Message)
}

// ResolvedParty is the fully merged and validated configuration of one
// party.
type ResolvedParty struct {
	Role       string           `yaml:"role" json:"role"`
	PartyID    PartyID          `yaml:"party_id" json:"party_id"`
	Index      int              `yaml:"index" json:"index"`
	Job        Value            `yaml:"job_parameters" json:"job_parameters"`
	Components map[string]Value `yaml:"component_parameters" json:"component_parameters"`
}

func (p ResolvedParty) Ref() PartyRef {
	return PartyRef{Role: p.Role, PartyID: p.PartyID, Index: p.Index}
}

// ResolutionResult is the outcome of one resolution. Valid is false when
// any error-severity diagnostic exists; Parties may still be inspected in
// that case but must not be distributed.
type ResolutionResult struct {
	ID          string          `yaml:"id" json:"id"`
	Valid       bool            `yaml:"valid" json:"valid"`
	Initiator   Initiator       `yaml:"initiator" json:"initiator"`
	Parties     []ResolvedParty `yaml:"parties" json:"parties"`
	Diagnostics []Diagnostic    `yaml:"diagnostics,omitempty" json:"diagnostics,omitempty"`
}

func (r ResolutionResult) Errors() []Diagnostic {
	var out []Diagnostic
	for _, diag := range r.Diagnostics {
		if diag.IsError() {
			out = append(out, diag)
		}
	}
	return out
}

func (r ResolutionResult) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, diag := range r.Diagnostics {
		if !diag.IsError() {
			out = append(out, diag)
		}
	}
	return out
}

func (r ResolutionResult) Party(role string, id PartyID) (ResolvedParty, bool) {
	for _, party := range r.Parties {
		if party.Role == role && party.PartyID == id {
			return party, true
		}
	}
	return ResolvedParty{}, false
}

// Bundle is the per-party transport shape: role -> party id -> component
// name -> resolved parameters.
type Bundle map[string]map[PartyID]map[string]Value

func (r ResolutionResult) Bundle() Bundle {
	bundle := Bundle{}
	for _, party := range r.Parties {
		byParty, ok := bundle[party.Role]
		if !ok {
			byParty = map[PartyID]map[string]Value{}
			bundle[party.Role] = byParty
		}
		components := make(map[string]Value, len(party.Components))
		for name, params := range party.Components {
			components[name] = params
		}
		byParty[party.PartyID] = components
	}
	return bundle
}

// PartyConfig is the document handed to one party's execution engine.
type PartyConfig struct {
	ResolutionID        string           `yaml:"resolution_id" json:"resolution_id"`
	Role                string           `yaml:"role" json:"role"`
	PartyID             PartyID          `yaml:"party_id" json:"party_id"`
	Index               int              `yaml:"index" json:"index"`
	Initiator           Initiator        `yaml:"initiator" json:"initiator"`
	JobParameters       Value            `yaml:"job_parameters" json:"job_parameters"`
	ComponentParameters map[string]Value `yaml:"component_parameters" json:"component_parameters"`
}
