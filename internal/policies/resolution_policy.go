package policies

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	pep440 "github.com/aquasecurity/go-pep440-version"
	"github.com/go-playground/validator/v10"

	"multiparty-params/internal/types"
)

// ResolutionPolicy carries the per-request knobs of a resolution run.
type ResolutionPolicy struct {
	// UnknownComponent decides whether components missing from the catalog
	// pass through unchecked (warning) or fail (error).
	UnknownComponent types.UnknownComponentPolicy `validate:"required,oneof=passthrough reject"`

	// UnknownField is the severity reported for keys a known component
	// type does not recognize.
	UnknownField types.Severity `validate:"required,oneof=error warning"`

	// StrictTopology turns a party id declared under several roles into
	// an error instead of a warning.
	StrictTopology bool

	// StrictObjectMerge rejects overrides that replace an object with a
	// scalar or array (and the reverse).
	StrictObjectMerge bool

	// ApplyDefaults fills catalog defaults for keys no layer defines.
	ApplyDefaults bool

	// Tiers is the merge order, most general first.
	Tiers []types.Tier `validate:"required,min=1,max=3,unique,dive,oneof=common role party"`

	// PlatformVersion is the PEP 440 version of the execution platform the
	// bundle targets. Empty skips availability checks.
	PlatformVersion string `validate:"omitempty,max=64"`

	// Workers bounds concurrent merge/validate tasks. Zero uses GOMAXPROCS.
	Workers int `validate:"gte=0,lte=1024"`
}

var policyValidator = validator.New()

func DefaultResolutionPolicy() ResolutionPolicy {
	return ResolutionPolicy{
		UnknownComponent: types.UnknownComponentPassthrough,
		UnknownField:     types.SeverityWarning,
		Tiers:            DefaultTiers(),
	}
}

func DefaultTiers() []types.Tier {
	return []types.Tier{types.TierCommon, types.TierRole, types.TierParty}
}

func (p ResolutionPolicy) Validate() error {
	if err := policyValidator.Struct(p); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid resolution policy").
			WithCause(err)
	}
	if strings.TrimSpace(p.PlatformVersion) != "" {
		if _, err := pep440.Parse(p.PlatformVersion); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid platform version: %s", p.PlatformVersion)).
				WithCause(err)
		}
	}
	return nil
}

func (p ResolutionPolicy) UnknownComponentSeverity() types.Severity {
	if p.UnknownComponent == types.UnknownComponentReject {
		return types.SeverityError
	}
	return types.SeverityWarning
}

func (p ResolutionPolicy) UnknownFieldSeverity() types.Severity {
	if p.UnknownField == types.SeverityError {
		return types.SeverityError
	}
	return types.SeverityWarning
}

func (p ResolutionPolicy) CrossRoleSeverity() types.Severity {
	if p.StrictTopology {
		return types.SeverityError
	}
	return types.SeverityWarning
}

func (p ResolutionPolicy) EffectiveWorkers() int {
	if p.Workers > 0 {
		return p.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// ParseTiers turns "common,role,party" style input into tiers. Empty input
// yields the default order.
func ParseTiers(values []string) ([]types.Tier, error) {
	var tiers []types.Tier
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			normalized := strings.ToLower(strings.TrimSpace(part))
			if normalized == "" {
				continue
			}
			switch types.Tier(normalized) {
			case types.TierCommon, types.TierRole, types.TierParty:
				tiers = append(tiers, types.Tier(normalized))
			default:
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg(fmt.Sprintf("unknown merge tier: %s", part))
			}
		}
	}
	if len(tiers) == 0 {
		return DefaultTiers(), nil
	}
	return tiers, nil
}
