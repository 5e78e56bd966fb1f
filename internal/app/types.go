package app

import (
	"time"

	"multiparty-params/internal/policies"
	"multiparty-params/internal/types"
)

// CatalogOptions selects the catalog layers of a run. The builtin catalog
// is the first layer unless NoBuiltin is set.
type CatalogOptions struct {
	Paths     []string
	NoBuiltin bool
}

type ValidateRequest struct {
	JobPath     string
	Catalog     CatalogOptions
	Policy      policies.ResolutionPolicy
	MetricsFile string
}

type ValidateResult struct {
	Resolution types.ResolutionResult
	Elapsed    time.Duration
}

type ResolveRequest struct {
	JobPath     string
	Catalog     CatalogOptions
	Policy      policies.ResolutionPolicy
	OutputDir   string
	Format      types.OutputFormat
	MetricsFile string
}

type ResolveResult struct {
	Resolution types.ResolutionResult
	OutputDir  string
	BundlePath string
	Elapsed    time.Duration
}

type InspectRequest struct {
	OutputDir string
	Role      string
}

type InspectPartySummary struct {
	Role       string
	PartyID    types.PartyID
	Components []string
}

type InspectResult struct {
	BundlePath  string
	Parties     []InspectPartySummary
	Diagnostics []types.Diagnostic
	Errors      int
	Warnings    int
}

type CatalogRequest struct {
	Catalog   CatalogOptions
	Component string
}

type CatalogResult struct {
	Components []string
	Descriptor *types.SchemaDescriptor
}

type WatchRequest struct {
	Validate ValidateRequest

	// OnResult receives the outcome of every validation run, including
	// the first one made before any change.
	OnResult func(ValidateResult, error)
}
