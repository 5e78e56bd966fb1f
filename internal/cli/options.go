package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"multiparty-params/internal/app"
	"multiparty-params/internal/policies"
	"multiparty-params/internal/types"
)

// resolutionOptions are the flags shared by every command that runs a
// resolution.
type resolutionOptions struct {
	Job              string
	Catalogs         []string
	NoBuiltin        bool
	UnknownComponent string
	UnknownField     string
	StrictTopology   bool
	StrictMerge      bool
	ApplyDefaults    bool
	Tiers            []string
	PlatformVersion  string
	Workers          int
	MetricsFile      string
}

func addResolutionFlags(cmd *cobra.Command, opts *resolutionOptions) {
	cmd.Flags().StringVar(&opts.Job, "job", "", "Job declaration path (yaml or json)")
	cmd.Flags().StringSliceVar(&opts.Catalogs, "catalog", nil, "Additional catalog layers, later files win")
	cmd.Flags().BoolVar(&opts.NoBuiltin, "no-builtin-catalog", false, "Do not load the embedded catalog")
	cmd.Flags().StringVar(&opts.UnknownComponent, "unknown-component", string(types.UnknownComponentPassthrough), "Unknown component types: passthrough or reject")
	cmd.Flags().StringVar(&opts.UnknownField, "unknown-field", string(types.SeverityWarning), "Severity of unrecognized keys: warning or error")
	cmd.Flags().BoolVar(&opts.StrictTopology, "strict-topology", false, "Treat a party id under several roles as an error")
	cmd.Flags().BoolVar(&opts.StrictMerge, "strict-merge", false, "Reject overrides that change a value between object and non-object")
	cmd.Flags().BoolVar(&opts.ApplyDefaults, "apply-defaults", false, "Fill catalog defaults for unset keys")
	cmd.Flags().StringSliceVar(&opts.Tiers, "tiers", nil, "Merge tier order (common,role,party)")
	cmd.Flags().StringVar(&opts.PlatformVersion, "platform-version", "", "Target platform version (PEP 440)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "Concurrent merge/validate tasks (0 = GOMAXPROCS)")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")

	_ = viper.BindPFlag("job", cmd.Flags().Lookup("job"))
	_ = viper.BindPFlag("catalogs", cmd.Flags().Lookup("catalog"))
	_ = viper.BindPFlag("no_builtin_catalog", cmd.Flags().Lookup("no-builtin-catalog"))
	_ = viper.BindPFlag("unknown_component", cmd.Flags().Lookup("unknown-component"))
	_ = viper.BindPFlag("unknown_field", cmd.Flags().Lookup("unknown-field"))
	_ = viper.BindPFlag("strict_topology", cmd.Flags().Lookup("strict-topology"))
	_ = viper.BindPFlag("strict_merge", cmd.Flags().Lookup("strict-merge"))
	_ = viper.BindPFlag("apply_defaults", cmd.Flags().Lookup("apply-defaults"))
	_ = viper.BindPFlag("tiers", cmd.Flags().Lookup("tiers"))
	_ = viper.BindPFlag("platform_version", cmd.Flags().Lookup("platform-version"))
	_ = viper.BindPFlag("workers", cmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("metrics_file", cmd.Flags().Lookup("metrics-file"))
}

func buildValidateRequest(cmd *cobra.Command, opts resolutionOptions) (app.ValidateRequest, error) {
	policy, err := buildPolicy(cmd, opts)
	if err != nil {
		return app.ValidateRequest{}, err
	}
	return app.ValidateRequest{
		JobPath:     resolveString(cmd, opts.Job, "job", "job"),
		Catalog:     buildCatalogOptions(cmd, opts.Catalogs, opts.NoBuiltin),
		Policy:      policy,
		MetricsFile: resolveString(cmd, opts.MetricsFile, "metrics_file", "metrics-file"),
	}, nil
}

func buildCatalogOptions(cmd *cobra.Command, catalogs []string, noBuiltin bool) app.CatalogOptions {
	return app.CatalogOptions{
		Paths:     resolveStrings(cmd, catalogs, "catalogs", "catalog"),
		NoBuiltin: resolveBool(cmd, noBuiltin, "no_builtin_catalog", "no-builtin-catalog"),
	}
}

func buildPolicy(cmd *cobra.Command, opts resolutionOptions) (policies.ResolutionPolicy, error) {
	policy := policies.DefaultResolutionPolicy()
	if value := resolveString(cmd, opts.UnknownComponent, "unknown_component", "unknown-component"); value != "" {
		policy.UnknownComponent = types.UnknownComponentPolicy(strings.ToLower(value))
	}
	if value := resolveString(cmd, opts.UnknownField, "unknown_field", "unknown-field"); value != "" {
		policy.UnknownField = types.Severity(strings.ToLower(value))
	}
	policy.StrictTopology = resolveBool(cmd, opts.StrictTopology, "strict_topology", "strict-topology")
	policy.StrictObjectMerge = resolveBool(cmd, opts.StrictMerge, "strict_merge", "strict-merge")
	policy.ApplyDefaults = resolveBool(cmd, opts.ApplyDefaults, "apply_defaults", "apply-defaults")
	tiers, err := policies.ParseTiers(resolveStrings(cmd, opts.Tiers, "tiers", "tiers"))
	if err != nil {
		return policies.ResolutionPolicy{}, err
	}
	policy.Tiers = tiers
	policy.PlatformVersion = resolveString(cmd, opts.PlatformVersion, "platform_version", "platform-version")
	policy.Workers = resolveInt(cmd, opts.Workers, "workers", "workers")
	if err := policy.Validate(); err != nil {
		return policies.ResolutionPolicy{}, err
	}
	return policy, nil
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return value
}

func resolveStrings(cmd *cobra.Command, values []string, key string, flagName string) []string {
	if cmd == nil {
		if len(values) > 0 {
			return values
		}
		return viper.GetStringSlice(key)
	}
	if flagChanged(cmd, flagName) {
		return values
	}
	return viper.GetStringSlice(key)
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}

func resolveInt(cmd *cobra.Command, value int, key string, flagName string) int {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetInt(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
