package types

// FieldSpec describes one recognized parameter key.
//
// Numeric bounds apply to integer and float kinds. Sentinels are literal
// values accepted regardless of bounds, which is how "positive integer or
// -1 for everything" fields are expressed. AnyOf lists alternative specs;
// a value is valid when it satisfies at least one of them.
type FieldSpec struct {
	Kind        FieldKind `yaml:"kind"`
	Description string    `yaml:"description,omitempty"`

	// Enum lists the accepted literals for enum kinds. With EnumFold the
	// comparison ignores case and the canonical literal is written to the
	// resolved output.
	Enum     []string `yaml:"enum,omitempty"`
	EnumFold bool     `yaml:"enum_fold,omitempty"`

	Min          *float64 `yaml:"min,omitempty"`
	Max          *float64 `yaml:"max,omitempty"`
	ExclusiveMin bool     `yaml:"exclusive_min,omitempty"`
	ExclusiveMax bool     `yaml:"exclusive_max,omitempty"`

	Sentinels []Value     `yaml:"sentinels,omitempty"`
	AnyOf     []FieldSpec `yaml:"any_of,omitempty"`

	// Fields describes nested keys for object kinds. An object without
	// Fields accepts any keys.
	Fields map[string]FieldSpec `yaml:"fields,omitempty"`

	// Items describes array elements. Nil accepts any element.
	Items *FieldSpec `yaml:"items,omitempty"`

	Default  *Value `yaml:"default,omitempty"`
	Nullable bool   `yaml:"nullable,omitempty"`

	// DeprecatedSince is the PEP 440 platform version from which the
	// field is deprecated; ReplacedBy names its successor.
	DeprecatedSince string `yaml:"deprecated_since,omitempty"`
	ReplacedBy      string `yaml:"replaced_by,omitempty"`
}

// SchemaDescriptor is the catalog entry for one component type.
type SchemaDescriptor struct {
	Component   string `yaml:"-"`
	Description string `yaml:"description,omitempty"`

	// Requires is an optional PEP 440 specifier the platform version must
	// satisfy for the component to be available, e.g. ">=1.7".
	Requires string `yaml:"requires,omitempty"`

	Fields map[string]FieldSpec `yaml:"fields"`
}

// CatalogFile is the top-level structure of a catalog yaml file.
type CatalogFile struct {
	CatalogVersion string                      `yaml:"catalog_version"`
	Components     map[string]SchemaDescriptor `yaml:"components"`
}

// JobParametersComponent is the reserved catalog entry that validates
// resolved job-level parameters.
const JobParametersComponent = "job_parameters"
