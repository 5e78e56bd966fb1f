package types

type FieldKind string

const (
	FieldKindBoolean FieldKind = "boolean"
	FieldKindInteger FieldKind = "integer"
	FieldKindFloat   FieldKind = "float"
	FieldKindString  FieldKind = "string"
	FieldKindEnum    FieldKind = "enum"
	FieldKindObject  FieldKind = "object"
	FieldKindArray   FieldKind = "array"
	FieldKindAny     FieldKind = "any"
)

type Stage string

const (
	StageDeclaration Stage = "declaration"
	StageTopology    Stage = "topology"
	StageMerge       Stage = "merge"
	StageSchema      Stage = "schema"
	StageValidation  Stage = "validation"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

type DiagnosticCode string

const (
	CodeDeclarationError       DiagnosticCode = "DeclarationError"
	CodeTopologyError          DiagnosticCode = "TopologyError"
	CodeMergeError             DiagnosticCode = "MergeError"
	CodeSchemaUnknownComponent DiagnosticCode = "SchemaUnknownComponent"
	CodeUnsupportedComponent   DiagnosticCode = "UnsupportedComponent"
	CodeFieldValidationError   DiagnosticCode = "FieldValidationError"
	CodeUnknownField           DiagnosticCode = "UnknownField"
	CodeDeprecatedField        DiagnosticCode = "DeprecatedField"
)

// UnknownComponentPolicy decides what happens to components whose type is
// missing from the catalog.
type UnknownComponentPolicy string

const (
	UnknownComponentPassthrough UnknownComponentPolicy = "passthrough"
	UnknownComponentReject      UnknownComponentPolicy = "reject"
)

// Tier is one layer of the override stack.
type Tier string

const (
	TierCommon Tier = "common"
	TierRole   Tier = "role"
	TierParty  Tier = "party"
)

type OutputFormat string

const (
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatJSON OutputFormat = "json"
)
