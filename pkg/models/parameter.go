package models

// ParameterType identifies the variant of a workflow parameter.
type ParameterType string

const (
	ParameterTypeWorkflowInput  ParameterType = "workflow_input"
	ParameterTypeCredential     ParameterType = "credential"
	ParameterTypeContext        ParameterType = "context"
	ParameterTypeSecret         ParameterType = "secret"
	ParameterTypeCreditCardData ParameterType = "credit_card_data"
)

// WorkflowInputDataType constrains the value supplied for a workflow input.
type WorkflowInputDataType string

const (
	WorkflowInputTypeString  WorkflowInputDataType = "string"
	WorkflowInputTypeInteger WorkflowInputDataType = "integer"
	WorkflowInputTypeFloat   WorkflowInputDataType = "float"
	WorkflowInputTypeBoolean WorkflowInputDataType = "boolean"
	WorkflowInputTypeFileURL WorkflowInputDataType = "file_url"
	WorkflowInputTypeJSON    WorkflowInputDataType = "json"
)

// Parameter is a named placeholder a workflow run can be supplied with. The
// key is the stable identifier used by inline {{ key }} references and block
// parameter-key lists; it changes only through an explicit rename, which
// WithKey supports by returning a renamed copy.
type Parameter interface {
	ParameterKey() string
	Type() ParameterType
	WithKey(key string) Parameter
}

// ParameterBase carries the fields every parameter variant shares.
type ParameterBase struct {
	Key           string        `json:"key"            validate:"required,min=1"`
	ParameterType ParameterType `json:"parameter_type" validate:"required"`
	Description   string        `json:"description,omitempty"`
}

func (p ParameterBase) ParameterKey() string { return p.Key }
func (p ParameterBase) Type() ParameterType  { return p.ParameterType }

// WorkflowInputParameter is supplied by the caller when a run starts.
type WorkflowInputParameter struct {
	ParameterBase

	DataType     WorkflowInputDataType `json:"data_type" validate:"required"`
	DefaultValue any                   `json:"default_value,omitempty"`
}

func (p *WorkflowInputParameter) WithKey(key string) Parameter {
	c := *p
	c.Key = key

	return &c
}

// CredentialParameter resolves to a stored credential at run time.
type CredentialParameter struct {
	ParameterBase

	CredentialID string `json:"credential_id" validate:"required"`
}

func (p *CredentialParameter) WithKey(key string) Parameter {
	c := *p
	c.Key = key

	return &c
}

// ContextParameter derives its value from another parameter at run time.
// SourceParameterKey is a weak reference by name; the rename operation that
// changes the source's key must rewrite it in the same pass.
type ContextParameter struct {
	ParameterBase

	SourceParameterKey string `json:"source_parameter_key" validate:"required"`
}

func (p *ContextParameter) WithKey(key string) Parameter {
	c := *p
	c.Key = key

	return &c
}

// SecretParameter resolves to a vault secret at run time.
type SecretParameter struct {
	ParameterBase

	SecretID string `json:"secret_id" validate:"required"`
}

func (p *SecretParameter) WithKey(key string) Parameter {
	c := *p
	c.Key = key

	return &c
}

// CreditCardDataParameter resolves to stored card data at run time.
type CreditCardDataParameter struct {
	ParameterBase

	CredentialID string `json:"credential_id" validate:"required"`
}

func (p *CreditCardDataParameter) WithKey(key string) Parameter {
	c := *p
	c.Key = key

	return &c
}
