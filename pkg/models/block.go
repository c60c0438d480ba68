package models

// BlockType identifies the variant of a workflow block.
type BlockType string

const (
	BlockTypeTask             BlockType = "task"
	BlockTypeNavigation       BlockType = "navigation"
	BlockTypeAction           BlockType = "action"
	BlockTypeValidation       BlockType = "validation"
	BlockTypeHTTPRequest      BlockType = "http_request"
	BlockTypeFileParser       BlockType = "file_parser"
	BlockTypeUpload           BlockType = "upload"
	BlockTypeSendEmail        BlockType = "send_email"
	BlockTypeHumanInteraction BlockType = "human_interaction"
	BlockTypeLoop             BlockType = "loop"
	BlockTypeCode             BlockType = "code"
	BlockTypePrintPage        BlockType = "print_page"
)

// AllBlockTypes lists every known block variant in palette order.
var AllBlockTypes = []BlockType{
	BlockTypeTask,
	BlockTypeNavigation,
	BlockTypeAction,
	BlockTypeValidation,
	BlockTypeHTTPRequest,
	BlockTypeFileParser,
	BlockTypeUpload,
	BlockTypeSendEmail,
	BlockTypeHumanInteraction,
	BlockTypeLoop,
	BlockTypeCode,
	BlockTypePrintPage,
}

// Block is one step in a workflow graph. Each variant carries only its own
// free-text fields; the interface exposes what the reference-consistency
// machinery needs without knowing the variant.
//
// TextFields and ParameterKeys expose the two places a parameter key can
// appear: embedded as an inline {{ key }} reference in a free-text field, or
// listed in the block's structured parameter-key list. WithTextFields and
// WithParameterKeys return a modified copy so that untouched blocks keep
// their identity, which lets consumers skip re-rendering or re-saving
// unchanged blocks.
type Block interface {
	BlockID() string
	BlockLabel() string
	Type() BlockType

	// TextFields returns the block's free-text fields in a fixed order.
	TextFields() []string
	// WithTextFields returns a copy with the free-text fields replaced, in
	// the same order TextFields returns them.
	WithTextFields(fields []string) Block

	// ParameterKeys returns the parameter keys bound to this block, or nil
	// when the block type does not carry a key list.
	ParameterKeys() []string
	// WithParameterKeys returns a copy with the key list replaced. Block
	// types without a key list return the receiver unchanged.
	WithParameterKeys(keys []string) Block
}

// BlockBase carries the fields every block variant shares.
type BlockBase struct {
	ID                string    `json:"id"         validate:"required"`
	BlockType         BlockType `json:"block_type" validate:"required"`
	Label             string    `json:"label"      validate:"required,min=1"`
	ContinueOnFailure bool      `json:"continue_on_failure,omitempty"`
}

func (b BlockBase) BlockID() string { return b.ID }
func (b BlockBase) BlockLabel() string { return b.Label }
func (b BlockBase) Type() BlockType { return b.BlockType }

// TaskBlock runs a self-contained browser task: navigate, act, extract.
type TaskBlock struct {
	BlockBase

	URL                string   `json:"url,omitempty"`
	NavigationGoal     string   `json:"navigation_goal,omitempty"`
	DataExtractionGoal string   `json:"data_extraction_goal,omitempty"`
	Keys               []string `json:"parameter_keys"`
}

func (b *TaskBlock) TextFields() []string {
	return []string{b.URL, b.NavigationGoal, b.DataExtractionGoal}
}

func (b *TaskBlock) WithTextFields(fields []string) Block {
	c := *b
	c.URL, c.NavigationGoal, c.DataExtractionGoal = fields[0], fields[1], fields[2]

	return &c
}

func (b *TaskBlock) ParameterKeys() []string { return b.Keys }

func (b *TaskBlock) WithParameterKeys(keys []string) Block {
	c := *b
	c.Keys = keys

	return &c
}

// NavigationBlock drives the browser to a target state without extraction.
type NavigationBlock struct {
	BlockBase

	URL            string   `json:"url,omitempty"`
	NavigationGoal string   `json:"navigation_goal,omitempty"`
	Keys           []string `json:"parameter_keys"`
}

func (b *NavigationBlock) TextFields() []string { return []string{b.URL, b.NavigationGoal} }

func (b *NavigationBlock) WithTextFields(fields []string) Block {
	c := *b
	c.URL, c.NavigationGoal = fields[0], fields[1]

	return &c
}

func (b *NavigationBlock) ParameterKeys() []string { return b.Keys }

func (b *NavigationBlock) WithParameterKeys(keys []string) Block {
	c := *b
	c.Keys = keys

	return &c
}

// ActionBlock performs a single instructed interaction on the current page.
type ActionBlock struct {
	BlockBase

	URL         string   `json:"url,omitempty"`
	Instruction string   `json:"instruction,omitempty"`
	Keys        []string `json:"parameter_keys"`
}

func (b *ActionBlock) TextFields() []string { return []string{b.URL, b.Instruction} }

func (b *ActionBlock) WithTextFields(fields []string) Block {
	c := *b
	c.URL, c.Instruction = fields[0], fields[1]

	return &c
}

func (b *ActionBlock) ParameterKeys() []string { return b.Keys }

func (b *ActionBlock) WithParameterKeys(keys []string) Block {
	c := *b
	c.Keys = keys

	return &c
}

// ValidationBlock decides whether the run may continue or must terminate.
type ValidationBlock struct {
	BlockBase

	CompleteCriterion  string   `json:"complete_criterion,omitempty"`
	TerminateCriterion string   `json:"terminate_criterion,omitempty"`
	Keys               []string `json:"parameter_keys"`
}

func (b *ValidationBlock) TextFields() []string {
	return []string{b.CompleteCriterion, b.TerminateCriterion}
}

func (b *ValidationBlock) WithTextFields(fields []string) Block {
	c := *b
	c.CompleteCriterion, c.TerminateCriterion = fields[0], fields[1]

	return &c
}

func (b *ValidationBlock) ParameterKeys() []string { return b.Keys }

func (b *ValidationBlock) WithParameterKeys(keys []string) Block {
	c := *b
	c.Keys = keys

	return &c
}

// HTTPRequestBlock issues an HTTP request from within the workflow.
type HTTPRequestBlock struct {
	BlockBase

	Method string            `json:"method,omitempty"`
	URL    string            `json:"url,omitempty"`
	Body   string            `json:"body,omitempty"`
	Header map[string]string `json:"header,omitempty"`
	Keys   []string          `json:"parameter_keys"`
}

func (b *HTTPRequestBlock) TextFields() []string { return []string{b.URL, b.Body} }

func (b *HTTPRequestBlock) WithTextFields(fields []string) Block {
	c := *b
	c.URL, c.Body = fields[0], fields[1]

	return &c
}

func (b *HTTPRequestBlock) ParameterKeys() []string { return b.Keys }

func (b *HTTPRequestBlock) WithParameterKeys(keys []string) Block {
	c := *b
	c.Keys = keys

	return &c
}

// CodeBlock evaluates a user-provided script against the run context.
type CodeBlock struct {
	BlockBase

	Code string   `json:"code,omitempty"`
	Keys []string `json:"parameter_keys"`
}

func (b *CodeBlock) TextFields() []string { return []string{b.Code} }

func (b *CodeBlock) WithTextFields(fields []string) Block {
	c := *b
	c.Code = fields[0]

	return &c
}

func (b *CodeBlock) ParameterKeys() []string { return b.Keys }

func (b *CodeBlock) WithParameterKeys(keys []string) Block {
	c := *b
	c.Keys = keys

	return &c
}

// FileParserBlock downloads and parses a file for later blocks.
type FileParserBlock struct {
	BlockBase

	FileURL string `json:"file_url,omitempty"`
}

func (b *FileParserBlock) TextFields() []string { return []string{b.FileURL} }

func (b *FileParserBlock) WithTextFields(fields []string) Block {
	c := *b
	c.FileURL = fields[0]

	return &c
}

func (b *FileParserBlock) ParameterKeys() []string { return nil }
func (b *FileParserBlock) WithParameterKeys([]string) Block { return b }

// UploadBlock pushes run artifacts to a destination.
type UploadBlock struct {
	BlockBase

	Path string `json:"path,omitempty"`
}

func (b *UploadBlock) TextFields() []string { return []string{b.Path} }

func (b *UploadBlock) WithTextFields(fields []string) Block {
	c := *b
	c.Path = fields[0]

	return &c
}

func (b *UploadBlock) ParameterKeys() []string { return nil }
func (b *UploadBlock) WithParameterKeys([]string) Block { return b }

// SendEmailBlock emails run results to a list of recipients.
type SendEmailBlock struct {
	BlockBase

	Recipients string `json:"recipients,omitempty"`
	Subject    string `json:"subject,omitempty"`
	Body       string `json:"body,omitempty"`
}

func (b *SendEmailBlock) TextFields() []string { return []string{b.Recipients, b.Subject, b.Body} }

func (b *SendEmailBlock) WithTextFields(fields []string) Block {
	c := *b
	c.Recipients, c.Subject, c.Body = fields[0], fields[1], fields[2]

	return &c
}

func (b *SendEmailBlock) ParameterKeys() []string { return nil }
func (b *SendEmailBlock) WithParameterKeys([]string) Block { return b }

// HumanInteractionBlock pauses the run for a human decision.
type HumanInteractionBlock struct {
	BlockBase

	Instructions string `json:"instructions,omitempty"`
}

func (b *HumanInteractionBlock) TextFields() []string { return []string{b.Instructions} }

func (b *HumanInteractionBlock) WithTextFields(fields []string) Block {
	c := *b
	c.Instructions = fields[0]

	return &c
}

func (b *HumanInteractionBlock) ParameterKeys() []string { return nil }
func (b *HumanInteractionBlock) WithParameterKeys([]string) Block { return b }

// LoopBlock repeats the blocks it points at (via edges) over a value list.
type LoopBlock struct {
	BlockBase

	LoopValue string `json:"loop_value,omitempty"`
}

func (b *LoopBlock) TextFields() []string { return []string{b.LoopValue} }

func (b *LoopBlock) WithTextFields(fields []string) Block {
	c := *b
	c.LoopValue = fields[0]

	return &c
}

func (b *LoopBlock) ParameterKeys() []string { return nil }
func (b *LoopBlock) WithParameterKeys([]string) Block { return b }

// PrintPageBlock captures the current page as a PDF. It carries no free-text
// fields, so reference propagation always passes it through untouched.
type PrintPageBlock struct {
	BlockBase
}

func (b *PrintPageBlock) TextFields() []string { return nil }
func (b *PrintPageBlock) WithTextFields([]string) Block { return b }
func (b *PrintPageBlock) ParameterKeys() []string { return nil }
func (b *PrintPageBlock) WithParameterKeys([]string) Block { return b }
