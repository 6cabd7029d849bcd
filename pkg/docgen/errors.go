package docgen

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// TemplateError reports a structural problem in a template, such as an
// unbalanced FOR block or a bracket close without a matching open.
type TemplateError struct {
	Message string
	Part    string // archive member, e.g. word/document.xml
	Command string // command text without braces
}

func (e *TemplateError) Error() string {
	var where []string
	if e.Part != "" {
		where = append(where, "in "+e.Part)
	}
	if e.Command != "" {
		where = append(where, "at {"+e.Command+"}")
	}
	if len(where) == 0 {
		return "template error: " + e.Message
	}
	return "template error " + strings.Join(where, " ") + ": " + e.Message
}

func NewTemplateError(message, part, command string) error {
	return &TemplateError{Message: message, Part: part, Command: command}
}

// ParseError reports a command that cannot be parsed.
type ParseError struct {
	Message  string
	Token    string
	Position int
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("parse error at position %d: %s", e.Position, e.Message)
	}
	return fmt.Sprintf("parse error at position %d near '%s': %s", e.Position, e.Token, e.Message)
}

func NewParseError(message, token string, position int) error {
	return &ParseError{Message: message, Token: token, Position: position}
}

// EvaluationError reports a script or expression that failed to run.
type EvaluationError struct {
	Expression string
	Cause      error
}

func (e *EvaluationError) Error() string {
	msg := fmt.Sprintf("evaluation error for expression '%s'", e.Expression)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *EvaluationError) Unwrap() error { return e.Cause }

func NewEvaluationError(expression string, cause error) error {
	return &EvaluationError{Expression: expression, Cause: cause}
}

// DocumentError reports a DOCX or PDF that could not be read or written.
type DocumentError struct {
	Operation string
	Path      string
	Cause     error
}

func (e *DocumentError) Error() string {
	msg := "document error during " + e.Operation
	if e.Path != "" {
		msg += " of '" + e.Path + "'"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *DocumentError) Unwrap() error { return e.Cause }

func NewDocumentError(operation, path string, cause error) error {
	return &DocumentError{Operation: operation, Path: path, Cause: cause}
}

// ValidationIssue is one rejected input field.
type ValidationIssue struct {
	Field   string
	Value   string
	Message string
}

// ValidationError collects rejected inputs: an empty PDF, an unsupported
// stamp image, a catalog entry without a key, an invalid config value.
type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	switch len(e.Issues) {
	case 0:
		return "validation error"
	case 1:
		return fmt.Sprintf("validation error: %s - %s", e.Issues[0].Field, e.Issues[0].Message)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d validation issues:", len(e.Issues))
	for _, issue := range e.Issues {
		fmt.Fprintf(&b, "\n  %s: %s", issue.Field, issue.Message)
	}
	return b.String()
}

func (e *ValidationError) add(field, value, message string) {
	e.Issues = append(e.Issues, ValidationIssue{Field: field, Value: value, Message: message})
}

// err returns e, or nil when nothing was added.
func (e *ValidationError) err() error {
	if len(e.Issues) == 0 {
		return nil
	}
	return e
}

func NewValidationError(field, value, message string) error {
	return &ValidationError{Issues: []ValidationIssue{{Field: field, Value: value, Message: message}}}
}

// ContextError names the operation that failed and the inputs it was given.
type ContextError struct {
	Operation string
	Context   map[string]interface{}
	Cause     error
}

func (e *ContextError) Error() string {
	if len(e.Context) == 0 {
		return fmt.Sprintf("%s: %v", e.Operation, e.Cause)
	}
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%s=%v", k, e.Context[k])
	}
	return fmt.Sprintf("%s [%s]: %v", e.Operation, strings.Join(pairs, ", "), e.Cause)
}

func (e *ContextError) Unwrap() error { return e.Cause }

// WithContext wraps err with the operation and its inputs. A nil err stays nil.
func WithContext(err error, operation string, context map[string]interface{}) error {
	if err == nil {
		return nil
	}
	return &ContextError{Operation: operation, Context: context, Cause: err}
}

// RecoverError turns a recovered panic value into an error.
func RecoverError(r interface{}) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic recovered: %w", err)
	}
	return fmt.Errorf("panic recovered: %v", r)
}

func isErrorOf[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

func IsTemplateError(err error) bool   { return isErrorOf[*TemplateError](err) }
func IsParseError(err error) bool      { return isErrorOf[*ParseError](err) }
func IsEvaluationError(err error) bool { return isErrorOf[*EvaluationError](err) }
func IsDocumentError(err error) bool   { return isErrorOf[*DocumentError](err) }
func IsValidationError(err error) bool { return isErrorOf[*ValidationError](err) }
