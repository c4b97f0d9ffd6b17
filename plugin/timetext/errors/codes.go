// Package errors defines the failure taxonomy shared by the rendering and parsing pipelines.
package errors

import (
	stderrors "errors"
	"fmt"
	"unicode/utf8"
)

// ErrorCode represents a specific failure type.
type ErrorCode string

const (
	// ErrCodeUnknownField indicates a pattern referenced a field that does not exist.
	ErrCodeUnknownField ErrorCode = "UNKNOWN_FIELD"
	// ErrCodeUnterminatedLiteral indicates a `[` without a closing `]` in a letter pattern.
	ErrCodeUnterminatedLiteral ErrorCode = "UNTERMINATED_LITERAL"
	// ErrCodeInvalidInstant indicates a time value outside the renderable range.
	ErrCodeInvalidInstant ErrorCode = "INVALID_INSTANT"
	// ErrCodeMissingLocaleEntry indicates the active locale cannot phrase a bucket.
	ErrCodeMissingLocaleEntry ErrorCode = "MISSING_LOCALE_ENTRY"
	// ErrCodeParseFailed indicates the expression was not recognized.
	ErrCodeParseFailed ErrorCode = "PARSE_FAILED"
	// ErrCodeParseDepthExceeded indicates too many nested clauses.
	ErrCodeParseDepthExceeded ErrorCode = "PARSE_DEPTH_EXCEEDED"
	// ErrCodeInputTooLong indicates the expression exceeded the length limit.
	ErrCodeInputTooLong ErrorCode = "INPUT_TOO_LONG"
	// ErrCodeMissingTimezoneContext indicates a zone-sensitive call had no zone.
	ErrCodeMissingTimezoneContext ErrorCode = "MISSING_TIMEZONE_CONTEXT"
	// ErrCodeInvalidTimezone indicates a zone id that could not be loaded.
	ErrCodeInvalidTimezone ErrorCode = "INVALID_TIMEZONE"
	// ErrCodeInvalidConfig indicates an inconsistent configuration snapshot.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Kind groups codes by the stage that raises them.
type Kind string

const (
	KindCompile Kind = "compile"
	KindRender  Kind = "render"
	KindParse   Kind = "parse"
	KindZone    Kind = "zone"
	KindConfig  Kind = "config"
	KindUnknown Kind = "unknown"
)

// Kind returns the stage a code belongs to.
func (c ErrorCode) Kind() Kind {
	switch c {
	case ErrCodeUnknownField, ErrCodeUnterminatedLiteral:
		return KindCompile
	case ErrCodeInvalidInstant, ErrCodeMissingLocaleEntry:
		return KindRender
	case ErrCodeParseFailed, ErrCodeParseDepthExceeded, ErrCodeInputTooLong:
		return KindParse
	case ErrCodeMissingTimezoneContext, ErrCodeInvalidTimezone:
		return KindZone
	case ErrCodeInvalidConfig:
		return KindConfig
	default:
		return KindUnknown
	}
}

// MaxDisplayInput is the number of runes of offending input kept on an error.
const MaxDisplayInput = 64

// Error is the structured error returned by every timetext operation.
type Error struct {
	Code    ErrorCode
	Message string
	// Input is the offending input, truncated for display.
	Input   string
	Hint    string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Input != "" {
		msg += fmt.Sprintf(" (input %q)", e.Input)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithContext adds context to the error.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithHint replaces the remediation hint.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// GetCode returns the error code.
func (e *Error) GetCode() ErrorCode {
	return e.Code
}

// Truncate shortens s to MaxDisplayInput runes, marking the cut with an ellipsis.
func Truncate(s string) string {
	if utf8.RuneCountInString(s) <= MaxDisplayInput {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxDisplayInput]) + "…"
}

// New creates an error with the given code, message and offending input.
func New(code ErrorCode, msg, input string) *Error {
	return &Error{Code: code, Message: msg, Input: Truncate(input), Hint: defaultHints[code]}
}

// Wrap wraps an existing error with a code and message.
func Wrap(cause error, code ErrorCode, msg, input string) *Error {
	e := New(code, msg, input)
	e.Cause = cause
	return e
}

var defaultHints = map[ErrorCode]string{
	ErrCodeUnknownField:           "use one of the documented field names or escape the text",
	ErrCodeUnterminatedLiteral:    "close the literal with ']' or remove the '['",
	ErrCodeInvalidInstant:         "construct the value from an instant between years 1 and 9999",
	ErrCodeMissingLocaleEntry:     "add the phrase to the locale table or enable a fallback locale",
	ErrCodeParseFailed:            "try an expression such as 'tomorrow at 3pm' or 'in 3 days'",
	ErrCodeParseDepthExceeded:     "split the expression into fewer offset or boundary clauses",
	ErrCodeInputTooLong:           "shorten the expression",
	ErrCodeMissingTimezoneContext: "pass a zone id or configure a default timezone",
	ErrCodeInvalidTimezone:        "use an IANA zone id such as 'America/New_York'",
	ErrCodeInvalidConfig:          "fix the configuration value named in the message",
}

// Convenience constructors.

// UnknownField creates a compile error for an unrecognized field name.
func UnknownField(name, pattern string) *Error {
	return New(ErrCodeUnknownField, fmt.Sprintf("unknown field %q", name), pattern).WithContext("field", name)
}

// UnterminatedLiteral creates a compile error for an unclosed literal at offset pos.
func UnterminatedLiteral(pattern string, pos int) *Error {
	return New(ErrCodeUnterminatedLiteral, fmt.Sprintf("unterminated literal starting at offset %d", pos), pattern).
		WithContext("offset", pos)
}

// InvalidInstant creates a render error for an out-of-range instant.
func InvalidInstant(millis int64) *Error {
	return New(ErrCodeInvalidInstant, fmt.Sprintf("instant %d ms is outside the renderable range", millis), "")
}

// MissingLocaleEntry creates a render error for an entry the locale cannot provide.
func MissingLocaleEntry(locale, entry string) *Error {
	return New(ErrCodeMissingLocaleEntry, fmt.Sprintf("locale %q has no entry %q", locale, entry), entry).
		WithContext("locale", locale)
}

// ParseFailed creates a parse error capturing the unmatched substring.
func ParseFailed(unmatched string) *Error {
	return New(ErrCodeParseFailed, "expression not recognized", unmatched)
}

// ParseDepthExceeded creates a parse error for too many nested clauses.
func ParseDepthExceeded(max int, input string) *Error {
	return New(ErrCodeParseDepthExceeded, fmt.Sprintf("expression nests more than %d clauses", max), input).
		WithContext("max_depth", max)
}

// InputTooLong creates a parse error for oversized input.
func InputTooLong(max, got int, input string) *Error {
	return New(ErrCodeInputTooLong, fmt.Sprintf("input has %d characters, limit is %d", got, max), input).
		WithContextMap(map[string]interface{}{"max_length": max, "length": got})
}

// MissingTimezoneContext creates a zone error for a call without zone context.
func MissingTimezoneContext(op string) *Error {
	return New(ErrCodeMissingTimezoneContext, op+" requires a timezone", "")
}

// InvalidTimezone creates a zone error for an unloadable zone id.
func InvalidTimezone(zone string, cause error) *Error {
	return Wrap(cause, ErrCodeInvalidTimezone, "invalid timezone", zone)
}

// InvalidConfig creates a configuration error.
func InvalidConfig(msg string) *Error {
	return New(ErrCodeInvalidConfig, msg, "")
}

// WithContextMap adds multiple context values to the error.
func (e *Error) WithContextMap(ctx map[string]interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	for k, v := range ctx {
		e.Context[k] = v
	}
	return e
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	if e, ok := As(err); ok {
		return e.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not an *Error.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	if e, ok := As(err); ok {
		return e.Code
	}
	return defaultCode
}

// KindOf returns the stage of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Code.Kind()
	}
	return KindUnknown
}
