package v1

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/timetext/internal/observability"
	"github.com/hrygo/timetext/plugin/timetext"
	terrors "github.com/hrygo/timetext/plugin/timetext/errors"
	"github.com/hrygo/timetext/plugin/timetext/value"
)

// TextResponse is returned by the rendering endpoints.
type TextResponse struct {
	Text string `json:"text"`
}

// InstantResponse describes one instant.
type InstantResponse struct {
	Millis int64  `json:"millis"`
	ISO    string `json:"iso"`
}

// ParseResponse is returned by GET /api/v1/parse.
type ParseResponse struct {
	Recognized bool             `json:"recognized"`
	Value      *InstantResponse `json:"value,omitempty"`
	Start      *InstantResponse `json:"start,omitempty"`
	End        *InstantResponse `json:"end,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Input   string `json:"input,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

func instant(v value.TimeValue) *InstantResponse {
	return &InstantResponse{Millis: v.Millis(), ISO: v.String()}
}

// Format renders a value with a pattern or a named preset.
// GET /api/v1/format?value=...&pattern=... or &preset=...
func (s *APIV1Service) Format(c echo.Context, reqCtx *observability.RequestContext) error {
	v, err := queryValue(c, "value")
	if err != nil {
		return s.fail(c, reqCtx, err)
	}
	pattern, preset := c.QueryParam("pattern"), c.QueryParam("preset")

	var text string
	switch {
	case preset != "":
		text, err = s.Service.FormatPreset(v, preset)
	case pattern != "":
		text, err = s.Service.Format(v, pattern)
	default:
		err = &argumentError{name: "pattern", message: "pattern or preset is required"}
	}
	if err != nil {
		return s.fail(c, reqCtx, err)
	}
	return c.JSON(http.StatusOK, TextResponse{Text: text})
}

// Relative phrases a value against a reference.
// GET /api/v1/relative?value=...&reference=...
func (s *APIV1Service) Relative(c echo.Context, reqCtx *observability.RequestContext) error {
	v, err := queryValue(c, "value")
	if err != nil {
		return s.fail(c, reqCtx, err)
	}
	ref, err := optionalValue(c, "reference")
	if err != nil {
		return s.fail(c, reqCtx, err)
	}
	text, err := s.Service.Relative(v, ref)
	if err != nil {
		return s.fail(c, reqCtx, err)
	}
	return c.JSON(http.StatusOK, TextResponse{Text: text})
}

// Smart renders a value by calendar proximity.
// GET /api/v1/smart?value=...&zone=...&reference=...
func (s *APIV1Service) Smart(c echo.Context, reqCtx *observability.RequestContext) error {
	v, err := queryValue(c, "value")
	if err != nil {
		return s.fail(c, reqCtx, err)
	}
	ref, err := optionalValue(c, "reference")
	if err != nil {
		return s.fail(c, reqCtx, err)
	}
	text, err := s.Service.Smart(v, timetext.SmartOptions{Zone: c.QueryParam("zone"), Reference: ref})
	if err != nil {
		return s.fail(c, reqCtx, err)
	}
	return c.JSON(http.StatusOK, TextResponse{Text: text})
}

// Parse parses a natural-language expression.
// GET /api/v1/parse?text=...&zone=...&reference=...&range=true
func (s *APIV1Service) Parse(c echo.Context, reqCtx *observability.RequestContext) error {
	text := c.QueryParam("text")
	if text == "" {
		return s.fail(c, reqCtx, &argumentError{name: "text", message: "text is required"})
	}
	ref, err := optionalValue(c, "reference")
	if err != nil {
		return s.fail(c, reqCtx, err)
	}
	opts := timetext.ParseOptions{Reference: ref, Zone: c.QueryParam("zone")}
	reqCtx.Debug("parsing expression", slog.Int(observability.LogFieldInputLen, utf8.RuneCountInString(text)))

	if c.QueryParam("range") == "true" {
		r, err := s.Service.ParseRange(text, opts)
		if err != nil {
			return s.fail(c, reqCtx, err)
		}
		return c.JSON(http.StatusOK, ParseResponse{Recognized: true, Start: instant(r.Start), End: instant(r.End)})
	}

	v, ok, err := s.Service.ParseNatural(text, opts)
	if err != nil {
		return s.fail(c, reqCtx, err)
	}
	if !ok {
		return c.JSON(http.StatusOK, ParseResponse{Recognized: false})
	}
	return c.JSON(http.StatusOK, ParseResponse{Recognized: true, Value: instant(v)})
}

// argumentError reports a missing or malformed query parameter.
type argumentError struct {
	name    string
	message string
	cause   error
}

func (e *argumentError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *argumentError) Unwrap() error { return e.cause }

// queryValue reads a required instant parameter as epoch milliseconds or RFC 3339.
func queryValue(c echo.Context, name string) (value.TimeValue, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return value.TimeValue{}, &argumentError{name: name, message: name + " is required"}
	}
	v, err := value.Parse(raw)
	if err != nil {
		return value.TimeValue{}, &argumentError{name: name, message: "invalid " + name, cause: err}
	}
	return v, nil
}

func optionalValue(c echo.Context, name string) (*value.TimeValue, error) {
	if c.QueryParam(name) == "" {
		return nil, nil
	}
	v, err := queryValue(c, name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// statusOf maps an error to an HTTP status.
func statusOf(err error) int {
	var argErr *argumentError
	if stderrors.As(err, &argErr) {
		return http.StatusBadRequest
	}
	code := terrors.GetCodeFromError(err, "")
	switch code.Kind() {
	case terrors.KindParse:
		return http.StatusUnprocessableEntity
	case terrors.KindCompile, terrors.KindZone:
		return http.StatusBadRequest
	case terrors.KindRender:
		if code == terrors.ErrCodeInvalidInstant {
			return http.StatusBadRequest
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// errorBody converts err into the response body. Argument errors carry
// INVALID_ARGUMENT unless they wrap a structured error.
func errorBody(err error) ErrorResponse {
	if e, ok := terrors.As(err); ok {
		return ErrorResponse{Code: string(e.Code), Message: e.Message, Input: e.Input, Hint: e.Hint}
	}
	var argErr *argumentError
	if stderrors.As(err, &argErr) {
		return ErrorResponse{Code: "INVALID_ARGUMENT", Message: argErr.message}
	}
	return ErrorResponse{Code: "INTERNAL", Message: "internal error"}
}

func (s *APIV1Service) fail(c echo.Context, reqCtx *observability.RequestContext, err error) error {
	status := statusOf(err)
	body := errorBody(err)
	s.Metrics.RecordFailure(reqCtx.Operation, body.Code)
	if status >= http.StatusInternalServerError {
		reqCtx.Error("request failed", err, slog.String(observability.LogFieldErrorCode, body.Code))
	} else {
		reqCtx.Debug("request rejected", slog.String(observability.LogFieldErrorCode, body.Code))
	}
	return c.JSON(status, body)
}
