package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Format(t *testing.T) {
	err := ParseFailed("gibberish")
	assert.Equal(t, `[PARSE_FAILED] expression not recognized (input "gibberish")`, err.Error())

	wrapped := InvalidTimezone("Mars/Base", fmt.Errorf("unknown time zone Mars/Base"))
	assert.Contains(t, wrapped.Error(), "[INVALID_TIMEZONE]")
	assert.Contains(t, wrapped.Error(), "unknown time zone Mars/Base")
}

func TestError_CarriesHint(t *testing.T) {
	codes := []ErrorCode{
		ErrCodeUnknownField, ErrCodeUnterminatedLiteral, ErrCodeInvalidInstant,
		ErrCodeMissingLocaleEntry, ErrCodeParseFailed, ErrCodeParseDepthExceeded,
		ErrCodeInputTooLong, ErrCodeMissingTimezoneContext, ErrCodeInvalidTimezone,
		ErrCodeInvalidConfig,
	}
	for _, code := range codes {
		t.Run(string(code), func(t *testing.T) {
			e := New(code, "msg", "")
			assert.NotEmpty(t, e.Hint)
			assert.NotEqual(t, KindUnknown, code.Kind())
		})
	}
}

func TestTruncate(t *testing.T) {
	short := "in 3 days"
	assert.Equal(t, short, Truncate(short))

	long := strings.Repeat("x", 600)
	got := Truncate(long)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.Equal(t, MaxDisplayInput+1, len([]rune(got)))

	e := InputTooLong(500, 600, long)
	assert.Equal(t, got, e.Input)
	assert.Equal(t, 500, e.Context["max_length"])
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("render: %w", MissingLocaleEntry("fr", "minutes"))

	assert.True(t, IsCode(err, ErrCodeMissingLocaleEntry))
	assert.False(t, IsCode(err, ErrCodeParseFailed))
	assert.False(t, IsCode(stderrors.New("plain"), ErrCodeParseFailed))
	assert.Equal(t, KindRender, KindOf(err))
	assert.Equal(t, KindUnknown, KindOf(stderrors.New("plain")))
	assert.Equal(t, ErrCodeInvalidConfig, GetCodeFromError(stderrors.New("plain"), ErrCodeInvalidConfig))
}

func TestErrorsIs_MatchesByCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", ParseDepthExceeded(5, "a b c"))
	require.True(t, stderrors.Is(err, &Error{Code: ErrCodeParseDepthExceeded}))
	assert.False(t, stderrors.Is(err, &Error{Code: ErrCodeInputTooLong}))
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("boom")
	e := Wrap(cause, ErrCodeInvalidConfig, "bad table", "")
	assert.Same(t, cause, stderrors.Unwrap(e))
}
