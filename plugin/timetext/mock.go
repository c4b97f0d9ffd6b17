package timetext

import (
	"sync"

	"github.com/hrygo/timetext/plugin/timetext/natural"
	"github.com/hrygo/timetext/plugin/timetext/value"
)

// MockService is a canned Service for testing callers.
// Every method returns Text / Value / Range unless Err is set.
type MockService struct {
	Text  string
	Value value.TimeValue
	Range natural.Range
	// NotRecognized makes ParseNatural report ok == false.
	NotRecognized bool
	Err           error

	mu    sync.Mutex
	calls []string
}

// NewMockService creates a new MockService.
func NewMockService() *MockService {
	return &MockService{}
}

// Calls returns the method names invoked so far.
func (m *MockService) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockService) record(name string) {
	m.mu.Lock()
	m.calls = append(m.calls, name)
	m.mu.Unlock()
}

func (m *MockService) text(name string) (string, error) {
	m.record(name)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Text, nil
}

func (m *MockService) Format(value.TimeValue, string) (string, error) {
	return m.text("Format")
}

func (m *MockService) FormatPreset(value.TimeValue, string) (string, error) {
	return m.text("FormatPreset")
}

func (m *MockService) Relative(value.TimeValue, *value.TimeValue) (string, error) {
	return m.text("Relative")
}

func (m *MockService) Smart(value.TimeValue, SmartOptions) (string, error) {
	return m.text("Smart")
}

func (m *MockService) ParseNatural(string, ParseOptions) (value.TimeValue, bool, error) {
	m.record("ParseNatural")
	if m.Err != nil {
		return value.TimeValue{}, false, m.Err
	}
	if m.NotRecognized {
		return value.TimeValue{}, false, nil
	}
	return m.Value, true, nil
}

func (m *MockService) ParseRange(string, ParseOptions) (natural.Range, error) {
	m.record("ParseRange")
	if m.Err != nil {
		return natural.Range{}, m.Err
	}
	return m.Range, nil
}

// Ensure MockService implements Service
var _ Service = (*MockService)(nil)
