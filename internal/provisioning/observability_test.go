package provisioning

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"

	"github.com/imamik/dkimctl/internal/resource"
)

// MockObserver is a test implementation of Observer that records events.
type MockObserver struct {
	events   []Event
	messages []string
	fields   map[string]string
}

func NewMockObserver() *MockObserver {
	return &MockObserver{
		events:   make([]Event, 0),
		messages: make([]string, 0),
		fields:   make(map[string]string),
	}
}

func (m *MockObserver) Printf(format string, v ...any) {
	m.messages = append(m.messages, fmt.Sprintf(format, v...))
}

func (m *MockObserver) Event(event Event) {
	m.events = append(m.events, event)
}

func (m *MockObserver) Progress(phase string, current, total int) {
	m.Event(Event{
		Type:    EventProgress,
		Phase:   phase,
		Message: fmt.Sprintf("phase %d/%d", current, total),
	})
}

func (m *MockObserver) WithFields(fields map[string]string) Observer {
	newObserver := NewMockObserver()
	for k, v := range m.fields {
		newObserver.fields[k] = v
	}
	for k, v := range fields {
		newObserver.fields[k] = v
	}
	return newObserver
}

func (m *MockObserver) eventsOfType(t EventType) []Event {
	var out []Event
	for _, e := range m.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// captureObserver returns a LogObserver and the lines it wrote.
func captureObserver(verbosity int) (*LogObserver, *[]string) {
	var lines []string
	log := funcr.New(func(prefix, args string) {
		lines = append(lines, args)
	}, funcr.Options{Verbosity: verbosity})
	return NewLogObserver(log), &lines
}

func TestLogObserver_Printf(t *testing.T) {
	t.Parallel()
	observer, lines := captureObserver(0)

	observer.Printf("test message: %s", "value")

	assert.Len(t, *lines, 1)
	assert.Contains(t, (*lines)[0], `"msg"="test message: value"`)
}

func TestLogObserver_Event(t *testing.T) {
	t.Parallel()
	observer, lines := captureObserver(0)

	observer.Event(Event{
		Type:      EventResourceChanged,
		Phase:     "content",
		Resource:  "/etc/opendkim.conf",
		Message:   "file changed",
		Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Fields:    map[string]string{"type": "file", "detail": "file absent"},
	})

	assert.Len(t, *lines, 1)
	line := (*lines)[0]
	assert.Contains(t, line, `"event"="resource.changed"`)
	assert.Contains(t, line, `"phase"="content"`)
	assert.Contains(t, line, `"resource"="/etc/opendkim.conf"`)
	assert.Contains(t, line, `"ts"="2024-01-02T03:04:05Z"`)
	// Fields are sorted by key.
	assert.Less(t, strings.Index(line, `"detail"`), strings.Index(line, `"type"`))
}

func TestLogObserver_Verbosity(t *testing.T) {
	t.Parallel()
	observer, lines := captureObserver(0)

	observer.Event(Event{Type: EventResourceOK, Message: "file ok"})
	observer.Progress("keys", 1, 2)
	assert.Empty(t, *lines)

	verbose, vlines := captureObserver(1)
	verbose.Event(Event{Type: EventResourceOK, Message: "file ok"})
	verbose.Progress("keys", 1, 2)
	assert.Len(t, *vlines, 2)
	assert.Contains(t, (*vlines)[1], `"msg"="phase 1/2"`)
}

func TestLogObserver_Failure(t *testing.T) {
	t.Parallel()
	observer, lines := captureObserver(0)

	LogPhaseFailed(observer, "keys", errors.New("opendkim-genkey exited with status 1"))

	assert.Len(t, *lines, 1)
	assert.Contains(t, (*lines)[0], `"error"="opendkim-genkey exited with status 1"`)
	assert.Contains(t, (*lines)[0], `"event"="phase.failed"`)
}

func TestLogObserver_WithFields(t *testing.T) {
	t.Parallel()
	observer, lines := captureObserver(0)

	child := observer.WithFields(map[string]string{"host": "mx1"})
	child.Printf("hello")

	assert.Len(t, *lines, 1)
	assert.Contains(t, (*lines)[0], `"host"="mx1"`)
}

func TestLogResource(t *testing.T) {
	t.Parallel()
	tests := []struct {
		status resource.Status
		err    error
		expect EventType
	}{
		{status: resource.StatusOK, expect: EventResourceOK},
		{status: resource.StatusChanged, expect: EventResourceChanged},
		{status: resource.StatusSkipped, expect: EventResourceSkipped},
		{status: resource.StatusFailed, err: errors.New("boom"), expect: EventResourceFailed},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			t.Parallel()
			observer := NewMockObserver()

			LogResource(observer, "content", "file", "/etc/opendkim.conf", tt.status, "detail text", tt.err)

			assert.Len(t, observer.events, 1)
			e := observer.events[0]
			assert.Equal(t, tt.expect, e.Type)
			assert.Equal(t, "/etc/opendkim.conf", e.Resource)
			assert.Equal(t, "file "+string(tt.status), e.Message)
			assert.Equal(t, "detail text", e.Fields["detail"])
			assert.Equal(t, tt.err, e.Err)
		})
	}
}

func TestPhaseHelpers(t *testing.T) {
	t.Parallel()
	observer := NewMockObserver()

	LogPhaseStart(observer, "service")
	LogPhaseComplete(observer, "service", 1500*time.Microsecond)
	LogPhaseSkipped(observer, "packages", "unsupported distribution")

	assert.Equal(t, []EventType{EventPhaseStarted, EventPhaseCompleted, EventPhaseSkipped},
		[]EventType{observer.events[0].Type, observer.events[1].Type, observer.events[2].Type})
	assert.Equal(t, "completed in 2ms", observer.events[1].Message)
	assert.Equal(t, "unsupported distribution", observer.events[2].Message)
}
