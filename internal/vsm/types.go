package vsm

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Backend names one of the two fixed search service deployments.
type Backend string

const (
	Local  Backend = "local"
	Hosted Backend = "hosted"
)

const (
	DefaultLocalURL  = "http://localhost:8000"
	DefaultHostedURL = "https://information-retrieval-vsm.onrender.com"
)

// ParseBackend maps a config or flag value onto a Backend. Unknown values
// fall back to Local.
func ParseBackend(value string) Backend {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "hosted", "remote":
		return Hosted
	default:
		return Local
	}
}

// Other returns the backend a toggle switches to.
func (b Backend) Other() Backend {
	if b == Hosted {
		return Local
	}
	return Hosted
}

// Message prefixes the backend uses to signal success. They are the de facto
// protocol and are matched byte for byte.
const (
	GreetingPrefix   = "Welcome to the Vector Space Model"
	IndexBuiltPrefix = "Index built for corpus directory:"
)

// BackendErrorFallback is shown when the backend reports an error without
// any text.
const BackendErrorFallback = "backend reported an error"

// Document mirrors the JSON object every endpoint returns. Only the keys the
// front-end dispatches on are decoded; result rows stay raw so that a single
// malformed row does not fail the whole payload.
type Document struct {
	Message     string
	Error       string
	Query       string
	ElapsedTime float64
	Results     []json.RawMessage

	keys    map[string]struct{}
	invalid []string
}

// Has reports whether key was present in the decoded object.
func (d Document) Has(key string) bool {
	_, ok := d.keys[key]
	return ok
}

// Invalid lists the optional keys whose values could not be decoded and
// were left at their zero value.
func (d Document) Invalid() []string { return d.invalid }

// UnmarshalJSON records key presence alongside the decoded values.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	doc := Document{keys: make(map[string]struct{}, len(raw))}
	for k := range raw {
		doc.keys[k] = struct{}{}
	}
	doc.Message = textValue(raw["message"])
	doc.Error = textValue(raw["error"])
	doc.Query = textValue(raw["query"])
	// elapsed_time is informational; a bad value leaves zero and is reported
	// through Invalid instead of failing the payload.
	if v, ok := raw["elapsed_time"]; ok && !isNull(v) {
		if secs, ok := numberValue(v); ok {
			doc.ElapsedTime = secs
		} else {
			doc.invalid = append(doc.invalid, "elapsed_time")
		}
	}
	if v, ok := raw["results"]; ok && !isNull(v) {
		var rows []json.RawMessage
		if err := json.Unmarshal(v, &rows); err != nil {
			return err
		}
		if rows == nil {
			rows = []json.RawMessage{}
		}
		doc.Results = rows
	}

	*d = doc
	return nil
}

// textValue renders a JSON value as display text: strings unquoted, anything
// else as compact JSON.
func textValue(v json.RawMessage) string {
	if len(v) == 0 || isNull(v) {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, v); err != nil {
		return string(v)
	}
	return buf.String()
}

// numberValue accepts a JSON number or a string holding one.
func numberValue(v json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(v, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func isNull(v json.RawMessage) bool {
	return string(bytes.TrimSpace(v)) == "null"
}

// OutcomeKind is the typed status a Document is mapped to at the boundary.
type OutcomeKind int

const (
	OutcomeUnrecognized OutcomeKind = iota
	OutcomeGreeting
	OutcomeIndexBuilt
	OutcomeResults
	OutcomeBackendError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeGreeting:
		return "greeting"
	case OutcomeIndexBuilt:
		return "index_built"
	case OutcomeResults:
		return "results"
	case OutcomeBackendError:
		return "backend_error"
	default:
		return "unrecognized"
	}
}

// Outcome is the classified form of a successful HTTP response.
type Outcome struct {
	Kind    OutcomeKind
	Message string
	Query   string
	Elapsed time.Duration
	Results []json.RawMessage
}

// Classify maps a Document onto an Outcome using the backend's string and
// key conventions, checked in the order the server can produce them.
func Classify(doc Document) Outcome {
	out := Outcome{Message: doc.Message}
	switch {
	case doc.Has("message") && strings.HasPrefix(doc.Message, GreetingPrefix):
		out.Kind = OutcomeGreeting
	case doc.Has("error"):
		out.Kind = OutcomeBackendError
		out.Message = strings.TrimSpace(doc.Error)
		if out.Message == "" {
			out.Message = BackendErrorFallback
		}
	case doc.Has("message") && strings.HasPrefix(doc.Message, IndexBuiltPrefix):
		out.Kind = OutcomeIndexBuilt
	case doc.Has("results"):
		out.Kind = OutcomeResults
		out.Query = doc.Query
		out.Elapsed = time.Duration(math.Round(doc.ElapsedTime * float64(time.Second)))
		out.Results = doc.Results
		if out.Results == nil {
			out.Results = []json.RawMessage{}
		}
	default:
		out.Kind = OutcomeUnrecognized
	}
	return out
}

// IndexedPath extracts the directory echoed in an index-built message.
func IndexedPath(message string) string {
	if !strings.HasPrefix(message, IndexBuiltPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(message, IndexBuiltPrefix))
}
