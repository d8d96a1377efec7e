package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// ObservationType tags the origin of a field observation.
type ObservationType string

// Observation origins reported by the in-page agent.
const (
	// ObservationDOMEvent is an input/change/blur/click listener capture.
	ObservationDOMEvent ObservationType = "dom-event"

	// ObservationMutation is a capture triggered by the structural observer.
	ObservationMutation ObservationType = "mutation"

	// ObservationPoll is a capture from the fixed-interval safety-net poll.
	ObservationPoll ObservationType = "poll"

	// ObservationLabelInference is a value resolved from adjacent label text.
	ObservationLabelInference ObservationType = "label-inference"

	// ObservationForced is a value from the submit-time full capture.
	ObservationForced ObservationType = "forced"
)

// IsValid returns true if the observation type is recognised.
func (t ObservationType) IsValid() bool {
	switch t {
	case ObservationDOMEvent, ObservationMutation, ObservationPoll,
		ObservationLabelInference, ObservationForced:
		return true
	default:
		return false
	}
}

// FieldValue is either a string or a boolean (checkbox/radio state).
type FieldValue struct {
	Str    string
	Bool   bool
	IsBool bool
}

// StringValue wraps a string value.
func StringValue(s string) FieldValue {
	return FieldValue{Str: s}
}

// BoolValue wraps a boolean value.
func BoolValue(b bool) FieldValue {
	return FieldValue{Bool: b, IsBool: true}
}

// String renders the value as text. Booleans become "true"/"false".
func (v FieldValue) String() string {
	if v.IsBool {
		return strconv.FormatBool(v.Bool)
	}
	return v.Str
}

// MarshalJSON encodes the value as a JSON string or boolean.
func (v FieldValue) MarshalJSON() ([]byte, error) {
	if v.IsBool {
		return json.Marshal(v.Bool)
	}
	return json.Marshal(v.Str)
}

// UnmarshalJSON accepts a JSON string, boolean, number or null.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case nil:
		*v = FieldValue{}
	case string:
		*v = StringValue(x)
	case bool:
		*v = BoolValue(x)
	case float64:
		*v = StringValue(strconv.FormatFloat(x, 'f', -1, 64))
	default:
		return fmt.Errorf("%w: unsupported field value %s", ErrInvalidInput, string(data))
	}
	return nil
}

// FieldObservation is the most recent value seen for one selector.
// Timestamp is unix milliseconds.
type FieldObservation struct {
	Value     FieldValue      `json:"value"`
	Timestamp int64           `json:"timestamp"`
	Type      ObservationType `json:"type"`
}

// PageRecord holds the observations for one page URL.
// LastUpdated is unix milliseconds.
type PageRecord struct {
	Fields      map[string]FieldObservation `json:"fields"`
	LastUpdated int64                       `json:"last_updated"`
}

// SessionDocument accumulates field observations keyed by page URL.
// It is reset after every successful submission.
type SessionDocument struct {
	Pages map[string]*PageRecord `json:"pages"`
}

// NewSessionDocument returns an empty session document.
func NewSessionDocument() *SessionDocument {
	return &SessionDocument{Pages: make(map[string]*PageRecord)}
}

// Record upserts an observation for a selector on a page (last write wins).
func (d *SessionDocument) Record(pageURL, selector string, obs FieldObservation) {
	if d.Pages == nil {
		d.Pages = make(map[string]*PageRecord)
	}
	page, ok := d.Pages[pageURL]
	if !ok || page == nil {
		page = &PageRecord{Fields: make(map[string]FieldObservation)}
		d.Pages[pageURL] = page
	}
	if page.Fields == nil {
		page.Fields = make(map[string]FieldObservation)
	}
	page.Fields[selector] = obs
	if obs.Timestamp > page.LastUpdated {
		page.LastUpdated = obs.Timestamp
	}
}

// MergeForced merges a full selector -> value set into a page, tagging each
// entry as forced.
func (d *SessionDocument) MergeForced(pageURL string, fields map[string]FieldValue, at time.Time) {
	ts := at.UnixMilli()
	for selector, value := range fields {
		d.Record(pageURL, selector, FieldObservation{
			Value:     value,
			Timestamp: ts,
			Type:      ObservationForced,
		})
	}
	if page, ok := d.Pages[pageURL]; ok && page.LastUpdated < ts {
		page.LastUpdated = ts
	}
}

// Reset clears all pages.
func (d *SessionDocument) Reset() {
	d.Pages = make(map[string]*PageRecord)
}

// IsEmpty reports whether no page holds any observation.
func (d *SessionDocument) IsEmpty() bool {
	return len(d.Pages) == 0
}

// FieldCount returns the number of observations across all pages.
func (d *SessionDocument) FieldCount() int {
	n := 0
	for _, page := range d.Pages {
		if page != nil {
			n += len(page.Fields)
		}
	}
	return n
}

// Clone returns a deep copy.
func (d *SessionDocument) Clone() *SessionDocument {
	out := NewSessionDocument()
	for url, page := range d.Pages {
		if page == nil {
			continue
		}
		cp := &PageRecord{
			Fields:      make(map[string]FieldObservation, len(page.Fields)),
			LastUpdated: page.LastUpdated,
		}
		for sel, obs := range page.Fields {
			cp.Fields[sel] = obs
		}
		out.Pages[url] = cp
	}
	return out
}

// FlatField is one selector and its raw value.
type FlatField struct {
	Selector string
	Value    string
}

// FlatFieldSet is a flattened, selector-unique view of a session in discovery order.
type FlatFieldSet []FlatField

// Get returns the value for a selector.
func (s FlatFieldSet) Get(selector string) (string, bool) {
	for _, f := range s {
		if f.Selector == selector {
			return f.Value, true
		}
	}
	return "", false
}

// Flatten merges all pages into one selector -> value set.
//
// Selectors are expected to be globally unique within a session, so the
// merge is by selector, not by page. Ordering is by observation timestamp
// (then page URL, then selector) and a selector keeps the position where it
// was first discovered while taking the value of its latest observation.
func (d *SessionDocument) Flatten() FlatFieldSet {
	type entry struct {
		url      string
		selector string
		obs      FieldObservation
	}
	var entries []entry
	for url, page := range d.Pages {
		if page == nil {
			continue
		}
		for sel, obs := range page.Fields {
			entries = append(entries, entry{url: url, selector: sel, obs: obs})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.obs.Timestamp != b.obs.Timestamp {
			return a.obs.Timestamp < b.obs.Timestamp
		}
		if a.url != b.url {
			return a.url < b.url
		}
		return a.selector < b.selector
	})

	index := make(map[string]int, len(entries))
	out := make(FlatFieldSet, 0, len(entries))
	for _, e := range entries {
		if i, ok := index[e.selector]; ok {
			out[i].Value = e.obs.Value.String()
			continue
		}
		index[e.selector] = len(out)
		out = append(out, FlatField{Selector: e.selector, Value: e.obs.Value.String()})
	}
	return out
}

// SourceContext identifies the page an in-page binding call came from.
type SourceContext struct {
	// PageURL is the URL of the originating page.
	PageURL string
}

// Submission is a form submission reported by the in-page agent.
type Submission struct {
	// PageURL is the page the submission happened on.
	PageURL string

	// Fields is the forced capture of every whitelisted selector.
	Fields map[string]FieldValue

	// Diagnostics is the raw id/name -> value dump of every form control.
	// It is a fallback source only.
	Diagnostics map[string]string

	// ValidationErrorsPresent reports visible client-side validation errors.
	ValidationErrorsPresent bool

	// ValidationErrors holds the visible validation messages, if any.
	ValidationErrors []string

	// Timestamp is when the page captured the submission.
	Timestamp time.Time
}
