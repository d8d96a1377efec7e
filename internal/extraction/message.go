package extraction

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
)

// MessageType discriminates agent messages.
type MessageType string

const (
	// MessageObservation is a single field observation.
	MessageObservation MessageType = "observation"

	// MessageSubmission is a forced capture at form submission.
	MessageSubmission MessageType = "form_submission"
)

// Message is one payload posted through the host binding.
type Message struct {
	Type                    MessageType                  `json:"type"`
	URL                     string                       `json:"url"`
	Selector                string                       `json:"selector,omitempty"`
	Value                   domain.FieldValue            `json:"value"`
	ObservationType         domain.ObservationType       `json:"observation_type,omitempty"`
	ForcedCapture           map[string]domain.FieldValue `json:"forced_capture,omitempty"`
	Diagnostics             map[string]string            `json:"diagnostics,omitempty"`
	ValidationErrorsPresent bool                         `json:"validation_errors_present,omitempty"`
	ValidationErrors        []string                     `json:"validation_errors,omitempty"`
	Timestamp               int64                        `json:"timestamp"`
}

// ParseMessage decodes and checks a binding payload.
// The page URL from the binding source wins over the URL the page reports.
func ParseMessage(src domain.SourceContext, payload []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("%w: decode agent message: %w", domain.ErrInvalidInput, err)
	}
	if src.PageURL != "" {
		msg.URL = src.PageURL
	}
	if msg.URL == "" {
		return nil, fmt.Errorf("%w: agent message without page url", domain.ErrInvalidInput)
	}
	if msg.Timestamp <= 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}

	switch msg.Type {
	case MessageObservation:
		msg.Selector = strings.TrimSpace(msg.Selector)
		if msg.Selector == "" {
			return nil, fmt.Errorf("%w: observation without selector", domain.ErrInvalidInput)
		}
		if msg.ObservationType == "" {
			msg.ObservationType = domain.ObservationDOMEvent
		}
		if !msg.ObservationType.IsValid() {
			return nil, fmt.Errorf("%w: unknown observation type %q", domain.ErrInvalidInput, msg.ObservationType)
		}
	case MessageSubmission:
		if msg.ForcedCapture == nil {
			msg.ForcedCapture = map[string]domain.FieldValue{}
		}
	default:
		return nil, fmt.Errorf("%w: unknown message type %q", domain.ErrInvalidInput, msg.Type)
	}
	return &msg, nil
}

// Observation converts an observation message.
func (m *Message) Observation() domain.FieldObservation {
	return domain.FieldObservation{
		Value:     m.Value,
		Timestamp: m.Timestamp,
		Type:      m.ObservationType,
	}
}

// Submission converts a form_submission message.
func (m *Message) Submission() domain.Submission {
	return domain.Submission{
		PageURL:                 m.URL,
		Fields:                  m.ForcedCapture,
		Diagnostics:             m.Diagnostics,
		ValidationErrorsPresent: m.ValidationErrorsPresent,
		ValidationErrors:        m.ValidationErrors,
		Timestamp:               time.UnixMilli(m.Timestamp),
	}
}
