package amqp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"finreport/internal/core"
)

// ReportGeneratedMessage announces a freshly built report. The full payload
// travels with the message so consumers need no access to the source table.
type ReportGeneratedMessage struct {
	ID          string          `json:"id"`
	GeneratedAt time.Time       `json:"generated_at"`
	ReferenceAt time.Time       `json:"reference_at"`
	Report      json.RawMessage `json:"report"`
}

// ErrInvalidPayload marks a message whose report cannot be decoded.
// Redelivering such a message cannot succeed.
var ErrInvalidPayload = errors.New("invalid report payload")

// NewReportGeneratedMessage encodes report into a message stamped with the current time.
func NewReportGeneratedMessage(id string, referenceAt time.Time, report core.Report) (*ReportGeneratedMessage, error) {
	payload, err := json.Marshal(report.Normalize())
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return &ReportGeneratedMessage{
		ID:          id,
		GeneratedAt: time.Now().UTC(),
		ReferenceAt: referenceAt,
		Report:      payload,
	}, nil
}

// ToJSON converts the message to JSON bytes
func (m *ReportGeneratedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportGeneratedMessageFromJSON decodes and validates a message body.
func ReportGeneratedMessageFromJSON(data []byte) (*ReportGeneratedMessage, error) {
	var msg ReportGeneratedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, errors.New("report message without id")
	}
	if len(msg.Report) == 0 {
		return nil, fmt.Errorf("report message %s without payload", msg.ID)
	}
	if _, err := msg.DecodeReport(); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DecodeReport decodes the payload, which must be a JSON object.
func (m *ReportGeneratedMessage) DecodeReport() (core.Report, error) {
	body := bytes.TrimSpace(m.Report)
	if len(body) == 0 || body[0] != '{' {
		return core.Report{}, fmt.Errorf("report %s: %w: not a JSON object", m.ID, ErrInvalidPayload)
	}
	var rep core.Report
	if err := json.Unmarshal(body, &rep); err != nil {
		return core.Report{}, fmt.Errorf("report %s: %w: %v", m.ID, ErrInvalidPayload, err)
	}
	return rep, nil
}
