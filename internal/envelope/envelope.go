// Package envelope builds the response objects returned by the hero API
// facade.
//
// An Envelope carries a status code and a JSON body. The body is produced on
// demand by a context-taking accessor, the way a body is read off a real
// network response; timestamps are stamped at that moment. Simulated
// envelopes come from a Builder, live ones wrap the bytes a server returned.
package envelope

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// Envelope is a response from the hero API, live or simulated.
type Envelope interface {
	// StatusCode is the HTTP status of the response.
	StatusCode() int

	// JSON returns the response body. It fails only when ctx is done or the
	// body cannot be encoded.
	JSON(ctx context.Context) ([]byte, error)

	// Decode unmarshals the response body into v.
	Decode(ctx context.Context, v any) error
}

// TimestampLayout is the wire format of response timestamps (UTC, millis).
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Clock supplies the current time. Nil means time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

func (c Clock) stamp() string {
	return c.now().UTC().Format(TimestampLayout)
}

// MessageBody is the body shape of hero creation responses and of every 400.
type MessageBody struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Message is an envelope whose body is a plain message and a timestamp.
type Message struct {
	Status int
	Text   string
	clock  Clock
}

// NewMessage returns a message envelope stamped from clock.
func NewMessage(status int, text string, clock Clock) *Message {
	return &Message{Status: status, Text: text, clock: clock}
}

func (m *Message) StatusCode() int { return m.Status }

func (m *Message) JSON(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return json.Marshal(MessageBody{Message: m.Text, Timestamp: m.clock.stamp()})
}

func (m *Message) Decode(ctx context.Context, v any) error {
	return decode(ctx, m, v)
}

// Owe is the debt status of a hero.
type Owe string

const (
	OweMoney Owe = "OWE"
	OweNil   Owe = "NIL"
)

// DebtBody is the body of a successful debt check.
type DebtBody struct {
	Message   DebtResult `json:"message"`
	Timestamp string     `json:"timestamp"`
}

// DebtResult is the nested debt-check payload.
type DebtResult struct {
	Data   string `json:"data"`
	Status Owe    `json:"status"`
}

// DebtStatus is the 200 envelope of a debt check.
type DebtStatus struct {
	NatID  string
	Status Owe
	clock  Clock
}

func (d *DebtStatus) StatusCode() int { return 200 }

func (d *DebtStatus) JSON(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return json.Marshal(DebtBody{
		Message:   DebtResult{Data: d.NatID, Status: d.Status},
		Timestamp: d.clock.stamp(),
	})
}

func (d *DebtStatus) Decode(ctx context.Context, v any) error {
	return decode(ctx, d, v)
}

// VoucherCount is one row of the voucher statistics report.
type VoucherCount struct {
	Name        string `json:"name"`
	VoucherType string `json:"voucherType"`
	Count       int    `json:"count"`
}

// StatisticsBody is the body of the voucher statistics report.
type StatisticsBody struct {
	Data []VoucherCount `json:"data"`
}

// VoucherStatistics is the 200 envelope of the voucher statistics report.
// Unlike the other bodies it carries no timestamp.
type VoucherStatistics struct {
	Rows []VoucherCount
}

func (s *VoucherStatistics) StatusCode() int { return 200 }

func (s *VoucherStatistics) JSON(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows := s.Rows
	if rows == nil {
		rows = []VoucherCount{}
	}
	return json.Marshal(StatisticsBody{Data: rows})
}

func (s *VoucherStatistics) Decode(ctx context.Context, v any) error {
	return decode(ctx, s, v)
}

// Live wraps a response read from a real server.
type Live struct {
	Status int
	Body   []byte
}

func (l *Live) StatusCode() int { return l.Status }

// JSON returns a copy of the body, so callers may not alter the envelope.
func (l *Live) JSON(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]byte(nil), l.Body...), nil
}

func (l *Live) Decode(ctx context.Context, v any) error {
	return decode(ctx, l, v)
}

func decode(ctx context.Context, e Envelope, v any) error {
	data, err := e.JSON(ctx)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %d response body: %w", e.StatusCode(), err)
	}
	return nil
}
