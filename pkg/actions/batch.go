package actions

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/agentstation/sheetsync/pkg/errors"
)

// Batch is the ordered action list handed to the executor.
type Batch struct {
	Actions []Action `json:"actions"`
}

// Len returns the number of actions.
func (b *Batch) Len() int {
	return len(b.Actions)
}

// Append adds actions at the end of the batch.
func (b *Batch) Append(a ...Action) {
	b.Actions = append(b.Actions, a...)
}

// Encode renders the batch as indented JSON with a trailing newline.
// Non-ASCII text and markup characters are written as is.
func (b *Batch) Encode() ([]byte, error) {
	if b.Actions == nil {
		b = &Batch{Actions: []Action{}}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return nil, errors.WrapParse("json", "", err)
	}
	return buf.Bytes(), nil
}

// WriteTo streams the encoded batch to w.
func (b *Batch) WriteTo(w io.Writer) (int64, error) {
	data, err := b.Encode()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Decode parses a batch.
func Decode(data []byte) (*Batch, error) {
	var b Batch
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, errors.WrapParse("json", "", err)
	}
	return &b, nil
}
