package transcript

import (
	"encoding/json"
	"fmt"
	"io"
)

// Decode reads a JSON array of messages.
func Decode(r io.Reader) ([]Message, error) {
	var msgs []Message
	if err := json.NewDecoder(r).Decode(&msgs); err != nil {
		return nil, fmt.Errorf("decoding transcript: %w", err)
	}
	return msgs, nil
}

// Encode writes messages as an indented JSON array.
func Encode(w io.Writer, msgs []Message) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(msgs); err != nil {
		return fmt.Errorf("encoding transcript: %w", err)
	}
	return nil
}
