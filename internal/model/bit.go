package model

import (
	"bytes"
	"fmt"
)

// Bit is a boolean carried as 0/1 on the wire. Decoding also accepts
// true/false.
type Bit bool

func (b Bit) MarshalJSON() ([]byte, error) {
	if b {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

func (b *Bit) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "1", "true":
		*b = true
	case "0", "false", "null":
		*b = false
	default:
		return fmt.Errorf("invalid completed value %s", data)
	}
	return nil
}
