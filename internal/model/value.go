/*
PURPOSE:
  A single metric value read from a log, tagged with how it was obtained.

REQUIREMENTS:
  User-specified:
  - Missing log -> "N/A", unreadable log -> "ERROR", otherwise the raw text.

  Implementation-discovered:
  - Keep the failure reason in memory for logging, but serialize only the
    sentinel string the dashboard understands.

ERROR HANDLING:
  - None (pure data).

RELATED FILES:
  - internal/logread/logread.go
  - internal/model/types.go
*/

package model

import "encoding/json"

// Sentinels written in place of a value that could not be read.
const (
	NotAvailable = "N/A"
	ErrorMarker  = "ERROR"
)

// ValueKind tags how a log value was obtained.
type ValueKind uint8

const (
	KindOK ValueKind = iota
	KindMissing
	KindReadError
)

// Value is a single log line, or the reason it could not be read.
// It renders to the sentinel strings only when serialized.
type Value struct {
	Kind   ValueKind
	Text   string
	Detail string // error text for KindReadError
}

// Ok wraps a line that was read successfully.
func Ok(text string) Value { return Value{Kind: KindOK, Text: text} }

// Missing marks a value whose log file does not exist.
func Missing() Value { return Value{Kind: KindMissing} }

// ReadError marks a value whose log file could not be read.
func ReadError(err error) Value {
	v := Value{Kind: KindReadError}
	if err != nil {
		v.Detail = err.Error()
	}
	return v
}

func (v Value) IsOK() bool { return v.Kind == KindOK }

// String renders the value as it appears in the output document.
func (v Value) String() string {
	switch v.Kind {
	case KindMissing:
		return NotAvailable
	case KindReadError:
		return ErrorMarker
	default:
		return v.Text
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}
