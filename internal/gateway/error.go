package gateway

import (
	"fmt"
	"strings"

	"github.com/go-faster/jx"
)

// APIError is a normalized backend failure: an HTTP-status-like code plus
// the best human-readable message the response allowed.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend error %d: %s", e.Code, e.Message)
}

// parseError extracts a message from an error response body, in order of
// preference: JSON object "message" string, JSON "message" string array
// joined with ", ", the raw body text, and finally "Error <code>" when the
// body is empty or unreadable.
func parseError(code int, body []byte) *APIError {
	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return &APIError{Code: code, Message: fmt.Sprintf("Error %d", code)}
	}

	if msg, ok := messageFromJSON(body); ok {
		return &APIError{Code: code, Message: msg}
	}
	return &APIError{Code: code, Message: raw}
}

// messageFromJSON looks in body for an object-level "message" field that is
// either a string or an array of strings.
func messageFromJSON(body []byte) (string, bool) {
	d := jx.DecodeBytes(body)
	if d.Next() != jx.Object {
		return "", false
	}

	var (
		msg   string
		found bool
	)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "message" || found {
			return d.Skip()
		}
		switch d.Next() {
		case jx.String:
			s, err := d.Str()
			if err != nil {
				return err
			}
			msg, found = s, true
			return nil
		case jx.Array:
			var parts []string
			if err := d.Arr(func(d *jx.Decoder) error {
				s, err := d.Str()
				if err != nil {
					return err
				}
				parts = append(parts, s)
				return nil
			}); err != nil {
				return err
			}
			msg, found = strings.Join(parts, ", "), true
			return nil
		default:
			return d.Skip()
		}
	})
	if err != nil || !found {
		return "", false
	}
	return msg, true
}
