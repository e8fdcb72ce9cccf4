// Package bridge relays the command protocol between the hosted page and
// native capabilities. The channel is trusted: both ends ship in the same
// binary, so a message that fails to decode is a build defect, not input to
// be tolerated.
package bridge

import (
	"encoding/json"
	"fmt"
)

// Command types understood by the dispatcher.
const (
	TypeSelectInstallDir = "SelectInstallDir"
)

// Command is the tagged envelope sent by the hosted page.
type Command struct {
	Type string `json:"type"`

	// CallbackName names a function in the page's global scope. Trusted,
	// not validated.
	CallbackName string `json:"callback_name"`
}

// Decode parses one bridge message. Malformed JSON and unrecognized type
// tags are errors, never silent no-ops; callers escalate them to fatal.
func Decode(msg string) (Command, error) {
	var cmd Command
	if err := json.Unmarshal([]byte(msg), &cmd); err != nil {
		return Command{}, fmt.Errorf("undecodable bridge message %q: %w", msg, err)
	}
	switch cmd.Type {
	case TypeSelectInstallDir:
		return cmd, nil
	default:
		return Command{}, fmt.Errorf("unknown bridge command type %q in %q", cmd.Type, msg)
	}
}
