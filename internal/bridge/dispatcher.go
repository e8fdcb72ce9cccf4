package bridge

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"liftoff/internal/dialog"
)

// ScriptRunner evaluates script inside the hosted page. The UI host is the
// production implementation.
type ScriptRunner interface {
	Eval(script string) error
}

// State tracks where the dispatcher is in a single command's lifecycle. The
// dispatcher runs on the UI event thread, so at most one command is ever in
// flight.
type State int

const (
	StateIdle State = iota
	StateDispatching
	StateNativeDialogOpen
	StateInjecting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDispatching:
		return "dispatching"
	case StateNativeDialogOpen:
		return "native-dialog-open"
	case StateInjecting:
		return "injecting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Dispatcher decodes bridge messages, runs the requested native operation,
// and injects the result back into the page.
type Dispatcher struct {
	picker dialog.Picker
	view   ScriptRunner
	logger *zap.Logger
	state  State
}

// NewDispatcher wires the dispatcher to its picker capability and the page
// it injects into.
func NewDispatcher(picker dialog.Picker, view ScriptRunner, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		picker: picker,
		view:   view,
		logger: logger,
	}
}

// State reports the current lifecycle state.
func (d *Dispatcher) State() State {
	return d.state
}

// Dispatch handles one bridge message synchronously on the calling thread.
// The modal picker blocks that thread while open. Cancellation injects
// nothing and returns nil; every returned error means a defect the caller
// must treat as fatal.
func (d *Dispatcher) Dispatch(msg string) error {
	d.state = StateDispatching
	defer func() { d.state = StateIdle }()

	cmd, err := Decode(msg)
	if err != nil {
		return err
	}
	d.logger.Debug("incoming bridge command",
		zap.String("type", cmd.Type),
		zap.String("callback", cmd.CallbackName))

	switch cmd.Type {
	case TypeSelectInstallDir:
		return d.selectInstallDir(cmd.CallbackName)
	}
	return nil
}

func (d *Dispatcher) selectInstallDir(callback string) error {
	d.state = StateNativeDialogOpen
	path, ok, err := d.picker.SelectFolder("Select an install directory...")
	if err != nil {
		return err
	}
	if !ok {
		d.logger.Debug("directory selection cancelled")
		return nil
	}

	d.state = StateInjecting
	encoded, err := json.Marshal(path)
	if err != nil {
		return fmt.Errorf("serialize selected path: %w", err)
	}
	script := fmt.Sprintf("%s(%s);", callback, encoded)
	d.logger.Debug("injecting bridge response", zap.String("script", script))
	if err := d.view.Eval(script); err != nil {
		return fmt.Errorf("inject bridge response: %w", err)
	}
	return nil
}
