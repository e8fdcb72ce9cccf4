// Package dialog exposes the one native capability the bridge needs: open a
// directory picker and return an optional path.
package dialog

import (
	"errors"
	"fmt"

	"github.com/ncruces/zenity"
)

// Picker opens a modal directory chooser on the calling thread. ok is false
// when the user cancels; cancellation is never an error.
type Picker interface {
	SelectFolder(title string) (path string, ok bool, err error)
}

// Native returns the platform picker. zenity resolves the concrete dialog
// per target at its own boundary (IFileOpenDialog on Windows, osascript on
// macOS, zenity(1) elsewhere), so there is exactly one implementation here.
func Native() Picker {
	return nativePicker{}
}

type nativePicker struct{}

func (nativePicker) SelectFolder(title string) (string, bool, error) {
	path, err := zenity.SelectFile(zenity.Title(title), zenity.Directory())
	if errors.Is(err, zenity.ErrCanceled) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("directory picker: %w", err)
	}
	if path == "" {
		return "", false, nil
	}
	return path, true, nil
}
