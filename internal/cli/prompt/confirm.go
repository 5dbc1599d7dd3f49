// Package prompt asks the user for confirmation on the terminal.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
)

// ErrAborted is returned when the user interrupts a prompt with Ctrl+C.
var ErrAborted = errors.New("aborted by user")

// Confirm asks a yes/no question on stdin. An empty answer picks the
// default.
func Confirm(label string, defaultYes bool) (bool, error) {
	return confirm(promptui.Prompt{}, label, defaultYes)
}

// ConfirmIO is Confirm over explicit streams, for non-TTY callers and tests.
func ConfirmIO(in io.ReadCloser, out io.WriteCloser, label string, defaultYes bool) (bool, error) {
	return confirm(promptui.Prompt{Stdin: in, Stdout: out}, label, defaultYes)
}

func confirm(p promptui.Prompt, label string, defaultYes bool) (bool, error) {
	hint := "y/N"
	if defaultYes {
		hint = "Y/n"
	}
	p.Label = fmt.Sprintf("%s [%s]", label, hint)
	p.IsConfirm = true

	result, err := p.Run()
	switch {
	case errors.Is(err, promptui.ErrInterrupt):
		return false, ErrAborted
	case errors.Is(err, promptui.ErrAbort):
		// promptui reports anything but "y" as ErrAbort; an empty answer
		// means the default.
		if strings.TrimSpace(result) == "" {
			return defaultYes, nil
		}
		return false, nil
	case err != nil:
		return false, err
	}

	answer := strings.ToLower(strings.TrimSpace(result))
	return answer == "y" || answer == "yes", nil
}

// ConfirmWithForce returns true without asking when force is set.
func ConfirmWithForce(label string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	return Confirm(label, false)
}
