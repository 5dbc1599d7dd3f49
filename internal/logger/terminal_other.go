//go:build !linux && !darwin

package logger

// isTerminal disables color on platforms without termios.
func isTerminal(uintptr) bool {
	return false
}
