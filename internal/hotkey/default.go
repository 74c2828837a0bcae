//go:build !oshotkey || darwin

package hotkey

// Default returns the registrar for this build. Without the oshotkey tag
// the toggle is reachable only from inside the terminal.
func Default() Registrar { return Unsupported{} }
