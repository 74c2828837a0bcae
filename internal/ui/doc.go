// Package ui provides the terminal overlay for vsmbar.
//
// # Architecture Overview
//
// The overlay is a Bubble Tea program. Model holds widgets only; session
// state lives in the controller and is read back as a view.Snapshot on every
// render, so what is on screen is always a projection of that state.
//
// # Package Structure
//
//   - app.go: Model, Options, Init/Update/View, key routing and Run
//   - screens.go: corpus, query, results and "How to use" panels
//   - header.go: status header, command bar and error banner
//   - browse.go: directory picker (local backend only)
//   - logs.go: diagnostics overlay tailing the log file
//   - help.go, modal.go: help overlay and modal placement
//   - messages.go: messages and the commands that produce them
//   - theme.go, style_helpers.go: palettes and background-safe rendering
//
// # Event Flow
//
//  1. Enter asks the controller to submit; it returns a command that
//     performs the HTTP call off the event loop.
//  2. The call resolves into a controller.ResponseMsg.
//  3. Update hands it to the controller, which discards stale responses
//     and applies the rest.
//  4. Update reacts to the transition: results fill the viewport, a built
//     index is recorded in history and watched for changes.
//
// # Visibility
//
// ctrl+space (reported by terminals as ctrl+@) and the OS hotkey both flip
// a hotkey.Toggle. While hidden the overlay renders nothing and ignores all
// keys except the toggle and ctrl+c. Responses are still applied.
//
// # Key Bindings
//
//   - enter: build index, run query, or retry the hosted greeting
//   - esc: start over with an empty corpus, or close an overlay
//   - ctrl+b: switch local/hosted backend
//   - ctrl+o: browse for a directory (local corpus screen)
//   - ctrl+x: dismiss the error banner
//   - up/down, pgup/pgdown: scroll results
//   - ctrl+l: diagnostics log
//   - ctrl+t: cycle theme
//   - f1: help
//   - ctrl+c: quit
package ui
