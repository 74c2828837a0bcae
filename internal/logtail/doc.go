// Package logtail reads the end of vsmbar's own log file and colors it for
// the diagnostics overlay.
//
// # Reading Log Files
//
// Read uses a ring buffer of size maxLines, so memory stays O(maxLines)
// regardless of file size and lines come back in chronological order.
// Missing files return nil, nil.
//
//	lines, err := logtail.Read(path, 200)
//
// # Line Format
//
// Lines are expected in the text format charmbracelet/log writes:
//
//	2026-10-16T09:12:01+02:00 WARN request failed kind=network_failure url="GET http://localhost:8000/"
//
// Parse splits a line into timestamp, level, message and key=value
// fields. ColorizeLine renders those parts with the supplied lipgloss
// styles; lines that do not match the format pass through as plain
// message text.
package logtail
