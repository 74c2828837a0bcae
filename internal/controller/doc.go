// Package controller connects user submissions to the search backend and
// backend responses to view transitions.
//
// Every issued request carries a sequence number. Only the response to the
// latest request is applied; Escape and backend switches advance the
// sequence so responses belonging to an abandoned session are dropped.
package controller
