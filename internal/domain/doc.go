// Package domain contains the core entities of the study-progress tracker:
// series, sessions, item attempts and recorded interactions, together with
// the lifecycle rules that govern how they transition between active and
// completed. All state transitions live here; the service layer only loads
// a series, applies a transition, and persists the result.
package domain
