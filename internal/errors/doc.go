// Package errors provides structured, actionable error messages for the
// parley CLI.
//
// Each error carries a unique code (e.g. "E120") registered with a category,
// a short message, and a default explanation. Builders add run-specific
// detail, a fix suggestion, and a wrapped cause. Format renders the error
// for terminal display.
package errors
