// Package toast provides transient user-visible notifications.
//
// A Center holds at most one current toast. Producers call Info or Error;
// consumers either poll Current or register a callback with Subscribe.
// Levels map to the UI color classes the front end renders with.
package toast
