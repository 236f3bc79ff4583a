// Package promptvault turns dumps of forum discussion pages into structured,
// categorized and deduplicated prompt records.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, gemini/, sqlite/).
package promptvault
