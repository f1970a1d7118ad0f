// Package source implements the author and country breakdowns served under
// /api/v1/sources.
package source

// UnknownLabel names groups without an author or a country.
const UnknownLabel = "Unknown"
