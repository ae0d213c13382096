// Package kernel contains shared value objects used across the domain model:
// entity identifiers, projected polygon geometries, and currency-tagged
// monetary amounts.
//
// All value objects are immutable and must be created through their
// constructor functions; zero values fail Validate.
package kernel
