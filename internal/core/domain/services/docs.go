// Package services contains stateless domain services operating across
// aggregates: geographic ownership checks and pricing.
package services
