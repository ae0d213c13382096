package cmd

import "time"

// Config carries every setting of the service, loaded from the environment
// by cmd/app.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	KafkaBrokers          []string
	KafkaOrderEventsTopic string

	MediaRoot string

	// MaxOrderArea is the upper bound on the extraction perimeter area, in
	// the units of the working SRID. Zero disables the check.
	MaxOrderArea float64

	// VATRate is the tax fraction applied on order totals, e.g. 0.081.
	VATRate float64

	// ArchiveRetention is how long processed orders keep their result files.
	ArchiveRetention time.Duration

	// Cron specs in the six-field form with seconds.
	ArchiveCronSpec string
	RebuildCronSpec string
}
