// Package interpretation defines the boundary between the application core
// and the external LLM service that produces tarot readings.
package interpretation
