// Package store defines the persistence contracts used by the service
// layer, along with the common error family shared by all implementations.
package store
