// Package service contains the application services that sit between the
// HTTP handlers and the stores. Services own the submission workflow and
// the ownership rules; they never touch the transport layer.
package service
