// Package domain defines the core business entities of the tarot reading
// service and the validation rules that protect their invariants.
package domain
