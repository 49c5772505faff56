package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the requested change clashes with the current state of the resource.
var ErrConflict = errors.New("conflicting state")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// ErrInvalidTransition indicates an invoice status transition that the state machine disallows.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrReconciliationConflict indicates a settlement that contradicts an already-recorded
// settlement for the same invoice. These are routed to manual review, never auto-corrected.
var ErrReconciliationConflict = errors.New("reconciliation conflict")

// ErrLedgerIntegrity indicates the committed ledger itself violates the double-entry
// invariant. A report that detects this fails rather than returning inconsistent data.
var ErrLedgerIntegrity = errors.New("ledger integrity violation")

// ErrTransientLookup indicates a lookup that may succeed on retry, e.g. a settlement
// event that arrived before the invoice it references became visible.
var ErrTransientLookup = errors.New("transient lookup failure")
