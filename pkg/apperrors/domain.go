package apperrors

import (
	"fmt"
	"net/http"
)

// Factories and predefined variables for domain errors raised by the
// matching engine and its collaborators.

// ErrNotFound converts a repository miss (gorm.ErrRecordNotFound and
// friends) into a 404 AppError.
func ErrNotFound(err error, resource string) *AppError {
	return Wrap(err, CodeNotFound, resource, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// ErrConcurrentRun is returned when a matching run is requested for a
// besoin that already has a run in flight. The caller must retry later,
// the in-flight run is never interrupted.
func ErrConcurrentRun(besoinID string) *AppError {
	return New(CodeConcurrentRun, "matching", "A matching run is already in progress for this besoin", http.StatusConflict).
		WithDetails(map[string]string{"besoin_id": besoinID})
}

// ErrPersistence marks a durable-store write failure. Fatal for the
// affected besoin, recorded in the run summary, never aborts the batch.
func ErrPersistence(err error, besoinID string) *AppError {
	return Wrap(err, CodePersistence, "matching", "Failed to persist matching results", http.StatusInternalServerError).
		WithDetails(map[string]string{"besoin_id": besoinID})
}

// ErrEnrichment marks an enrichment service failure. Always recovered
// locally with the rule-derived fallback, never surfaced to the caller.
func ErrEnrichment(err error) *AppError {
	return Wrap(err, CodeEnrichment, "enrichment", "Narrative enrichment failed", http.StatusBadGateway)
}

// Predefined errors for the thin CRUD surface.
var (
	ErrBesoinNotFound   = New(CodeNotFound, "besoin", "Besoin not found or outside your organisation", http.StatusNotFound)
	ErrCandidatNotFound = New(CodeNotFound, "candidat", "Candidat not found", http.StatusNotFound)
	ErrBesoinClosed     = New(CodeInvalidStatus, "besoin", "Besoin is not open for matching", http.StatusBadRequest)
)
