// Package domain defines core data models and interfaces shared across the app.
// It contains plain types (ledger, relay and marker records), collaborator
// contracts (interfaces) and the error taxonomy only.
package domain
