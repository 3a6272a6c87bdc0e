// Package services defines the shared error taxonomy for collaborator-facing
// code. Callers wrap collaborator failures with the sentinel errors here so
// boundaries can classify them without string matching.
package services
