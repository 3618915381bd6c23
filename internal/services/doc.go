// Package services defines the shared error taxonomy used to classify
// pipeline stage failures.
package services
