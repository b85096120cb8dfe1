// Package document defines the channel configuration document model shared
// by the fetch, validation, and merge stages.
package document
