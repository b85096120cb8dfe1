// Package validator probes the site entries of a channel configuration
// document for liveness. Probes are read-only GETs against each entry's
// declared endpoint; the validator never executes plugin code.
package validator
