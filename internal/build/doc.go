// Package build orchestrates the full pipeline: fetch every configured
// source, probe its sites, localize plugin resources into the content
// mirror, merge the survivors by source priority, and write the deployable
// artifact tree with machine-readable reports.
//
// The pipeline degrades rather than aborts: a failing source is recorded
// and skipped, and only crossing the configured failure threshold (or the
// global deadline) halts a build outright.
package build
