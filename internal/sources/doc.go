// Package sources provides interfaces and implementations for retrieving
// channel configuration documents from various external sources.
//
// The package defines the SourceHandler interface which abstracts the
// process of validating source configurations and fetching document data
// from external sources such as HTTP endpoints, Git repositories, or
// local files.
//
// Architecture:
//   - SourceHandler: Interface for fetching and validating document data
//   - DocumentDataValidator: Validates and parses raw document data
//   - FetchResult: Strongly-typed result containing Document instances with metadata
//
// Current implementations:
//   - GitSourceHandler: Retrieves documents from Git repositories
//     Supports public repos via HTTPS with branch/tag/commit checkout
//   - HTTPSourceHandler: Retrieves documents from HTTP/HTTPS endpoints
//     with bounded retries on transient failures
//   - FileSourceHandler: Retrieves documents from the local filesystem
//     Supports both absolute and relative file paths for development and production
//
// The package provides a factory pattern for creating appropriate
// source handlers based on the source type configuration.
package sources
