// Package fetcher retrieves documents and plugin resources from HTTP(S)
// URLs and local paths. It owns retry and timeout policy and nothing else;
// caching and deduplication belong to the content store.
package fetcher
