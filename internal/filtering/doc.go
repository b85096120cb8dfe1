// Package filtering provides site filtering capabilities for channel
// configuration documents.
//
// Filtering selectively includes or excludes site entries based on glob
// patterns matched against both the entry key and the display name, with
// exclude taking precedence over include.
//
// # Filtering Logic
//
//  1. If exclude patterns are specified and match -> exclude (precedence)
//  2. If include patterns are specified and match -> include
//  3. If include patterns are specified but no match -> exclude
//  4. If only exclude patterns specified and no match -> include
//  5. If no filters specified -> include (default behavior)
//
// # Usage Example
//
//	service := NewDefaultFilterService()
//	filter := &config.FilterConfig{
//		Names: &config.NameFilterConfig{
//			Include: []string{"drpy_*"},
//			Exclude: []string{"*_broken"},
//		},
//	}
//
//	filteredDoc, err := service.ApplyFilters(ctx, originalDoc, filter)
//
// The filtering system logs the specific reason for each exclusion decision,
// making it easy to debug filtering configurations.
package filtering
