// Package depscan statically extracts resource references from plugin
// bodies. Discovery is textual and deliberately over-approximates: a false
// positive costs one harmless fetch attempt, a missed reference breaks the
// mirror's self-containment promise.
package depscan
