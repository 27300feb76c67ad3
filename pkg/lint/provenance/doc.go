// Package provenance provides catalog-level linting for railcat.
//
// Rules inspect the whole catalog document at once: per-record completeness,
// cross-record conflicts and, when a link check has been run, the reachability
// of every URL.
//
// # Rule Categories
//
//   - integrity (CR*, CJ*, CD*, CS*): required fields, jurisdictions, duplicates, submodules
//   - links (CU*): URL syntax, reachability and expected hosts
//
// # Usage
//
//	ctx := provenance.NewContext(cat.Document(), linkResults)
//	analyzer := provenance.NewAnalyzer(lint.NewConfig())
//	diagnostics := analyzer.Analyze(ctx)
package provenance
