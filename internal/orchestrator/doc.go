// Package orchestrator composes ingestion, retrieval, planning and
// commentary into a single orchestration call, and exposes the
// self-healing executor next to it.
//
// Orchestration is a pure computation: every index is rebuilt from the
// files passed in, and nothing outlives the call except an optional
// fingerprint cache keyed on content hashes.
//
// Example usage:
//
//	engine := orchestrator.New(orchestrator.WithLogger(logger))
//	result := engine.RunOrchestration("Add login\nWrite docs", files, nil)
//	run := engine.RunSelfHealingCommand(ctx, "npm test", repoPath)
package orchestrator
