// Package toolexecutor runs registered tools with parameter validation,
// result caching, running statistics and an execution log.
//
// Invariants:
// - Tool failures are returned in a Result, never raised to the caller.
// - A cache hit skips validation, statistics and logging.
// - Only logged executions change tool statistics.
// - Persistence failures are logged and the executor keeps running in memory.
//
// Usage:
//
//	exec := toolexecutor.New(reg, toolexecutor.Options{CacheEnabled: true})
//	res := exec.Execute(ctx, toolID, map[string]any{"text": "hi"}, true)
//	if !res.Success {
//		fmt.Println(res.Error)
//	}
package toolexecutor
