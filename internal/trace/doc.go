// Package trace is the developer log of the compiler: spans around the
// driver, each pass and each module, written as text or NDJSON.
//
// The tracer travels through the pipeline in a context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "parse", 0)
//	defer span.End("")
//
// Enable it from the command line:
//
//	shale build --trace=- --trace-level=detail deploy.shl
//
// Levels: off, error, phase (driver and passes), detail (modules) and
// debug (everything).
package trace
