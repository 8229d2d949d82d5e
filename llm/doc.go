// Package llm exposes heterogeneous LLM backends through one uniform
// capability contract and adds cross-backend resilience on top of it.
//
// The package is built from four pieces:
//
//  1. Capability contract: the Provider interface every backend adapter
//     implements (generation, streaming, summarization, code analysis,
//     diagram generation, embeddings, validation, model listing, token
//     accounting), plus the Config and Response envelopes passed across
//     the boundary.
//
//  2. Resilience wrapper: the Base type every adapter embeds. It classifies
//     errors as retryable or fatal, runs bounded exponential-backoff retry,
//     tracks the instance-scoped token counter, and appends usage records
//     to the accounting collaborator after each successful generation.
//
//  3. Registry/factory: the Factory maps backend kinds to constructors and
//     serves static per-kind metadata (Info) and routing hints
//     (Recommendations). Constructors are registered by the composition
//     root, so adding a backend never touches the Manager.
//
//  4. Orchestration manager: the Manager owns the configured adapters,
//     designates a primary and an ordered fallback chain, and re-implements
//     every contract operation by delegating to the primary and walking the
//     fallback chain on failure. Streaming is the exception: a stream is
//     bound to exactly one backend and never falls back mid-flight.
//
// Concrete adapters live in the llm/anthropic, llm/openai, and llm/ollama
// subpackages. They translate between the contract and each vendor SDK and
// convert vendor errors into the Error taxonomy defined here.
//
// Error handling: every public operation either returns a well-formed
// Response or an error from the taxonomy in errors.go; adapters never
// swallow errors except for usage-record write failures, which are logged
// and dropped.
package llm
