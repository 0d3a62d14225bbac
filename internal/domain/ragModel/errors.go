package ragModel

import "fmt"

// Stage errors are distinct types so callers can tell which pipeline stage
// failed with errors.As. Each aborts the enclosing ingestion or query as a
// whole; only embedding and generation failures are retried internally.

// IngestionError covers empty, oversized or unsupported documents. Not
// retriable.
type IngestionError struct {
	Reason string
	Err    error
}

func (e *IngestionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ingestion: %s: %v", e.Reason, e.Err)
	}
	return "ingestion: " + e.Reason
}

func (e *IngestionError) Unwrap() error { return e.Err }

// EmbeddingError is surfaced after retry exhaustion and carries the last
// provider error.
type EmbeddingError struct {
	Attempts int
	Err      error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding: provider failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// IndexError covers dimension mismatches and index unavailability. Fatal for
// the current operation.
type IndexError struct {
	Reason string
	Err    error
}

func (e *IndexError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("index: %s: %v", e.Reason, e.Err)
	}
	return "index: " + e.Reason
}

func (e *IndexError) Unwrap() error { return e.Err }

// RetrievalError means the index could not be consulted. An empty result is
// not a RetrievalError.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string { return fmt.Sprintf("retrieval: %v", e.Err) }

func (e *RetrievalError) Unwrap() error { return e.Err }

// GenerationError is a transport/provider failure of the language model.
// The no-evidence refusal is a successful Answer, never a GenerationError.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return fmt.Sprintf("generation: %v", e.Err) }

func (e *GenerationError) Unwrap() error { return e.Err }
