// Package llm talks to the local inference service that writes the tests.
package llm

import "context"

// Client abstracts the model endpoint so the pipeline can be exercised
// without a running inference server.
type Client interface {
	// Complete sends a system+user prompt and returns the generated text.
	// An empty generation is an error: the pipeline treats it as a hard
	// failure for the file being processed.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
