package sandbox

import "context"

// Runner executes one untrusted transform script against the tables of
// a dataset. Scripts are stateless; nothing survives between runs
// except the table mutations they commit through the builtins.
type Runner interface {
	// Run executes the script and returns its captured output, bounded
	// to a few thousand characters. Script failures come back as an
	// error whose text is safe to relay to the conversation.
	Run(ctx context.Context, datasetID uint, code string) (string, error)
}
