package clone

import "errors"

// Errors for malformed source graphs and unsafe destinations. All of them
// are non-retryable: they indicate the job must abort, not back off.
var (
	// ErrCyclicAlias means an alias chain revisited an id (A -> B -> A).
	ErrCyclicAlias = errors.New("cyclic alias chain")

	// ErrAliasChainTooDeep means an alias chain exceeded the configured
	// hop ceiling without reaching a terminal node.
	ErrAliasChainTooDeep = errors.New("alias chain too deep")

	// ErrProtectedDestination means the destination sits at or under a
	// synced block. Writing there would mutate aliased content
	// everywhere it appears, so the job aborts before any write.
	ErrProtectedDestination = errors.New("destination is inside a synced region")
)
