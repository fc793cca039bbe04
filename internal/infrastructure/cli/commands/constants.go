package commands

// Error messages
const (
	ErrUtteranceRequired = "an utterance is required"
)

// Success messages
const (
	MsgCacheRefreshed   = "Registry cache refreshed."
	MsgCacheInvalidated = "Registry cache invalidated."
	MsgContextCleared   = "Context cleared."
	MsgHistoryCleared   = "History cleared."
	MsgNoHistory        = "No resolutions recorded yet."
)
