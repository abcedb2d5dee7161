package metadata

// OutcomeCacheHit is the outcome label navigations served from a snapshot report.
const OutcomeCacheHit = "cache_hit"

/*
sessionStats
  - Represents a terminal, derived summary of a browse or serve session
  - Contains only aggregate counts and durations
  - Is computed by the owner of the session after it ends
  - Is recorded exactly once
  - Must not influence navigation, caching or history
*/
type sessionStats struct {
	navigations int
	cacheHits   int
	fetches     int
	errors      int
	artifacts   int
	durationMs  int64
}

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, reporting).

	Rules:
	 - ErrorCause is for observability only.
	 - ErrorCause MUST NOT influence control flow.
	 - ErrorCause MUST NOT be used for retry decisions; navigations are never retried.
	 - Packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown

Meaning:
  - The failure does not map cleanly to any known category.

# CauseNetworkFailure

Meaning:
  - Failure caused by network transport or remote availability.

Examples:
  - TCP timeouts
  - DNS resolution failures
  - Connection resets

# CauseHTTPStatus

Meaning:
  - The server answered, but not with a success status.

Examples:
  - 404 for a missing fragment
  - 5xx from the origin

# CauseContentInvalid

Meaning:
  - Content was fetched but could not be applied.

Examples:
  - Container selector matching nothing
  - Unparseable markup

# CauseStorageFailure

Meaning:
  - Failure while persisting or reading snapshots or served files.

# CauseUnsupported

Meaning:
  - A required capability is missing and the feature was disabled.

Examples:
  - History API without push/replace support
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CauseHTTPStatus
	CauseContentInvalid
	CauseStorageFailure
	CauseUnsupported
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CauseHTTPStatus:
		return "http_status"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// HistoryAction names the mutation applied to the history stack.
type HistoryAction string

const (
	HistoryPush    HistoryAction = "push"
	HistoryReplace HistoryAction = "replace"
	HistoryPop     HistoryAction = "pop"
	HistoryNone    HistoryAction = "none"
)

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrURL        AttributeKey = "url"
	AttrKey        AttributeKey = "key"
	AttrMode       AttributeKey = "mode"
	AttrPath       AttributeKey = "path"
	AttrSelector   AttributeKey = "selector"
	AttrHTTPStatus AttributeKey = "http_status"
	AttrMessage    AttributeKey = "message"
	AttrDigest     AttributeKey = "digest"
)
