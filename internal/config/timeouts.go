package config

import (
	"os"
	"strconv"
	"time"
)

// Minimum settle delays. Security policy and index creation in OpenSearch
// Serverless are eventually consistent; shorter waits let the knowledge base
// create call fail with an authorization error on the index.
const (
	MinPolicySettle = 60 * time.Second
	MinIndexSettle  = 30 * time.Second
)

// Timeouts holds all configurable poll intervals, ceilings and settle delays.
// These values can be customized via environment variables.
type Timeouts struct {
	CollectionPoll    time.Duration // Interval between collection status checks
	Collection        time.Duration // Ceiling for the collection to become ACTIVE
	KnowledgeBasePoll time.Duration // Interval between knowledge base status checks
	KnowledgeBase     time.Duration // Ceiling for the knowledge base to become ACTIVE
	IngestionPoll     time.Duration // Interval between ingestion job status checks
	Ingestion         time.Duration // Ceiling for the ingestion job to COMPLETE
	PollJitter        float64       // Fraction of the interval randomly added or removed
	PolicySettle      time.Duration // Wait after attaching collection access
	IndexSettle       time.Duration // Wait after creating the vector index
	Delete            time.Duration // Timeout for each teardown delete
	RetryMaxAttempts  int           // Maximum number of retry attempts
	RetryInitialDelay time.Duration // Initial delay between retries
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - KBSTACK_COLLECTION_POLL (default: 5s)
//   - KBSTACK_TIMEOUT_COLLECTION (default: 20m)
//   - KBSTACK_KNOWLEDGE_BASE_POLL (default: 5s)
//   - KBSTACK_TIMEOUT_KNOWLEDGE_BASE (default: 10m)
//   - KBSTACK_INGESTION_POLL (default: 10s)
//   - KBSTACK_TIMEOUT_INGESTION (default: 60m)
//   - KBSTACK_POLL_JITTER (default: 0.1)
//   - KBSTACK_POLICY_SETTLE (default: 60s, never below MinPolicySettle)
//   - KBSTACK_INDEX_SETTLE (default: 30s, never below MinIndexSettle)
//   - KBSTACK_TIMEOUT_DELETE (default: 5m)
//   - KBSTACK_RETRY_MAX_ATTEMPTS (default: 5)
//   - KBSTACK_RETRY_INITIAL_DELAY (default: 2s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		CollectionPoll:    parseDuration("KBSTACK_COLLECTION_POLL", 5*time.Second),
		Collection:        parseDuration("KBSTACK_TIMEOUT_COLLECTION", 20*time.Minute),
		KnowledgeBasePoll: parseDuration("KBSTACK_KNOWLEDGE_BASE_POLL", 5*time.Second),
		KnowledgeBase:     parseDuration("KBSTACK_TIMEOUT_KNOWLEDGE_BASE", 10*time.Minute),
		IngestionPoll:     parseDuration("KBSTACK_INGESTION_POLL", 10*time.Second),
		Ingestion:         parseDuration("KBSTACK_TIMEOUT_INGESTION", 60*time.Minute),
		PollJitter:        parseFloat("KBSTACK_POLL_JITTER", 0.1),
		PolicySettle:      atLeast(parseDuration("KBSTACK_POLICY_SETTLE", MinPolicySettle), MinPolicySettle),
		IndexSettle:       atLeast(parseDuration("KBSTACK_INDEX_SETTLE", MinIndexSettle), MinIndexSettle),
		Delete:            parseDuration("KBSTACK_TIMEOUT_DELETE", 5*time.Minute),
		RetryMaxAttempts:  parseInt("KBSTACK_RETRY_MAX_ATTEMPTS", 5),
		RetryInitialDelay: parseDuration("KBSTACK_RETRY_INITIAL_DELAY", 2*time.Second),
	}
}

func atLeast(d, floor time.Duration) time.Duration {
	if d < floor {
		return floor
	}
	return d
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}

func parseFloat(envVar string, defaultVal float64) float64 {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	f, err := strconv.ParseFloat(val, 64)
	if err != nil || f < 0 || f >= 1 {
		return defaultVal
	}

	return f
}
