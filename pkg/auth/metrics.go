package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TokensIssued tracks successful logins
	TokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_tokens_issued_total",
			Help: "Total number of bearer tokens issued",
		},
	)

	// TokenLookups tracks token validation results
	TokenLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_token_lookups_total",
			Help: "Total number of bearer token lookups by result",
		},
		[]string{"result"}, // "valid", "invalid"
	)

	// LoginFailures tracks rejected credentials
	LoginFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_login_failures_total",
			Help: "Total number of rejected username/password pairs",
		},
	)

	// StoreErrors tracks token store operation errors
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_store_errors_total",
			Help: "Total number of token store operation errors",
		},
		[]string{"operation"}, // "issue", "lookup", "revoke"
	)
)
