package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginAttempts records login attempts by result (success|wrong_credentials|not_found|error).
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eats_login_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)

	// IdentityResolutions counts how inbound requests were resolved (identified|anonymous) and why.
	IdentityResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eats_identity_resolutions_total",
			Help: "Total number of identity resolutions by outcome",
		},
		[]string{"outcome", "reason"},
	)

	// AccessDenied counts requests rejected by the access guard.
	AccessDenied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eats_access_denied_total",
			Help: "Requests rejected for lack of an authenticated identity",
		},
	)

	// Verifications counts verification code events (issued|consumed|not_found).
	Verifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eats_verifications_total",
			Help: "Verification code lifecycle events",
		},
		[]string{"event"},
	)

	// VerificationEmails counts delivery outcomes (sent|failed).
	VerificationEmails = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eats_verification_emails_total",
			Help: "Verification email delivery outcomes",
		},
		[]string{"result"},
	)
)
