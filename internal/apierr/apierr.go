// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package apierr provides the typed error representation shared across
// the serving plane: every component returns an *Error with a stable Kind
// string clients branch on, never a raw error message. internal/api maps
// Kind to HTTP status via the table in this package.
package apierr

import (
	"fmt"
	"net/http"
	"time"
)

// Kind is a stable, machine-readable error classification. Clients are
// expected to branch on Kind, never on Message.
type Kind string

const (
	KindValidationFailed    Kind = "VALIDATION_FAILED"
	KindMalformedCredential Kind = "MALFORMED_CREDENTIAL"
	KindUnknownCredential   Kind = "UNKNOWN_CREDENTIAL"
	KindRevokedCredential   Kind = "REVOKED_CREDENTIAL"
	KindExpiredCredential   Kind = "EXPIRED_CREDENTIAL"
	KindScopeInsufficient   Kind = "SCOPE_INSUFFICIENT"
	KindIPNotAllowed        Kind = "IP_NOT_ALLOWED"
	KindNotFound            Kind = "NOT_FOUND"
	KindPlanUpgradeRequired Kind = "PLAN_UPGRADE_REQUIRED"
	KindFeatureNotInPlan    Kind = "FEATURE_NOT_IN_PLAN"
	KindQuotaExceeded       Kind = "QUOTA_EXCEEDED"
	KindStaleEvent          Kind = "STALE_EVENT"
	KindUpstreamUnavailable Kind = "UPSTREAM_UNAVAILABLE"
	KindInternal            Kind = "INTERNAL"
)

// httpStatus is the kind -> HTTP status mapping from the error handling
// design table.
var httpStatus = map[Kind]int{
	KindValidationFailed:    http.StatusBadRequest,
	KindMalformedCredential: http.StatusUnauthorized,
	KindUnknownCredential:   http.StatusUnauthorized,
	KindRevokedCredential:   http.StatusUnauthorized,
	KindExpiredCredential:   http.StatusUnauthorized,
	KindScopeInsufficient:   http.StatusForbidden,
	KindIPNotAllowed:        http.StatusForbidden,
	KindNotFound:            http.StatusNotFound,
	KindPlanUpgradeRequired: http.StatusPaymentRequired,
	KindFeatureNotInPlan:    http.StatusPaymentRequired,
	KindQuotaExceeded:       http.StatusTooManyRequests,
	KindStaleEvent:          http.StatusConflict,
	KindUpstreamUnavailable: http.StatusServiceUnavailable,
	KindInternal:            http.StatusInternalServerError,
}

// HTTPStatus returns the HTTP status code for k, defaulting to 500 for an
// unrecognized kind (treated as internal).
func (k Kind) HTTPStatus() int {
	if status, ok := httpStatus[k]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error is the typed error every serving-plane component returns.
type Error struct {
	Kind    Kind
	Message string

	// Details carries structured context (e.g. validation field errors).
	Details interface{}

	// RetryAfter is set for KindQuotaExceeded / KindUpstreamUnavailable.
	RetryAfter time.Duration

	// UpgradeURL, CurrentPlan, RequiredPlans, FeatureDescription are set
	// for KindPlanUpgradeRequired / KindFeatureNotInPlan.
	UpgradeURL         string
	CurrentPlan        string
	RequiredPlans      []string
	FeatureDescription string

	// Cause is the wrapped underlying error, if any (never serialized).
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap supports errors.Is/errors.As against the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the HTTP status code for this error's kind.
func (e *Error) HTTPStatus() int {
	return e.Kind.HTTPStatus()
}

// New constructs a plain *Error from a kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an *Error that carries an underlying cause, used for
// KindInternal where the cause is logged but never surfaced to the client.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// NotFound is a convenience constructor for the common NOT_FOUND case.
func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

// Internal wraps cause as an opaque internal error; callers should log
// cause themselves with the request id before returning this to the API
// layer, since the message surfaced to the client never includes it.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "an internal error occurred", Cause: cause}
}

// QuotaExceeded builds the QUOTA_EXCEEDED error with its required
// retry_after field.
func QuotaExceeded(message string, retryAfter time.Duration) *Error {
	return &Error{Kind: KindQuotaExceeded, Message: message, RetryAfter: retryAfter}
}

// PlanUpgradeRequired builds the PLAN_UPGRADE_REQUIRED error with the
// fields a deny response must carry.
func PlanUpgradeRequired(currentPlan string, requiredPlans []string, upgradeURL, featureDescription string) *Error {
	return &Error{
		Kind:               KindPlanUpgradeRequired,
		Message:            "this operation requires a higher plan",
		CurrentPlan:        currentPlan,
		RequiredPlans:      requiredPlans,
		UpgradeURL:         upgradeURL,
		FeatureDescription: featureDescription,
	}
}

// FeatureNotInPlan builds the FEATURE_NOT_IN_PLAN error, same shape as
// PlanUpgradeRequired.
func FeatureNotInPlan(currentPlan string, requiredPlans []string, upgradeURL, featureDescription string) *Error {
	return &Error{
		Kind:               KindFeatureNotInPlan,
		Message:            "this feature is not included in your plan",
		CurrentPlan:        currentPlan,
		RequiredPlans:      requiredPlans,
		UpgradeURL:         upgradeURL,
		FeatureDescription: featureDescription,
	}
}

// As attempts to extract an *Error from err, returning (nil, false) if err
// is not (or does not wrap) an *Error.
func As(err error) (*Error, bool) {
	type unwrapper interface{ Unwrap() error }
	for err != nil {
		if apiErr, ok := err.(*Error); ok {
			return apiErr, true
		}
		u, ok := err.(unwrapper)
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}
