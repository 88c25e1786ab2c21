// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package api wires the serving plane's HTTP surface: routing,
// authentication, authorization, quota enforcement, and the handlers for
// every endpoint in the public API.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tunetrail/serving/internal/apierr"
	"github.com/tunetrail/serving/internal/logging"
)

// Envelope is the response wrapper every endpoint writes: exactly one of
// Data or Error is populated.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorBody mirrors the error-kind table in internal/apierr, plus the
// plan/feature/quota fields spec'd for PLAN_UPGRADE_REQUIRED,
// FEATURE_NOT_IN_PLAN, and QUOTA_EXCEEDED responses.
type ErrorBody struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"request_id,omitempty"`

	RetryAfterSeconds  *int64   `json:"retry_after_seconds,omitempty"`
	UpgradeURL         string   `json:"upgrade_url,omitempty"`
	CurrentPlan        string   `json:"current_plan,omitempty"`
	RequiredPlans      []string `json:"required_plans,omitempty"`
	FeatureDescription string   `json:"feature_description,omitempty"`
}

// Meta carries response metadata shared across every envelope.
type Meta struct {
	RequestID  string `json:"request_id,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
}

// ResponseWriter renders envelopes for a single request, timing the
// handler from construction to the first write.
type ResponseWriter struct {
	w         http.ResponseWriter
	r         *http.Request
	startTime time.Time
}

// NewResponseWriter constructs a ResponseWriter for the current request.
func NewResponseWriter(w http.ResponseWriter, r *http.Request) *ResponseWriter {
	return &ResponseWriter{w: w, r: r, startTime: time.Now()}
}

func (rw *ResponseWriter) meta() *Meta {
	return &Meta{
		RequestID:  logging.RequestIDFromContext(rw.r.Context()),
		DurationMS: time.Since(rw.startTime).Milliseconds(),
	}
}

// Success writes a 200 response carrying data.
func (rw *ResponseWriter) Success(data interface{}) {
	rw.writeJSON(http.StatusOK, Envelope{Success: true, Data: data, Meta: rw.meta()})
}

// Created writes a 201 response carrying the created resource.
func (rw *ResponseWriter) Created(data interface{}) {
	rw.writeJSON(http.StatusCreated, Envelope{Success: true, Data: data, Meta: rw.meta()})
}

// NoContent writes a bare 204.
func (rw *ResponseWriter) NoContent() {
	rw.w.WriteHeader(http.StatusNoContent)
}

// Fail writes the response for a typed *apierr.Error, translating its
// Kind to an HTTP status and carrying every kind-specific field a client
// needs to act on it (upgrade/feature/quota details, retry_after).
func (rw *ResponseWriter) Fail(err *apierr.Error) {
	body := &ErrorBody{
		Code:               string(err.Kind),
		Message:            err.Message,
		Details:            err.Details,
		RequestID:          logging.RequestIDFromContext(rw.r.Context()),
		UpgradeURL:         err.UpgradeURL,
		CurrentPlan:        err.CurrentPlan,
		RequiredPlans:      err.RequiredPlans,
		FeatureDescription: err.FeatureDescription,
	}
	if err.RetryAfter > 0 {
		seconds := int64(err.RetryAfter.Seconds())
		body.RetryAfterSeconds = &seconds
		rw.w.Header().Set("Retry-After", strconv.FormatInt(seconds, 10))
	}
	rw.writeJSON(err.HTTPStatus(), Envelope{Success: false, Error: body, Meta: rw.meta()})
}

// ValidationFailed writes a VALIDATION_FAILED error carrying field-level
// details, the one kind whose Details this package populates itself
// rather than a lower layer.
func (rw *ResponseWriter) ValidationFailed(message string, details interface{}) {
	e := apierr.New(apierr.KindValidationFailed, message)
	e.Details = details
	rw.Fail(e)
}

// InternalError logs cause with the request id and writes an opaque
// INTERNAL error, never surfacing cause to the client.
func (rw *ResponseWriter) InternalError(cause error) {
	logging.CtxErr(rw.r.Context(), cause).Msg("internal error")
	rw.Fail(apierr.Internal(cause))
}

func (rw *ResponseWriter) writeJSON(statusCode int, body Envelope) {
	rw.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.w.WriteHeader(statusCode)
	if err := json.NewEncoder(rw.w).Encode(body); err != nil {
		logging.CtxErr(rw.r.Context(), err).Msg("failed to encode response")
	}
}

