// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[Kind]int{
		KindValidationFailed:    http.StatusBadRequest,
		KindMalformedCredential: http.StatusUnauthorized,
		KindScopeInsufficient:   http.StatusForbidden,
		KindNotFound:            http.StatusNotFound,
		KindPlanUpgradeRequired: http.StatusPaymentRequired,
		KindQuotaExceeded:       http.StatusTooManyRequests,
		KindStaleEvent:          http.StatusConflict,
		KindUpstreamUnavailable: http.StatusServiceUnavailable,
		KindInternal:            http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := kind.HTTPStatus(); got != want {
			t.Errorf("%s.HTTPStatus() = %d, want %d", kind, got, want)
		}
	}
}

func TestUnknownKindDefaultsInternal(t *testing.T) {
	if got := Kind("NOT_A_REAL_KIND").HTTPStatus(); got != http.StatusInternalServerError {
		t.Errorf("expected unknown kind to map to 500, got %d", got)
	}
}

func TestAsUnwrapsWrappedError(t *testing.T) {
	cause := errors.New("boom")
	wrapped := fmt.Errorf("while handling request: %w", Internal(cause))

	apiErr, ok := As(wrapped)
	if !ok {
		t.Fatal("expected to find wrapped *Error")
	}
	if apiErr.Kind != KindInternal {
		t.Errorf("expected KindInternal, got %s", apiErr.Kind)
	}
}

func TestInternalNeverLeaksCauseInMessage(t *testing.T) {
	cause := errors.New("connection refused on 10.0.0.5:5432")
	err := Internal(cause)
	if err.Message == cause.Error() {
		t.Error("internal error message must not leak the raw cause")
	}
}
