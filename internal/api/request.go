// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tunetrail/serving/internal/validation"
)

// decodeAndValidate decodes r's JSON body into dst and runs struct
// validation, writing the appropriate error response and returning false
// on either failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if r.Body != nil {
		defer r.Body.Close()
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		NewResponseWriter(w, r).ValidationFailed("request body is not valid JSON", nil)
		return false
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		NewResponseWriter(w, r).ValidationFailed("request failed validation", verr.Details())
		return false
	}
	return true
}
