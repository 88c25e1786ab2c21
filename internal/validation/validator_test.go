// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package validation

import "testing"

func TestGetValidatorSingleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()
	if v1 != v2 {
		t.Error("GetValidator should return the same singleton instance")
	}
}

type sampleRequest struct {
	Name  string `validate:"required,min=1,max=100"`
	Email string `validate:"omitempty,email"`
	Limit int    `validate:"min=1,max=1000"`
}

func TestValidateStructValid(t *testing.T) {
	req := sampleRequest{Name: "acme", Email: "a@example.com", Limit: 50}
	if err := ValidateStruct(&req); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateStructMissingRequired(t *testing.T) {
	req := sampleRequest{Limit: 50}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error for missing name")
	}
	if len(err.Fields) != 1 || err.Fields[0].Field != "Name" {
		t.Fatalf("expected one Name field error, got %+v", err.Fields)
	}
}

func TestValidateStructInvalidEmail(t *testing.T) {
	req := sampleRequest{Name: "acme", Email: "not-an-email", Limit: 1}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error for invalid email")
	}
}

func TestValidateStructOutOfRange(t *testing.T) {
	req := sampleRequest{Name: "acme", Limit: 5000}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error for limit above max")
	}
	details := err.Details()
	if len(details) != 1 {
		t.Fatalf("expected one detail entry, got %d", len(details))
	}
}
