package validator

import (
	"strings"
	"testing"
)

type samplePayload struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
}

func TestValidateStructPasses(t *testing.T) {
	payload := samplePayload{Username: "frank", Email: "frank@example.com"}
	if err := ValidateStruct(payload); err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	payload := samplePayload{Username: "ab", Email: "not-an-email"}

	err := ValidateStruct(payload)
	if err == nil {
		t.Fatal("expected validation failure")
	}

	failures, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(failures) != 2 {
		t.Fatalf("expected 2 failures, got %d", len(failures))
	}
	if failures[0].Field != "username" || failures[0].Tag != "min" {
		t.Fatalf("unexpected first failure: %+v", failures[0])
	}
	if failures[1].Field != "email" || failures[1].Tag != "email" {
		t.Fatalf("unexpected second failure: %+v", failures[1])
	}

	if !strings.Contains(err.Error(), "username") {
		t.Fatalf("expected message to reference json field name, got %q", err.Error())
	}
}

func TestUsernameRule(t *testing.T) {
	type payload struct {
		Username string `json:"username" validate:"required,username"`
	}

	for _, ok := range []string{"frank", "Frank", "f.lastname-42", "9lives", "a_b"} {
		if err := ValidateStruct(payload{Username: ok}); err != nil {
			t.Fatalf("expected %q to be a valid username, got %v", ok, err)
		}
	}

	for _, bad := range []string{".frank", "-frank", "fr ank", "frank!", "frank@example.com"} {
		err := ValidateStruct(payload{Username: bad})
		if err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
		failures, ok := err.(ValidationErrors)
		if !ok || len(failures) != 1 || failures[0].Tag != "username" {
			t.Fatalf("expected a username failure for %q, got %v", bad, err)
		}
	}
}
