package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("product", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("title", "title is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("Email already exists"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Forbidden wraps ErrForbidden",
			err:       Forbidden("You can only edit your own products"),
			target:    ErrForbidden,
			wantMatch: true,
		},
		{
			name:      "Unauthenticated wraps ErrUnauthenticated",
			err:       Unauthenticated("Access token required"),
			target:    ErrUnauthenticated,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("product", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "Conflict does NOT match ErrForbidden",
			err:       Conflict("Product is not available"),
			target:    ErrForbidden,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

// Sentinels must survive another layer of wrapping — services frequently do
// fmt.Errorf("checking out: %w", err) before the handler inspects the chain.
func TestErrorsIsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("checking out: %w", Conflict(`Product "Lamp" is no longer available`))
	if !errors.Is(err, ErrConflict) {
		t.Error("wrapped Conflict not detected by errors.Is")
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("errors.As failed to extract *AppError")
	}
	if appErr.Message != `Product "Lamp" is no longer available` {
		t.Errorf("Message = %q", appErr.Message)
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("product", "abc123"),
			wantMessage: "product not found with id abc123",
		},
		{
			name:        "NotFoundMsg uses custom message",
			err:         NotFoundMsg("Item not found in cart"),
			wantMessage: "Item not found in cart",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("price", "Price must be a positive number"),
			wantMessage: "Price must be a positive number",
		},
		{
			name:        "Conflict passes message through",
			err:         Conflict("You cannot add your own product to cart"),
			wantMessage: "You cannot add your own product to cart",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("email", "Please provide a valid email")

	if err.Field != "email" {
		t.Errorf("Field = %q, want %q", err.Field, "email")
	}
}
