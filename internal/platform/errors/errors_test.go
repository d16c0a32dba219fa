package errors

import (
	stderrors "errors"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	a := New(CodeParamBoundsInvalid, "probability out of range")
	b := New(CodeParamBoundsInvalid, "different message, same code")

	if !stderrors.Is(a, b) {
		t.Fatal("expected errors with the same code to match")
	}
}

func TestErrorIsRejectsDifferentCode(t *testing.T) {
	a := New(CodeParamBoundsInvalid, "probability out of range")
	b := New(CodeConfigInvalid, "bad config")

	if stderrors.Is(a, b) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("underlying")
	err := Wrap(CodeMatrixRowNotStochastic, "row 2 sums to 1.02", cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be traversable")
	}
	if err.Error() != "row 2 sums to 1.02" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestWithMetadata(t *testing.T) {
	err := WithMetadata(CodeParamResidualNegative, "residual below zero", map[string]string{
		"state": "NYHA34",
	})
	if err.Metadata["state"] != "NYHA34" {
		t.Fatalf("unexpected metadata: %v", err.Metadata)
	}
}
