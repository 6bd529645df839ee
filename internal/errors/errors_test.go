package errors

import (
	stderrors "errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestIsMatchesByCode(t *testing.T) {
	t.Parallel()

	sentinel := New(CodeTransferToSelf, "Cannot transfer ownership to yourself.")
	derived := sentinel.WithMetadata(map[string]string{"UserID": "user-1"})

	if !stderrors.Is(derived, sentinel) {
		t.Fatal("expected derived error to match sentinel by code")
	}
	if stderrors.Is(derived, New(CodeTransferExpired, "expired")) {
		t.Fatal("expected mismatch across codes")
	}
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	err := New(CodeInvitationExpired, "This invitation has expired.")
	if got := GetCode(err); got != CodeInvitationExpired {
		t.Fatalf("GetCode = %q, want %q", got, CodeInvitationExpired)
	}
	if got := GetCode(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("GetCode for plain error = %q, want %q", got, CodeUnknown)
	}
}

func TestHandleErrorMapsToGRPCStatus(t *testing.T) {
	t.Parallel()

	err := HandleError(New(CodeDeleteNotOwner, "Only the organization owner can delete the organization."), "")
	st, ok := status.FromError(err)
	if !ok {
		t.Fatal("expected gRPC status error")
	}
	if st.Code() != codes.PermissionDenied {
		t.Fatalf("status code = %v, want %v", st.Code(), codes.PermissionDenied)
	}
	if st.Message() != "Only the organization owner can delete the organization." {
		t.Fatalf("unexpected status message %q", st.Message())
	}
}

func TestHandleErrorFormatsMetadata(t *testing.T) {
	t.Parallel()

	err := New(CodeInvitationActiveExists, "active invitation exists").
		WithMetadata(map[string]string{"Email": "a@b.com"})
	st, ok := status.FromError(HandleError(err, "en-US"))
	if !ok {
		t.Fatal("expected gRPC status error")
	}
	if st.Message() != "An active invitation already exists for a@b.com." {
		t.Fatalf("unexpected message %q", st.Message())
	}
}

func TestHandleErrorUnknown(t *testing.T) {
	t.Parallel()

	st, ok := status.FromError(HandleError(stderrors.New("boom"), ""))
	if !ok {
		t.Fatal("expected gRPC status error")
	}
	if st.Code() != codes.Internal {
		t.Fatalf("status code = %v, want %v", st.Code(), codes.Internal)
	}
}
