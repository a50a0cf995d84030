// Package principal classifies a caller identity into one of the classes
// from spec.md §4.B and enforces the authentication/authorization rules
// that gate every ledger and registry operation.
package principal

import (
	"strings"

	"github.com/crnlicp/chronolock/pkg/types"
)

// Class is the tagged sum of caller classes. Classification is a pure
// function of the principal's bytes/text and the current AdminState — it
// never involves a type hierarchy, only a pattern match.
type Class string

const (
	ClassAnonymous            Class = "Anonymous"
	ClassSelfAuthenticating    Class = "SelfAuthenticating"
	ClassInternetIdentityLike  Class = "InternetIdentityLike"
	ClassCanister              Class = "Canister"
	ClassTrusted               Class = "Trusted"
	ClassAdmin                 Class = "Admin"
)

// selfAuthenticatingSuffix marks a 29-byte principal ending in 0x02.
const selfAuthenticatingSuffix = 0x02

// internetIdentitySuffix marks a 10-byte principal ending in 0x01.
const internetIdentitySuffix = 0x01

// iiTextMarker is the canonical textual suffix of an Internet-Identity-like
// principal when only its text form is available.
const iiTextMarker = "-bae"

// Classify returns the caller's class given the raw principal and the
// process-wide admin state (admin principal + trusted set).
func Classify(p types.Principal, admin types.AdminState) Class {
	if p.IsZero() {
		return ClassAnonymous
	}
	if admin.Admin.Equal(p) {
		return ClassAdmin
	}
	if admin.Trusted != nil && admin.Trusted[p.Text] {
		return ClassTrusted
	}
	if len(p.Bytes) == 29 && p.Bytes[len(p.Bytes)-1] == selfAuthenticatingSuffix {
		return ClassSelfAuthenticating
	}
	if len(p.Bytes) == 10 && p.Bytes[len(p.Bytes)-1] == internetIdentitySuffix {
		return ClassInternetIdentityLike
	}
	if strings.HasSuffix(p.Text, iiTextMarker) {
		return ClassInternetIdentityLike
	}
	return ClassCanister
}

// IsAuthenticated reports whether an operation gated by spec.md §4.B's
// general rule should proceed: Admin, Trusted, InternetIdentityLike
// callers, or any caller at all when the bypass flag is set.
func IsAuthenticated(class Class, admin types.AdminState) bool {
	if admin.BypassActive {
		return true
	}
	switch class {
	case ClassAdmin, ClassTrusted, ClassInternetIdentityLike:
		return true
	default:
		return false
	}
}

// RequireAuthenticated is the standard guard at the top of every
// non-admin-only handler.
func RequireAuthenticated(caller types.Principal, admin types.AdminState) error {
	class := Classify(caller, admin)
	if !IsAuthenticated(class, admin) {
		return types.NewError(types.ErrNotAuthenticated, string(class))
	}
	return nil
}

// RequireAdmin additionally demands caller == admin, for admin-only
// operations.
func RequireAdmin(caller types.Principal, admin types.AdminState) error {
	if !admin.Admin.Equal(caller) {
		return types.NewError(types.ErrAdminRequired, "")
	}
	return nil
}

// RequireOwner fails with UnauthorizedCaller when an Account argument's
// owner does not match the resolved caller.
func RequireOwner(caller types.Principal, account types.Account) error {
	if !account.Owner.Equal(caller) {
		return types.NewError(types.ErrUnauthorizedCaller, "")
	}
	return nil
}
