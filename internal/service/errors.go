package service

// Error kinds. Stable machine-readable tags; callers branch on these, never
// on message text.
const (
	KindMissingField       = "missing_field"
	KindDuplicateEmail     = "duplicate_email"
	KindInvalidCredentials = "invalid_credentials"
	KindUnauthorized       = "unauthorized"
	KindNotFound           = "not_found"
	KindStoreUnavailable   = "store_unavailable"
)

// Error is the service-level error: a kind for machines plus a message for
// humans. Messages never contain password hashes or the signing secret.
type Error struct {
	Kind    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func errMissingField(field string) *Error {
	return &Error{Kind: KindMissingField, Message: field + " is required"}
}

func errDuplicateEmail() *Error {
	return &Error{Kind: KindDuplicateEmail, Message: "email already registered"}
}

func errInvalidCredentials() *Error {
	return &Error{Kind: KindInvalidCredentials, Message: "invalid identifier or password"}
}

func errUnauthorized() *Error {
	return &Error{Kind: KindUnauthorized, Message: "authentication required"}
}

func errNotFound() *Error {
	return &Error{Kind: KindNotFound, Message: "account not found"}
}

func errStoreUnavailable() *Error {
	return &Error{Kind: KindStoreUnavailable, Message: "account store unavailable"}
}
