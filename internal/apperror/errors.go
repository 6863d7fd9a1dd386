// Package apperror enumerates the errors services hand back to the transport layer.
package apperror

import "strings"

// ServiceError is a stable, client-visible error code.
type ServiceError string

func (e ServiceError) Error() string {
	return string(e)
}

// Resource returns the code prefix, e.g. "accounts" for "accounts.not_found".
func (e ServiceError) Resource() string {
	resource, _, _ := strings.Cut(string(e), ".")
	return resource
}

// Reason returns the code suffix, e.g. "not_found" for "accounts.not_found".
func (e ServiceError) Reason() string {
	_, reason, _ := strings.Cut(string(e), ".")
	return reason
}

const (
	AccountsCreationFailed    ServiceError = "accounts.creation_failed"
	AccountsDeletionFailed    ServiceError = "accounts.deletion_failed"
	AccountsUpdateFailed      ServiceError = "accounts.update_failed"
	AccountsNotFound          ServiceError = "accounts.not_found"
	AccountsIdentifierInvalid ServiceError = "accounts.identifier_invalid"
	AccountsPasswordInvalid   ServiceError = "accounts.password_invalid"
	AccountsNameInvalid       ServiceError = "accounts.name_invalid"
	AccountsIdentifierExists  ServiceError = "accounts.identifier_exists"

	// Shared by "unknown identifier" and "wrong password" so callers cannot
	// probe which identifiers are registered.
	CredentialsIncorrect ServiceError = "credentials.incorrect"

	SessionsCreationFailed    ServiceError = "sessions.creation_failed"
	SessionsNotFound          ServiceError = "sessions.not_found"
	SessionsIdentifierInvalid ServiceError = "sessions.identifier_invalid"
	SessionsPasswordInvalid   ServiceError = "sessions.password_invalid"
	SessionsExpiresAtInvalid  ServiceError = "sessions.expires_at_invalid"
	SessionsUnauthorized      ServiceError = "sessions.unauthorized"

	LoginAttemptsNotFound          ServiceError = "login_attempts.not_found"
	LoginAttemptsCreationFailed    ServiceError = "login_attempts.creation_failed"
	LoginAttemptsIdentifierInvalid ServiceError = "login_attempts.identifier_invalid"

	ServersCreationFailed       ServiceError = "servers.creation_failed"
	ServersUpdateFailed         ServiceError = "servers.update_failed"
	ServersDeletionFailed       ServiceError = "servers.deletion_failed"
	ServersNotFound             ServiceError = "servers.not_found"
	ServersNameInvalid          ServiceError = "servers.name_invalid"
	ServersRequestLimitInvalid  ServiceError = "servers.request_limit_invalid"
	ServersNameExists           ServiceError = "servers.name_exists"
	ServersAlreadyUpdated       ServiceError = "servers.already_updated"
	ServersPreconditionRequired ServiceError = "servers.precondition_required"
)

// Request-shape errors raised by the transport layer before a service is called.
const (
	RequestBodyInvalid     ServiceError = "request.body_invalid"
	RequestPageInvalid     ServiceError = "request.page_invalid"
	RequestPageSizeInvalid ServiceError = "request.page_size_invalid"
	RequestIDInvalid       ServiceError = "request.id_invalid"
	InternalError          ServiceError = "internal.error"
)
