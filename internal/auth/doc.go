// Package auth implements accounts, credential verification, session
// tokens, and the per-request authorization context.
//
// Accounts carry a monotonically increasing version that is embedded in
// every issued token. Bumping the version invalidates all outstanding
// tokens for the account at once, which is how sessions are revoked
// without any server-side session store.
//
// The RequestContext type is the single source of identity for a
// request. Handlers never trust caller-supplied user or device IDs;
// they ask the RequestContext, which resolves identity lazily from the
// bearer token and fails closed when no valid identity is attached.
package auth
