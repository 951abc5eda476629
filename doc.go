// Package identity manages user identity: credential verification,
// session token issuance and validation, brute-force lockout, and the
// account lifecycle (create, soft delete, restore).
//
// Authentication:
//   - Auther orchestrates the login sequence: lookup, deleted check,
//     lockout check, status check, bcrypt verification, and token
//     issuance. Failed and successful attempts both persist their
//     counter mutation before returning.
//   - LockoutPolicy is the single owner of lockout arithmetic. Five
//     consecutive failures open a fifteen minute window; an elapsed
//     window counts as unlocked without an explicit clear.
//   - TokenService signs HS256 JWTs carrying the account claim set.
//     Validation re-resolves the subject against the store so tokens
//     outlive neither deletion nor suspension.
//
// Lifecycle:
//   - UserManager creates, updates, soft deletes, and restores
//     accounts over the shared Users repository, so the two cores
//     always agree on whether an account is usable. Creation publishes
//     a user.created event through an EventNotifier.
//   - EventDispatcher is an outbound queue a worker drains into the
//     notifier; publish failures are logged, never propagated, and
//     never roll back a write.
//
// Activity sinks mirror significant auth and lifecycle events for
// auditing. Sinks run best-effort, errors are logged so a slow sink
// cannot block authentication.
package identity
