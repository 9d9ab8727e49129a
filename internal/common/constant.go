package common

// AuthHeaderName is the HTTP header carrying the bearer access token on
// outbound requests to the remote store.
const AuthHeaderName = "Authorization"

// IdempotencyKeyHeaderName carries the record's local id on remote creates
// so a retried create after a crash is not applied twice by a backend that
// honors the key.
const IdempotencyKeyHeaderName = "X-Idempotency-Key"
