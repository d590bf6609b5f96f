// Package lock provides cross-process mutual exclusion with a time-bound
// lease, keyed by an arbitrary string. Acquire hands back an owner token;
// release is a no-op unless the token still matches, so a holder whose lease
// expired cannot release the lock of whoever took it over.
package lock

import (
	"context"
	"time"
)

const (
	paymentKeyPrefix = "lock:payment:"
	webhookKeyPrefix = "lock:webhook:"
)

// PaymentKey serializes concurrent checkout attempts from one client phone.
func PaymentKey(phone string) string {
	return paymentKeyPrefix + phone
}

// WebhookKey serializes duplicate webhook deliveries for one checkout.
func WebhookKey(conversationID string) string {
	return webhookKeyPrefix + conversationID
}

// Locker is the narrow lock-service contract. Any backend with an atomic
// conditional write can implement it.
type Locker interface {
	// Acquire takes the lock if nobody holds it, returning an owner token
	// and true. It returns false without error when the key is held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)

	// Release deletes the key only while token matches the stored owner,
	// returning the number of keys removed (0 or 1).
	Release(ctx context.Context, key, token string) (int64, error)
}
