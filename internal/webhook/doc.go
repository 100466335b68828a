// Package webhook delivers task results to caller-supplied callback URLs
// with bounded retries and linear backoff. Delivery is at-most-N-attempts,
// not guaranteed: after the final attempt fails, the loss is logged and no
// further action is taken.
package webhook
