package redisx

import "time"

const (
	// Delayed email jobs: sorted set scored by unix not-before time,
	// members are the raw job envelopes.
	KeyEmailDelayed = "email:delayed"

	// Cache of a created order's response body: order_resp:{order_id}
	KeyOrderResp = "order_resp:%s"
)

var (
	TTLOrderResp = 5 * time.Minute
)
