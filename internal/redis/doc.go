// Package redis implements the Redis-backed quota ledger.
//
// Provides LedgerStore (atomic post charging, token accounting, vote spam
// tracking via Lua scripts), Notifier (user notifications over Pub/Sub), and
// EventSubscriber (inbound event intake over Pub/Sub).
package redis
