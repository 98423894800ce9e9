// Package limits implements the quota and reward token logic.
//
// The Engine consumes post and vote events, charges posts against the
// free-post window or the token balance, and issues/revokes reward tokens on
// exact threshold crossings. Policy reads (may-post, may-vote, quota) are
// pure queries against the ledger.
package limits
