package redis

import (
	goredis "github.com/redis/go-redis/v9"
)

// Lua scripts for atomic quota accounting. Each script is a single round
// trip, so two concurrent calls for the same user serialize completely:
// neither ever observes or acts on the other's pre-increment values.

// chargePostScript increments the post counter for the active window
// (creating it with the window TTL if absent) and spends a token only once
// the free quota is used up. The returned free-posts-remaining goes negative
// when the user posts on tokens.
// KEYS: [1]=post counter, [2]=token balance
// ARGV: [1]=free quota, [2]=token cost, [3]=window ttl seconds
var chargePostScript = goredis.NewScript(`
local used = redis.call('INCR', KEYS[1])
if used == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[3])
end
local balance = tonumber(redis.call('GET', KEYS[2])) or 0
if used > tonumber(ARGV[1]) then
    balance = redis.call('DECRBY', KEYS[2], ARGV[2])
end
return {tonumber(ARGV[1]) - used, balance}
`)

// recordVoteScript increments the per-target vote counter and applies the
// spam escalation inside the same atomic step: a fresh counter starts the
// spam window, the first vote past the limit restarts it as a cooldown, and
// a further vote while a lockout is still ticking upgrades it to the ban
// duration.
// KEYS: [1]=vote counter
// ARGV: [1]=max votes, [2]=cooldown seconds, [3]=ban seconds
var recordVoteScript = goredis.NewScript(`
local count = redis.call('INCR', KEYS[1])
local max = tonumber(ARGV[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[2])
elseif count > max then
    local ttl = redis.call('TTL', KEYS[1])
    if count > max + 1 and ttl > 0 then
        redis.call('EXPIRE', KEYS[1], ARGV[3])
    else
        redis.call('EXPIRE', KEYS[1], ARGV[2])
    end
end
return count
`)

// awardOnceScript grants a reward at most once per target: the granted flag
// and the balance increment happen in one atomic step, so a redelivered or
// repeated threshold event never awards twice.
// KEYS: [1]=granted flag, [2]=token balance
// ARGV: [1]=gain
var awardOnceScript = goredis.NewScript(`
if redis.call('SETNX', KEYS[1], '1') == 1 then
    return {1, redis.call('INCRBY', KEYS[2], ARGV[1])}
end
return {0, tonumber(redis.call('GET', KEYS[2])) or 0}
`)

// revokeOnceScript takes a reward back only if the granted flag is set,
// clearing it in the same step. A retraction that never saw an award leaves
// the balance untouched.
// KEYS: [1]=granted flag, [2]=token balance
// ARGV: [1]=gain
var revokeOnceScript = goredis.NewScript(`
if redis.call('DEL', KEYS[1]) == 1 then
    return {1, redis.call('DECRBY', KEYS[2], ARGV[1])}
end
return {0, tonumber(redis.call('GET', KEYS[2])) or 0}
`)

// dropZeroBalanceScript deletes a token key only if its balance is exactly
// zero. Running the check and the delete in one script keeps the sweep safe
// against a concurrent AdjustTokens on the same key.
// KEYS: [1]=token balance
var dropZeroBalanceScript = goredis.NewScript(`
if redis.call('GET', KEYS[1]) == '0' then
    return redis.call('DEL', KEYS[1])
end
return 0
`)
