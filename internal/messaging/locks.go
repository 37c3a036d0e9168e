package messaging

import (
	"hash/fnv"
	"sync"
)

// Mutations to one thread (append, read-mark, close, reopen) must be
// linearized. A sharded lock table keyed by thread id gives each thread a
// serialization domain without a per-thread allocation; operations on
// different threads only contend when they hash to the same shard.
const lockShards = 64

type threadLocks struct {
	shards [lockShards]sync.Mutex
}

func newThreadLocks() *threadLocks {
	return &threadLocks{}
}

// Lock acquires the shard for threadID and returns the release func.
func (l *threadLocks) Lock(threadID string) func() {
	mu := &l.shards[shardIndex(threadID)]
	mu.Lock()
	return mu.Unlock
}

func shardIndex(threadID string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(threadID))
	return h.Sum32() % lockShards
}
