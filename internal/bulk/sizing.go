package bulk

// DefaultBatch and MaxBatch bound the number of quads accumulated per
// worker batch (§4.5).
const (
	DefaultBatch int64 = 1_000_000
	MaxBatch     int64 = 100_000_000
)

// WorkerCount computes the bulk loader's thread count: max(2, min(C,
// userOverride | memCapBytes/1e6 | C)), where C is the physical core count
// capped at 4. Pass 0 for userOverride or memCapBytes to let the other
// take precedence, and 0 for both to fall back to C itself.
func WorkerCount(physicalCores, userOverride int, memCapBytes int64) int {
	c := physicalCores
	if c > 4 {
		c = 4
	}
	if c < 1 {
		c = 1
	}

	candidate := c
	switch {
	case userOverride > 0:
		candidate = userOverride
	case memCapBytes > 0:
		candidate = int(memCapBytes / 1_000_000)
	}
	if candidate > c {
		candidate = c
	}
	if candidate < 2 {
		candidate = 2
	}
	return candidate
}

// BatchSize computes the bulk loader's per-batch quad count: min(MaxBatch,
// max(DefaultBatch, userOverride | freeMemBytes/threadCount)). Pass 0 for
// userOverride to fall back to freeMemBytes/threadCount, and 0 for
// freeMemBytes (or threadCount) to fall back to DefaultBatch outright.
func BatchSize(userOverride, freeMemBytes int64, threadCount int) int64 {
	candidate := userOverride
	if candidate <= 0 && freeMemBytes > 0 && threadCount > 0 {
		candidate = freeMemBytes / int64(threadCount)
	}

	batch := DefaultBatch
	if candidate > batch {
		batch = candidate
	}
	if batch > MaxBatch {
		batch = MaxBatch
	}
	return batch
}
