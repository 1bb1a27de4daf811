package gap

import "time"

const timeLayout = time.RFC3339

// timeNow is swapped in tests for deterministic timestamps.
var timeNow = time.Now
