package project

import "time"

// timeLayout is the timestamp format used in persisted records.
const timeLayout = time.RFC3339

// timeNow is a package-level hook so tests can freeze time.
var timeNow = time.Now
