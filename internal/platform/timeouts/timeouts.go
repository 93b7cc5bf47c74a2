// Package timeouts defines shared timeout constants used across commands.
package timeouts

import "time"

// ReadHeader limits how long the feed server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the feed server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// ScenarioStep caps a single scripted scenario step.
const ScenarioStep = 10 * time.Second
