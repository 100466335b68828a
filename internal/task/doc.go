// Package task manages background job execution, status tracking, and
// record lifecycle. It provides mechanisms for running long-lived operations
// like content generation without blocking HTTP request handling, reporting
// each outcome to a caller-supplied webhook, and bounding registry memory by
// reaping records after a retention window.
package task
