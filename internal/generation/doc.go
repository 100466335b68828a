// Package generation defines the boundary between the application core and
// external AI/LLM services used as task bodies.
package generation
