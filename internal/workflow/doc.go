// Package workflow runs the four-stage drafting pipeline: intent analysis,
// angle planning, drafting, and refinement. The Engine offers a batch Run and
// a channel-based Stream; both produce the same events and outputs for the
// same inputs.
package workflow
