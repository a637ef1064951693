// Package redact scrubs credentials out of text.
//
// [Secrets] is applied to the project context and paper text before they are
// sent to a provider when privacy.redact_secrets is enabled, and [Error] wraps
// provider errors so that keys embedded in request URLs never reach the logs.
//
// Detection uses regex heuristics covering common secret shapes: API keys,
// JWTs, private keys, AWS access key IDs and secret access keys, bearer
// tokens, and provider-specific tokens (Anthropic, OpenAI, Google, GitHub,
// Slack).
package redact
