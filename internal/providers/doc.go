// Package providers implements the Provider interface for each supported LLM
// backend.
//
// Supported providers: Anthropic (Claude), OpenAI (GPT) through the official
// SDK, Google (Gemini), Ollama / LM Studio for local models, and Claude models
// hosted on AWS Bedrock.
//
// A provider performs exactly one request per Complete call. Pacing and
// retries belong to package ratelimit; providers only classify failures:
// rate-limit refusals become *RateLimitError (which satisfies the
// RateLimited() bool contract ratelimit looks for), credential problems become
// *AuthError and other non-success statuses become *StatusError.
//
// HTTP clients are fields on each provider so tests can redirect calls to
// local httptest servers without making live API requests.
//
// Use [New] to obtain a Provider by name and model string.
package providers
