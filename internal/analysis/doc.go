// Package analysis turns papers into LLM analyses and analyses into a
// meta-summary.
//
// [Analyzer] builds the request content for one paper, serves it from the
// result cache when possible and otherwise sends it through the shared
// ratelimit.Caller. [Summarizer] does the same for the aggregate request over
// every analysis in a batch. Both fail with an *ItemError naming the item when
// the provider keeps refusing or errors out, and neither caches a failure.
//
// The request content is the cache key, so any change to the context
// document, the paper text or the instruction template produces a fresh
// analysis.
package analysis
