// Package arxiv downloads papers and queries metadata from arXiv.
//
// PDFs are fetched from https://arxiv.org/pdf/<id> into a papers directory
// and reused when already present. Metadata and searches go through the
// Atom export API. All requests share one pacing limiter and a circuit
// breaker so a failing API is not hammered.
package arxiv
