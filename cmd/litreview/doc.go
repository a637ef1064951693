// Litreview is a local-first CLI for LLM-assisted literature reviews.
//
// It downloads arXiv papers, analyzes each one against a project document,
// and writes per-paper summaries plus a meta-summary. Analyses are cached on
// disk so repeated runs only pay for new papers.
//
// Usage:
//
//	litreview analyze                    # analyze every paper in paper_list.txt
//	litreview analyze <arxiv-url>...     # analyze the given papers
//	litreview summarize <raw.json>...    # meta-summary from stored results
//	litreview fetch                      # download papers only
//	litreview gather                     # export summaries to CSV
//	litreview collect --days 30          # list recent cs.LG papers
package main
