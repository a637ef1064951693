// Package gather turns the markdown summaries of a review into a table.
//
// [ParseSummary] reads one summary and pulls out its sections (summary,
// relation to the project, potential extensions) and the NN/100 relevance
// score with its reasoning. [Collect] pairs every paper in the list with its
// newest summary file and arXiv metadata, and [WriteCSV] writes the result.
package gather
