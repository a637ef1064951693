package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Paper is the metadata of one arXiv entry.
type Paper struct {
	ID        string
	Title     string
	Authors   []string
	Abstract  string
	Published time.Time
	URL       string
}

// AuthorList joins the author names with ", ".
func (p Paper) AuthorList() string {
	return strings.Join(p.Authors, ", ")
}

// Query selects papers from the export API.
type Query struct {
	Search string
	IDs    []string
	// MaxResults caps the number of papers returned; zero means all.
	MaxResults int
	// SortBy is "relevance", "lastUpdatedDate" or "submittedDate".
	SortBy    string
	SortOrder string
}

type atomFeed struct {
	XMLName      xml.Name    `xml:"http://www.w3.org/2005/Atom feed"`
	TotalResults int         `xml:"http://a9.com/-/spec/opensearch/1.1/ totalResults"`
	Entries      []atomEntry `xml:"http://www.w3.org/2005/Atom entry"`
}

type atomEntry struct {
	ID        string       `xml:"http://www.w3.org/2005/Atom id"`
	Title     string       `xml:"http://www.w3.org/2005/Atom title"`
	Summary   string       `xml:"http://www.w3.org/2005/Atom summary"`
	Published string       `xml:"http://www.w3.org/2005/Atom published"`
	Authors   []atomAuthor `xml:"http://www.w3.org/2005/Atom author"`
}

type atomAuthor struct {
	Name string `xml:"http://www.w3.org/2005/Atom name"`
}

func (e atomEntry) paper() Paper {
	p := Paper{
		ID:       e.ID[strings.LastIndex(e.ID, "/")+1:],
		Title:    collapse(e.Title),
		Abstract: strings.TrimSpace(e.Summary),
		URL:      strings.TrimSpace(e.ID),
	}
	for _, a := range e.Authors {
		p.Authors = append(p.Authors, collapse(a.Name))
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Published)); err == nil {
		p.Published = t
	}
	return p
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Metadata looks up a single paper by identifier.
func (c *Client) Metadata(ctx context.Context, id string) (Paper, error) {
	papers, err := c.Search(ctx, Query{IDs: []string{id}, MaxResults: 1})
	if err != nil {
		return Paper{}, err
	}
	// Unknown identifiers come back as a single entry titled "Error".
	if len(papers) == 0 || papers[0].Title == "Error" {
		return Paper{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return papers[0], nil
}

// Search pages through the export API. When a later page fails the papers
// collected so far are returned along with the error.
func (c *Client) Search(ctx context.Context, q Query) ([]Paper, error) {
	var papers []Paper
	for start := 0; ; {
		size := c.pageSize
		if q.MaxResults > 0 && q.MaxResults-len(papers) < size {
			size = q.MaxResults - len(papers)
		}
		feed, err := c.page(ctx, q, start, size)
		if err != nil {
			return papers, err
		}
		for _, e := range feed.Entries {
			papers = append(papers, e.paper())
		}
		start += len(feed.Entries)

		switch {
		case q.MaxResults > 0 && len(papers) >= q.MaxResults:
			return papers, nil
		case start >= feed.TotalResults:
			return papers, nil
		case len(feed.Entries) == 0:
			c.logger.Warn("arxiv returned an empty page before the end of results",
				"query", q.Search, "collected", len(papers), "total", feed.TotalResults)
			return papers, nil
		}
	}
}

func (c *Client) page(ctx context.Context, q Query, start, size int) (atomFeed, error) {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search_query", q.Search)
	}
	if len(q.IDs) > 0 {
		v.Set("id_list", strings.Join(q.IDs, ","))
	}
	v.Set("start", strconv.Itoa(start))
	v.Set("max_results", strconv.Itoa(size))
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
	}
	if q.SortOrder != "" {
		v.Set("sortOrder", q.SortOrder)
	}
	endpoint := c.apiBase + "?" + v.Encode()

	out, err := c.breaker.Execute(func() (any, error) {
		resp, err := c.get(ctx, endpoint)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		var feed atomFeed
		if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
			return nil, fmt.Errorf("decoding feed: %w", err)
		}
		return feed, nil
	})
	if err != nil {
		return atomFeed{}, fmt.Errorf("querying arxiv: %w", err)
	}
	return out.(atomFeed), nil
}

const (
	chunkPause      = 3 * time.Second
	submittedLayout = "20060102"
)

// CollectRecent gathers the papers in category submitted over the last
// daysBack days, one chunkDays-wide window at a time. Duplicates across
// windows are dropped. A window that fails after yielding papers is logged
// and kept; one that fails empty aborts the collection.
func (c *Client) CollectRecent(ctx context.Context, daysBack, chunkDays int, category string) ([]Paper, error) {
	if daysBack <= 0 || chunkDays <= 0 {
		return nil, fmt.Errorf("days back and chunk size must be positive")
	}
	end := c.now().UTC()
	start := end.AddDate(0, 0, -daysBack)
	c.logger.Info("collecting recent papers", "category", category, "since", start.Format(time.DateOnly))

	seen := make(map[string]bool)
	var all []Paper
	for from := start; from.Before(end); {
		to := from.AddDate(0, 0, chunkDays)
		if to.After(end) {
			to = end
		}
		q := Query{
			Search:    fmt.Sprintf("cat:%s AND submittedDate:[%s TO %s]", category, from.Format(submittedLayout), to.Format(submittedLayout)),
			SortBy:    "submittedDate",
			SortOrder: "descending",
		}
		c.logger.Info("collecting window", "from", from.Format(time.DateOnly), "to", to.Format(time.DateOnly))
		papers, err := c.Search(ctx, q)
		if err != nil {
			if len(papers) == 0 {
				return all, fmt.Errorf("collecting %s to %s: %w", from.Format(time.DateOnly), to.Format(time.DateOnly), err)
			}
			c.logger.Warn("window ended early", "from", from.Format(time.DateOnly), "collected", len(papers), "error", err)
		}
		for _, p := range papers {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			all = append(all, p)
		}

		from = to
		if from.Before(end) {
			if err := c.sleep(ctx, chunkPause); err != nil {
				return all, err
			}
		}
	}
	c.logger.Info("collected recent papers", "category", category, "count", len(all))
	return all, nil
}
