package analysis

import (
	"errors"
	"fmt"

	"github.com/diogo-cruz/literature-review/internal/cache"
)

// MetaItemID is the cache item identifier of the aggregate request.
const MetaItemID = "meta_summary"

// ErrEmptyBatch is returned when a meta-summary is requested over no analyses.
var ErrEmptyBatch = errors.New("no analyses to summarize")

// Result is the analysis of one paper. The JSON layout matches the cached
// records and the raw output files.
type Result struct {
	Analysis    string `json:"analysis"`
	SourceText  string `json:"paper_text"`
	ContextText string `json:"project_context"`

	// Cached reports whether the result was served from the cache.
	Cached bool `json:"-"`
}

type metaRecord struct {
	Summary string `json:"summary"`
	Papers  int    `json:"papers"`
}

// ItemError reports that no result could be produced for an item.
type ItemError struct {
	ItemID string
	Err    error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("analysis of %s failed: %v", e.ItemID, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// Store is the cache the orchestrators read from and write to.
// *cache.Cache satisfies it.
type Store interface {
	Get(itemID, content string) (cache.Entry, bool)
	Save(itemID, content string, payload any) error
}

type noStore struct{}

func (noStore) Get(string, string) (cache.Entry, bool) { return cache.Entry{}, false }
func (noStore) Save(string, string, any) error         { return nil }
