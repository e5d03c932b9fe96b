package tender

import (
	"context"
)

// CandidateQuery bounds the coarse SQL cut for comparable-candidate
// retrieval.  The staged relaxation and diversity rules are applied in the
// application layer; the repository only excludes the bidder's own records
// and trims by the widest price band so the working set stays manageable.
type CandidateQuery struct {
	// ExcludeContractor removes the bidder's own awards from the market set.
	// Empty means no exclusion.
	ExcludeContractor string

	// MinAmount / MaxAmount bound the contract amount.  Zero means
	// unbounded on that side.
	MinAmount int64
	MaxAmount int64

	// Limit caps the number of returned rows.  Zero means the repository
	// default.
	Limit int
}

// TenderRepository defines the persistence contract for open tenders.
type TenderRepository interface {
	// GetByID returns the tender with the given identifier, or an
	// ErrCodeTenderNotFound AppError when no such tender exists.
	GetByID(ctx context.Context, id string) (*Tender, error)

	// Search returns open tenders matching the filter, ordered by bid date
	// ascending, capped by the filter's limit.
	Search(ctx context.Context, f Filter) ([]Tender, error)

	// FilterOptions returns the distinct attribute values available for
	// building search filters.
	FilterOptions(ctx context.Context) (*FilterOptions, error)

	// BulkUpsert inserts or replaces tenders in batch.  Used by data loaders.
	BulkUpsert(ctx context.Context, tenders []Tender) error
}

// AwardRepository defines the persistence contract for historical awards.
type AwardRepository interface {
	// FindCandidates returns market awards for comparable selection, most
	// recent first.
	FindCandidates(ctx context.Context, q CandidateQuery) ([]Award, error)

	// FindByContractor returns all awards won by the given contractor, most
	// recent first.
	FindByContractor(ctx context.Context, contractor string) ([]Award, error)

	// BulkInsert inserts awards in batch.  Used by data loaders.
	BulkInsert(ctx context.Context, awards []Award) error
}
