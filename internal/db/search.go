package db

// VectorField is the schema alias every vector index in this service uses for
// its embedding attribute; SearchKNN queries and score parsing rely on it.
const VectorField = "embedding"

// KNNQuery is the input for vector similarity search. Tags are ANDed into the
// FT.SEARCH pre-filter so only matching documents enter the KNN scan.
type KNNQuery struct {
	IndexName    string
	Tags         map[string]string
	Vector       []float32
	K            int
	ReturnFields []string
}

// ListQuery is the input for tag-filtered listing via FT.SEARCH.
type ListQuery struct {
	IndexName    string
	Tags         map[string]string
	SortBy       string
	SortDesc     bool
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
