package promptvault

// CategoryUndefined is reported when no category wins with enough
// confidence or when the input is degenerate.
const CategoryUndefined = "Undefined"

// ReferencePrompt is a labelled example used to build the category
// classifier's vector space. The set is fixed when the classifier is built.
type ReferencePrompt struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Text     string `json:"text"`
}

// Neighbor is one reference prompt that voted in a classification.
type Neighbor struct {
	Text       string  `json:"text"`
	Category   string  `json:"category"`
	Similarity float64 `json:"similarity"`
}

// ClassificationResult is the outcome of categorizing a prompt text.
// Confidence is always within [0, 1].
type ClassificationResult struct {
	Category   string     `json:"category"`
	Confidence float64    `json:"confidence"`
	Neighbors  []Neighbor `json:"neighbors"`
}

// Defined reports whether a category other than CategoryUndefined won.
func (r ClassificationResult) Defined() bool {
	return r.Category != "" && r.Category != CategoryUndefined
}

// CategoryClassifier assigns a category to prompt text.
type CategoryClassifier interface {
	Classify(text string) ClassificationResult
}

// PromptMatch is a candidate near-duplicate of a query text.
// SimilarityScore is always within [0, 1].
type PromptMatch struct {
	CandidateText        string  `json:"candidateText"`
	SimilarityScore      float64 `json:"similarityScore"`
	IsPotentialDuplicate bool    `json:"isPotentialDuplicate"`
}

// DuplicateFinder ranks existing prompt texts by similarity to a query.
type DuplicateFinder interface {
	// FindSimilar returns candidates sorted by descending similarity.
	// Candidates that are not duplicates are included.
	FindSimilar(text string) []PromptMatch
}

