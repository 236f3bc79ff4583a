package tfidf

import (
	"math"
	"sort"
)

// Index is a TF-IDF vector space built once from a fixed corpus.
// The idf table and document vectors are read-only after construction,
// so an Index is safe for concurrent use.
type Index struct {
	idf     map[string]float64
	vectors []Vector
}

// Hit is a corpus document ranked against a query.
type Hit struct {
	Doc        int
	Similarity float64
}

// NewIndex tokenizes every document, derives idf(term) = ln(N / (1 + df))
// and caches one TF-IDF vector per document. N is floored at one document.
func NewIndex(docs []string) *Index {
	tokenized := make([][]string, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		tokens := Tokenize(doc)
		tokenized[i] = tokens

		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	n := float64(max(len(docs), 1))
	idf := make(map[string]float64, len(df))
	for term, count := range df {
		idf[term] = math.Log(n / float64(1+count))
	}

	idx := &Index{idf: idf, vectors: make([]Vector, len(docs))}
	for i, tokens := range tokenized {
		idx.vectors[i] = idx.weigh(tokens)
	}
	return idx
}

// Len returns the number of documents in the corpus.
func (idx *Index) Len() int {
	return len(idx.vectors)
}

// IDF returns the inverse document frequency of term.
// Terms absent from the corpus return false.
func (idx *Index) IDF(term string) (float64, bool) {
	w, ok := idx.idf[term]
	return w, ok
}

// Vector returns the cached vector of document i.
func (idx *Index) Vector(i int) Vector {
	return idx.vectors[i]
}

// Vectorize weighs text against the existing idf table.
// Out-of-vocabulary terms are dropped.
func (idx *Index) Vectorize(text string) Vector {
	return idx.weigh(Tokenize(text))
}

// weigh computes tf(term) * idf(term) where tf is the raw count divided by
// the document length in tokens.
func (idx *Index) weigh(tokens []string) Vector {
	if len(tokens) == 0 {
		return Vector{}
	}

	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}

	total := float64(len(tokens))
	v := make(Vector, len(counts))
	for term, c := range counts {
		w, ok := idx.idf[term]
		if !ok || w == 0 {
			continue
		}
		v[term] = float64(c) / total * w
	}
	return v
}

// Rank scores every document against text by cosine similarity and returns
// the top n hits with positive similarity in descending order. Hits with
// equal similarity keep corpus order. n <= 0 returns all positive hits.
func (idx *Index) Rank(text string, n int) []Hit {
	q := idx.Vectorize(text)
	if len(q) == 0 {
		return nil
	}

	hits := make([]Hit, 0, len(idx.vectors))
	for i, v := range idx.vectors {
		sim := CosineSimilarity(q, v)
		if sim <= 0 {
			continue
		}
		hits = append(hits, Hit{Doc: i, Similarity: sim})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})

	if n > 0 && len(hits) > n {
		hits = hits[:n]
	}
	return hits
}
