// Package rank scores stored documents against query embeddings. Scoring is
// hybrid: cosine similarity over the embeddings plus an additive lexical
// boost for literal keyword overlap, which corrects weak embedding signals
// on short queries. All functions are pure.
package rank

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/engramco/engram/pkg/vector"
)

const (
	// LexicalBoostPerToken is the additive bonus for each distinct query
	// token found in a document's content. The contribution is unbounded
	// above, so enough keyword overlap can outweigh a purely semantic
	// near-miss.
	LexicalBoostPerToken = 0.05

	// minTokenLength keeps short, noisy query tokens out of the boost.
	minTokenLength = 3

	// DefaultTopK is the result count used when callers pass k <= 0.
	DefaultTopK = 3
)

// Scored pairs a document with its ranking breakdown. Never persisted.
type Scored struct {
	vector.Document

	// Cosine is the semantic similarity in [-1, 1], or 0 when either
	// vector has zero norm.
	Cosine float64

	// LexicalBoost is the keyword-overlap bonus, >= 0.
	LexicalBoost float64

	// FinalScore is Cosine + LexicalBoost.
	FinalScore float64
}

var nonWord = regexp.MustCompile(`\W+`)

// Normalize scales v to unit length. A zero-norm vector is returned
// unchanged; the degenerate case is documented, not an error.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}

	norm := math.Sqrt(sum)
	if norm == 0 {
		return v
	}

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}

	return out
}

// Cosine computes dot(a,b) / (‖a‖·‖b‖), accumulating in float64. It returns
// 0 when either norm is zero (a saturation policy, not a similarity value)
// and fails when the vectors disagree in length.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", vector.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// QueryTokens extracts the distinct lower-cased tokens of length >= 3 that
// feed the lexical boost. Splitting is on non-word boundaries.
func QueryTokens(query string) []string {
	parts := nonWord.Split(strings.ToLower(query), -1)

	seen := make(map[string]bool, len(parts))
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(p) < minTokenLength || seen[p] {
			continue
		}
		seen[p] = true
		tokens = append(tokens, p)
	}

	return tokens
}

// LexicalBoost counts the distinct tokens appearing as substrings of the
// lower-cased content, weighted by LexicalBoostPerToken.
func LexicalBoost(tokens []string, content string) float64 {
	lowered := strings.ToLower(content)

	matched := 0
	for _, tok := range tokens {
		if strings.Contains(lowered, tok) {
			matched++
		}
	}

	return LexicalBoostPerToken * float64(matched)
}

// Score ranks a single document: the cosine of the normalized query against
// the stored vector, plus the lexical boost for the given query tokens.
func Score(query []float32, doc vector.Document, tokens []string) (Scored, error) {
	cos, err := Cosine(Normalize(query), doc.Embedding)
	if err != nil {
		return Scored{}, err
	}

	boost := LexicalBoost(tokens, doc.Content)

	return Scored{
		Document:     doc,
		Cosine:       cos,
		LexicalBoost: boost,
		FinalScore:   cos + boost,
	}, nil
}

// TopK scores every document and returns the k best by FinalScore in
// descending order. The sort is stable, so equal scores keep insertion
// order (first inserted wins). k <= 0 falls back to DefaultTopK; an empty
// document set yields an empty result, not an error. An all-zero query
// degrades to pure lexical-boost ordering.
func TopK(query []float32, docs []vector.Document, tokens []string, k int) ([]Scored, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	q := Normalize(query)

	scored := make([]Scored, 0, len(docs))
	for _, doc := range docs {
		cos, err := Cosine(q, doc.Embedding)
		if err != nil {
			return nil, err
		}

		boost := LexicalBoost(tokens, doc.Content)
		scored = append(scored, Scored{
			Document:     doc,
			Cosine:       cos,
			LexicalBoost: boost,
			FinalScore:   cos + boost,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].FinalScore > scored[j].FinalScore
	})

	if len(scored) > k {
		scored = scored[:k]
	}

	return scored, nil
}
