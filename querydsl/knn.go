package querydsl

import (
	"fmt"

	"github.com/billz-2/elasticsearch-dsl/jsondsl"
)

const defaultKnnK = 10

// Knn is an approximate k-nearest-neighbour search on a dense vector field.
type Knn struct {
	*jsondsl.Node
}

type knnSettings struct {
	k             int
	numCandidates int
	configure     func(*jsondsl.Node)
}

// KnnOption configures a Knn clause.
type KnnOption func(*knnSettings)

// WithK sets the number of nearest neighbours to return. Defaults to 10.
func WithK(k int) KnnOption {
	return func(s *knnSettings) { s.k = k }
}

// WithNumCandidates sets the candidate pool size per shard. Defaults to k.
func WithNumCandidates(n int) KnnOption {
	return func(s *knnSettings) { s.numCandidates = n }
}

// WithKnnConfig adds fields such as filter or similarity to the clause.
func WithKnnConfig(configure func(*jsondsl.Node)) KnnOption {
	return func(s *knnSettings) { s.configure = configure }
}

// NewKnn builds a knn clause for field.
func NewKnn(field string, queryVector []float64, opts ...KnnOption) *Knn {
	s := knnSettings{k: defaultKnnK}
	for _, opt := range opts {
		opt(&s)
	}
	if s.numCandidates == 0 {
		s.numCandidates = s.k
	}

	n := jsondsl.New()
	n.SetProperty("field", field)
	n.SetProperty("queryVector", queryVector)
	n.SetProperty("k", s.k)
	n.SetProperty("numCandidates", s.numCandidates)
	n.Apply(s.configure)
	return &Knn{Node: n}
}

// KnnOn builds a knn clause for a typed field reference.
func KnnOn(field fmt.Stringer, queryVector []float64, opts ...KnnOption) *Knn {
	return NewKnn(field.String(), queryVector, opts...)
}

// Field returns the vector field name.
func (k *Knn) Field() (string, bool) {
	return k.GetString("field")
}

// K returns the number of neighbours requested.
func (k *Knn) K() (int, bool) {
	return k.GetInt("k")
}

// NumCandidates returns the candidate pool size.
func (k *Knn) NumCandidates() (int, bool) {
	return k.GetInt("num_candidates")
}

// QueryVector returns the query vector as set.
func (k *Knn) QueryVector() ([]float64, bool) {
	v, ok := k.Get("query_vector")
	if !ok {
		return nil, false
	}
	vec, ok := v.([]float64)
	return vec, ok
}
