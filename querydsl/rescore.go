package querydsl

import (
	"github.com/billz-2/elasticsearch-dsl/jsondsl"
)

// RescoreScoreMode controls how the original and the rescore scores are combined.
type RescoreScoreMode string

const (
	// ScoreModeAvg averages the original score and the rescore query score.
	ScoreModeAvg RescoreScoreMode = "avg"
	// ScoreModeMin takes the lower of the two scores.
	ScoreModeMin RescoreScoreMode = "min"
	// ScoreModeMax takes the higher of the two scores.
	ScoreModeMax RescoreScoreMode = "max"
	// ScoreModeTotal adds the scores. This is the engine default.
	ScoreModeTotal RescoreScoreMode = "total"
	// ScoreModeMultiply multiplies the original score by the rescore query score.
	ScoreModeMultiply RescoreScoreMode = "multiply"
)

// Rescorer reorders the top documents of the query and post_filter phases
// with a secondary, usually more costly, query.
type Rescorer struct {
	*jsondsl.Node
}

// NewRescorer creates a rescorer examining windowSize documents per shard.
func NewRescorer(windowSize int, configure func(*RescoreQuery)) *Rescorer {
	r := &Rescorer{Node: jsondsl.New()}
	r.SetWindowSize(windowSize)

	rq := NewRescoreQuery()
	if configure != nil {
		configure(rq)
	}
	return r.SetQuery(rq)
}

// WindowSize returns the number of documents examined per shard.
func (r *Rescorer) WindowSize() (int, bool) {
	return r.GetInt(r.PropertyName("windowSize"))
}

// SetWindowSize sets the number of documents examined per shard.
func (r *Rescorer) SetWindowSize(n int) *Rescorer {
	r.SetProperty("windowSize", n)
	return r
}

// Query returns the rescore query block.
func (r *Rescorer) Query() (*RescoreQuery, bool) {
	n, ok := r.GetNode(r.PropertyName("query"))
	if !ok {
		return nil, false
	}
	return &RescoreQuery{Node: n}, true
}

// SetQuery sets the rescore query block.
func (r *Rescorer) SetQuery(rq *RescoreQuery) *Rescorer {
	r.SetProperty("query", rq)
	return r
}

// RescoreQuery holds the secondary query and its weights.
type RescoreQuery struct {
	*jsondsl.Node
}

// NewRescoreQuery creates an empty rescore query block.
func NewRescoreQuery() *RescoreQuery {
	return &RescoreQuery{Node: jsondsl.New()}
}

// Query returns the secondary query, stored as rescore_query.
func (rq *RescoreQuery) Query() (*Query, error) {
	return clauseProperty(rq.Node, "rescoreQuery")
}

// SetQuery sets the secondary query.
func (rq *RescoreQuery) SetQuery(q *Query) *RescoreQuery {
	setClause(rq.Node, "rescoreQuery", q)
	return rq
}

// QueryWeight returns the relative importance of the original query.
func (rq *RescoreQuery) QueryWeight() (float64, bool) {
	return rq.GetFloat(rq.PropertyName("queryWeight"))
}

// SetQueryWeight sets the relative importance of the original query.
func (rq *RescoreQuery) SetQueryWeight(w float64) *RescoreQuery {
	rq.SetProperty("queryWeight", w)
	return rq
}

// RescoreQueryWeight returns the relative importance of the rescore query.
func (rq *RescoreQuery) RescoreQueryWeight() (float64, bool) {
	return rq.GetFloat(rq.PropertyName("rescoreQueryWeight"))
}

// SetRescoreQueryWeight sets the relative importance of the rescore query.
func (rq *RescoreQuery) SetRescoreQueryWeight(w float64) *RescoreQuery {
	rq.SetProperty("rescoreQueryWeight", w)
	return rq
}

// ScoreMode returns the score combination mode.
func (rq *RescoreQuery) ScoreMode() (RescoreScoreMode, bool) {
	s, ok := rq.GetString(rq.PropertyName("scoreMode"))
	return RescoreScoreMode(s), ok
}

// SetScoreMode sets the score combination mode.
func (rq *RescoreQuery) SetScoreMode(m RescoreScoreMode) *RescoreQuery {
	rq.SetProperty("scoreMode", string(m))
	return rq
}
