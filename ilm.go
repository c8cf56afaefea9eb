package esclient

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/billz-2/elasticsearch-dsl/jsondsl"
	"github.com/pkg/errors"
)

// IlmPolicy is an index lifecycle policy: a set of phases with their actions.
type IlmPolicy struct {
	*jsondsl.Node
}

// NewIlmPolicy creates an empty lifecycle policy.
func NewIlmPolicy() *IlmPolicy {
	return &IlmPolicy{Node: jsondsl.New()}
}

func (p *IlmPolicy) Hot(configure func(*IlmPhase)) *IlmPolicy {
	return p.Phase("hot", configure)
}

func (p *IlmPolicy) Warm(configure func(*IlmPhase)) *IlmPolicy {
	return p.Phase("warm", configure)
}

func (p *IlmPolicy) Cold(configure func(*IlmPhase)) *IlmPolicy {
	return p.Phase("cold", configure)
}

func (p *IlmPolicy) Frozen(configure func(*IlmPhase)) *IlmPolicy {
	return p.Phase("frozen", configure)
}

// DeletePhase configures the phase that removes indices.
func (p *IlmPolicy) DeletePhase(configure func(*IlmPhase)) *IlmPolicy {
	return p.Phase("delete", configure)
}

// Phase configures the phase called name, creating it on first use.
func (p *IlmPolicy) Phase(name string, configure func(*IlmPhase)) *IlmPolicy {
	phase := &IlmPhase{Node: p.GetOrCreateNode("phases").GetOrCreateNode(name)}
	if configure != nil {
		configure(phase)
	}
	return p
}

// SetMeta attaches user metadata stored with the policy.
func (p *IlmPolicy) SetMeta(meta map[string]interface{}) *IlmPolicy {
	p.Set("_meta", meta)
	return p
}

// IlmPhase is a single lifecycle phase.
type IlmPhase struct {
	*jsondsl.Node
}

// MinAge sets the index age at which the phase starts.
func (ph *IlmPhase) MinAge(d time.Duration) *IlmPhase {
	ph.SetProperty("minAge", formatTimeValue(d))
	return ph
}

// Actions configures the actions run in the phase.
func (ph *IlmPhase) Actions(configure func(*IlmActions)) *IlmPhase {
	actions := &IlmActions{Node: ph.GetOrCreateNode("actions")}
	if configure != nil {
		configure(actions)
	}
	return ph
}

// IlmActions holds the actions of a phase, keyed by action name.
type IlmActions struct {
	*jsondsl.Node
}

// RolloverCondition limits when a rollover happens.
type RolloverCondition func(n *jsondsl.Node)

// MaxPrimaryShardSize rolls over when the largest primary shard reaches size, e.g. "50gb".
func MaxPrimaryShardSize(size string) RolloverCondition {
	return func(n *jsondsl.Node) { n.Set("max_primary_shard_size", size) }
}

func MaxSize(size string) RolloverCondition {
	return func(n *jsondsl.Node) { n.Set("max_size", size) }
}

func MaxAge(d time.Duration) RolloverCondition {
	return func(n *jsondsl.Node) { n.Set("max_age", formatTimeValue(d)) }
}

func MaxDocs(docs int64) RolloverCondition {
	return func(n *jsondsl.Node) { n.Set("max_docs", docs) }
}

// Rollover adds a rollover action with the given conditions.
func (a *IlmActions) Rollover(conditions ...RolloverCondition) *IlmActions {
	n := jsondsl.New()
	for _, cond := range conditions {
		cond(n)
	}
	a.Set("rollover", n)
	return a
}

// Shrink reduces the index to numberOfShards primary shards.
func (a *IlmActions) Shrink(numberOfShards int) *IlmActions {
	a.Set("shrink", jsondsl.Of("number_of_shards", numberOfShards))
	return a
}

// ForceMerge merges the index down to maxNumSegments segments.
func (a *IlmActions) ForceMerge(maxNumSegments int) *IlmActions {
	a.Set("forcemerge", jsondsl.Of("max_num_segments", maxNumSegments))
	return a
}

func (a *IlmActions) SetPriority(priority int) *IlmActions {
	a.Set("set_priority", jsondsl.Of("priority", priority))
	return a
}

func (a *IlmActions) ReadOnly() *IlmActions {
	a.Set("readonly", jsondsl.New())
	return a
}

// DeleteIndex removes the index when the phase is reached.
func (a *IlmActions) DeleteIndex() *IlmActions {
	a.Set("delete", jsondsl.New())
	return a
}

// Custom adds an action that has no dedicated method.
func (a *IlmActions) Custom(name string, configure func(*jsondsl.Node)) *IlmActions {
	a.Set(name, jsondsl.New().Apply(configure))
	return a
}

// IlmPolicyInfo is a stored lifecycle policy as returned by the engine.
type IlmPolicyInfo struct {
	Version      int64           `json:"version"`
	ModifiedDate string          `json:"modified_date"`
	Policy       *jsondsl.Node   `json:"policy"`
	InUseBy      json.RawMessage `json:"in_use_by,omitempty"`
}

// Phases returns the phase names of the stored policy in engine order.
func (i *IlmPolicyInfo) Phases() []string {
	phases, ok := i.Policy.GetNode("phases")
	if !ok {
		return nil
	}
	return phases.Keys()
}

// PutIlmPolicy creates or replaces the lifecycle policy called name.
func (c *Client) PutIlmPolicy(ctx context.Context, name string, policy *IlmPolicy) (*AcknowledgedResponse, error) {
	if name == "" {
		return nil, errors.New("policy name is required")
	}
	if policy == nil {
		return nil, errors.New("policy is required")
	}

	body, err := jsonBody(jsondsl.Of("policy", policy))
	if err != nil {
		return nil, err
	}

	var resp AcknowledgedResponse
	_, err = c.perform(ctx, request{
		op:     "put_ilm_policy",
		method: http.MethodPut,
		path:   []string{"_ilm", "policy", name},
		body:   body,
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &resp, nil
}

// GetIlmPolicy fetches the lifecycle policy called name.
// An unknown policy returns a 404 *StatusError.
func (c *Client) GetIlmPolicy(ctx context.Context, name string) (*IlmPolicyInfo, error) {
	if name == "" {
		return nil, errors.New("policy name is required")
	}

	var resp map[string]IlmPolicyInfo
	_, err := c.perform(ctx, request{
		op:     "get_ilm_policy",
		method: http.MethodGet,
		path:   []string{"_ilm", "policy", name},
	}, &resp)
	if err != nil {
		return nil, err
	}

	info, ok := resp[name]
	if !ok {
		return nil, errors.Errorf("policy %q missing from response", name)
	}
	return &info, nil
}

// DeleteIlmPolicy removes the lifecycle policy called name.
func (c *Client) DeleteIlmPolicy(ctx context.Context, name string) (*AcknowledgedResponse, error) {
	if name == "" {
		return nil, errors.New("policy name is required")
	}

	var resp AcknowledgedResponse
	_, err := c.perform(ctx, request{
		op:     "delete_ilm_policy",
		method: http.MethodDelete,
		path:   []string{"_ilm", "policy", name},
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &resp, nil
}
