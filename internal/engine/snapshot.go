package engine

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/weftlabs/weft/internal/graph"
	"github.com/weftlabs/weft/internal/ledger"
	"github.com/weftlabs/weft/internal/statebus"
)

// Snapshot is the persistable state of an engine mid-run: the graph with its
// built results, the run ledger, and the stepped-execution queue. Restoring
// it resumes a prepared run where it left off.
type Snapshot struct {
	FlowID    string           `yaml:"flow_id,omitempty"`
	RunID     string           `yaml:"run_id,omitempty"`
	SessionID string           `yaml:"session_id,omitempty"`
	Graph     *graph.Snapshot  `yaml:"graph"`
	Ledger    *ledger.Snapshot `yaml:"ledger"`
	RunQueue  []string         `yaml:"run_queue,omitempty"`
	Prepared  bool             `yaml:"prepared,omitempty"`
}

// Snapshot captures the engine state for persistence.
func (e *Engine) Snapshot() *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return &Snapshot{
		FlowID:    e.flowID,
		RunID:     e.runID,
		SessionID: e.sessionID,
		Graph:     e.graph.Snapshot(),
		Ledger:    e.led.Snapshot(),
		RunQueue:  append([]string(nil), e.runQueue...),
		Prepared:  e.prepared,
	}
}

// Restore rebuilds an engine from a snapshot. The collaborators come from
// cfg as in New; cfg.FlowID is overridden by the snapshot's.
func Restore(snap *Snapshot, cfg Config) (*Engine, error) {
	g, err := graph.FromSnapshot(snap.Graph)
	if err != nil {
		return nil, fmt.Errorf("restoring graph: %w", err)
	}
	cfg.FlowID = snap.FlowID
	e := New(g, cfg)
	e.runID = snap.RunID
	e.sessionID = snap.SessionID
	if snap.Ledger != nil {
		e.led = ledger.FromSnapshot(snap.Ledger)
	}
	e.runQueue = append([]string(nil), snap.RunQueue...)
	e.prepared = snap.Prepared
	if snap.RunID != "" {
		e.bus = statebus.New(snap.RunID)
		for _, id := range g.StateIDs() {
			v, err := g.GetVertex(id)
			if err != nil || v.Data.ListenName == "" {
				continue
			}
			e.bus.Subscribe(id, v.Data.ListenName)
		}
	}
	return e, nil
}

// EncodeSnapshot serializes a snapshot to YAML.
func EncodeSnapshot(snap *Snapshot) ([]byte, error) {
	out, err := yaml.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return out, nil
}

// DecodeSnapshot deserializes a snapshot from YAML.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &snap, nil
}
