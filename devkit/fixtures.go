// Package devkit holds in-memory fixtures used across the go-outplay test
// suites: a scripted transport, a scripted API caller, a node state store,
// and a capturing trigger sink.
package devkit

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-outplay/core"
)

type APIScript struct {
	Result any
	Err    error
}

type RecordedCall struct {
	Credential core.Credential
	Request    core.APIRequest
}

// ScriptedAPICaller replays scripted results in order, repeating the last
// script when calls outnumber scripts.
type ScriptedAPICaller struct {
	mu      sync.Mutex
	scripts []APIScript
	calls   []RecordedCall
}

func NewScriptedAPICaller(scripts ...APIScript) *ScriptedAPICaller {
	return &ScriptedAPICaller{scripts: append([]APIScript(nil), scripts...)}
}

func (c *ScriptedAPICaller) CallJSON(_ context.Context, cred core.Credential, req core.APIRequest) (any, error) {
	if c == nil {
		return nil, fmt.Errorf("devkit: scripted api caller is nil")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, RecordedCall{Credential: cred, Request: req})
	index := len(c.calls) - 1
	if index < len(c.scripts) {
		return c.scripts[index].Result, c.scripts[index].Err
	}
	if len(c.scripts) > 0 {
		last := c.scripts[len(c.scripts)-1]
		return last.Result, last.Err
	}
	return nil, nil
}

func (c *ScriptedAPICaller) Calls() []RecordedCall {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]RecordedCall(nil), c.calls...)
}

// MemoryNodeStateStore is a map-backed core.NodeStateStore.
type MemoryNodeStateStore struct {
	mu      sync.Mutex
	records map[string]core.WebhookSubscription
}

func NewMemoryNodeStateStore() *MemoryNodeStateStore {
	return &MemoryNodeStateStore{records: map[string]core.WebhookSubscription{}}
}

func (s *MemoryNodeStateStore) Load(_ context.Context, node core.NodeRef) (core.WebhookSubscription, bool, error) {
	if s == nil {
		return core.WebhookSubscription{}, false, fmt.Errorf("devkit: node state store is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.records[node.Key()]
	return sub, ok, nil
}

func (s *MemoryNodeStateStore) Save(_ context.Context, node core.NodeRef, sub core.WebhookSubscription) error {
	if s == nil {
		return fmt.Errorf("devkit: node state store is nil")
	}
	if err := node.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[node.Key()] = sub
	return nil
}

func (s *MemoryNodeStateStore) Clear(_ context.Context, node core.NodeRef) error {
	if s == nil {
		return fmt.Errorf("devkit: node state store is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, node.Key())
	return nil
}

// CaptureTriggerSink records every delivered batch of trigger items.
type CaptureTriggerSink struct {
	mu         sync.Mutex
	deliveries [][]core.TriggerItem
	Err        error
}

func NewCaptureTriggerSink() *CaptureTriggerSink {
	return &CaptureTriggerSink{}
}

func (s *CaptureTriggerSink) Deliver(_ context.Context, _ core.NodeRef, items []core.TriggerItem) error {
	if s == nil {
		return fmt.Errorf("devkit: trigger sink is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.deliveries = append(s.deliveries, append([]core.TriggerItem(nil), items...))
	return nil
}

func (s *CaptureTriggerSink) Deliveries() [][]core.TriggerItem {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]core.TriggerItem, 0, len(s.deliveries))
	for _, items := range s.deliveries {
		out = append(out, append([]core.TriggerItem(nil), items...))
	}
	return out
}

var (
	_ core.APICaller      = (*ScriptedAPICaller)(nil)
	_ core.NodeStateStore = (*MemoryNodeStateStore)(nil)
	_ core.TriggerSink    = (*CaptureTriggerSink)(nil)
)
