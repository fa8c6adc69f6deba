// Package node executes action batches against the Outplay clients the way a
// workflow host drives a node: one input item at a time, with optional
// continue-on-fail semantics.
package node

import (
	"context"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-outplay/core"
	"github.com/goliatone/go-outplay/prospect"
	"github.com/goliatone/go-outplay/scheduler"
)

const (
	ResourceProspect  = "prospect"
	ResourceScheduler = "scheduler"

	OperationSave   = "save"
	OperationGet    = "get"
	OperationCreate = "create"
)

// Request is one input item of a batch run.
type Request struct {
	Resource  string
	Operation string

	// Prospect inputs.
	Prospect   prospect.SaveInput
	ProspectID string

	// Scheduler inputs.
	MeetingType string
	LeadFields  []scheduler.LeadField
}

type RuntimeConfig struct {
	Prospects *prospect.Client
	Scheduler *scheduler.Client
	Logger    core.Logger
	// ContinueOnFail converts per-item failures into synthetic result items
	// instead of aborting the batch.
	ContinueOnFail bool
}

type Runtime struct {
	prospects      *prospect.Client
	scheduler      *scheduler.Client
	logger         core.Logger
	continueOnFail bool
}

func NewRuntime(cfg RuntimeConfig) (*Runtime, error) {
	if cfg.Prospects == nil {
		return nil, fmt.Errorf("node: prospect client is required")
	}
	if cfg.Scheduler == nil {
		return nil, fmt.Errorf("node: scheduler client is required")
	}
	_, logger := glog.Resolve("node", nil, cfg.Logger)
	return &Runtime{
		prospects:      cfg.Prospects,
		scheduler:      cfg.Scheduler,
		logger:         logger,
		continueOnFail: cfg.ContinueOnFail,
	}, nil
}

// ExecuteBatch runs every request in order. Without continue-on-fail the
// first failure aborts the batch; with it, the failed item yields a synthetic
// error item and later items still run.
func (r *Runtime) ExecuteBatch(ctx context.Context, cred core.Credential, requests []Request) ([]map[string]any, error) {
	if r == nil {
		return nil, fmt.Errorf("node: runtime is not configured")
	}

	results := make([]map[string]any, 0, len(requests))
	for index, request := range requests {
		result, err := r.executeOne(ctx, cred, request)
		if err != nil {
			if !r.continueOnFail {
				return nil, annotateItemIndex(core.MapError(err), index)
			}
			r.logger.Error("node: item failed, continuing batch",
				"resource", request.Resource,
				"operation", request.Operation,
				"item_index", index,
				"error", err,
			)
			results = append(results, map[string]any{
				"error":     errorMessage(err),
				"resource":  request.Resource,
				"operation": request.Operation,
				"itemIndex": index,
			})
			continue
		}
		results = append(results, asResultItem(result))
	}
	return results, nil
}

func (r *Runtime) executeOne(ctx context.Context, cred core.Credential, request Request) (any, error) {
	resource := strings.TrimSpace(strings.ToLower(request.Resource))
	operation := strings.TrimSpace(strings.ToLower(request.Operation))

	switch resource {
	case ResourceProspect:
		switch operation {
		case OperationSave:
			return r.prospects.Save(ctx, cred, request.Prospect)
		case OperationGet:
			return r.prospects.Get(ctx, cred, request.ProspectID)
		}
	case ResourceScheduler:
		if operation == OperationCreate {
			return r.scheduler.CreateLead(ctx, cred, request.MeetingType, request.LeadFields)
		}
	}

	return nil, goerrors.New(
		fmt.Sprintf("node: unsupported operation %q on resource %q", operation, resource),
		goerrors.CategoryBadInput,
	).WithTextCode(core.ServiceErrorBadInput)
}

// annotateItemIndex marks which batch item caused the abort, keeping any
// metadata the underlying error already carries.
func annotateItemIndex(err *goerrors.Error, index int) *goerrors.Error {
	if err == nil {
		return nil
	}
	metadata := make(map[string]any, len(err.Metadata)+1)
	for key, value := range err.Metadata {
		metadata[key] = value
	}
	metadata["item_index"] = index
	return err.WithMetadata(metadata)
}

func asResultItem(result any) map[string]any {
	if payload, ok := result.(map[string]any); ok {
		return payload
	}
	if result == nil {
		return map[string]any{}
	}
	return map[string]any{"data": result}
}

func errorMessage(err error) string {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && strings.TrimSpace(richErr.Message) != "" {
		return richErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return "Unknown API error"
}
