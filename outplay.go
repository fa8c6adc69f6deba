// Package outplay integrates the Outplay CRM: prospect upserts, scheduler
// lead creation, and webhook-driven triggers, addressed through a single
// service facade.
package outplay

import (
	"context"
	"fmt"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-outplay/account"
	"github.com/goliatone/go-outplay/core"
	"github.com/goliatone/go-outplay/node"
	"github.com/goliatone/go-outplay/prospect"
	"github.com/goliatone/go-outplay/scheduler"
	"github.com/goliatone/go-outplay/transport"
	"github.com/goliatone/go-outplay/trigger"
)

type ServiceConfig struct {
	// API overrides the default REST-backed caller; tests inject scripted
	// callers here.
	API core.APICaller
	// Transport backs the default API caller when API is nil.
	Transport core.TransportAdapter

	StateStore  core.NodeStateStore
	URLResolver core.WebhookURLResolver
	Sink        core.TriggerSink

	Logger         core.Logger
	LoggerProvider core.LoggerProvider

	// Config holds runtime overrides; it is resolved over the loaded and
	// default layers during construction.
	Config core.Config
	// ConfigProvider supplies the loaded layer. Defaults to an empty cfgx
	// provider.
	ConfigProvider core.ConfigProvider
	// OptionsResolver merges defaults < loaded < runtime.
	OptionsResolver core.OptionsResolver

	ContinueOnFail bool
	// Now pins the clock for synthetic webhook ids.
	Now func() time.Time
}

// Service is the integration entry point. It implements the command and
// query service contracts.
type Service struct {
	api       core.APICaller
	accounts  *account.Client
	prospects *prospect.Client
	scheduler *scheduler.Client
	manager   *trigger.Manager
	inbound   *trigger.InboundProcessor
	runtime   *node.Runtime
	logger    core.Logger
	config    core.Config
}

func NewService(cfg ServiceConfig) (*Service, error) {
	_, logger := glog.Resolve("outplay", cfg.LoggerProvider, cfg.Logger)

	api := cfg.API
	if api == nil {
		api = transport.NewAPIClient(cfg.Transport)
	}
	if cfg.StateStore == nil {
		return nil, fmt.Errorf("outplay: node state store is required")
	}
	if cfg.URLResolver == nil {
		return nil, fmt.Errorf("outplay: webhook url resolver is required")
	}
	if cfg.Sink == nil {
		return nil, fmt.Errorf("outplay: trigger sink is required")
	}
	if cfg.ConfigProvider == nil {
		cfg.ConfigProvider = core.NewCfgxConfigProvider(nil)
	}
	if cfg.OptionsResolver == nil {
		cfg.OptionsResolver = core.GoOptionsResolver{}
	}

	defaults := core.DefaultConfig()
	loaded, err := cfg.ConfigProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, core.MapError(err)
	}
	runtimeCfg := cfg.Config
	if cfg.ContinueOnFail {
		runtimeCfg.ContinueOnFail = true
	}
	resolved, err := cfg.OptionsResolver.Resolve(defaults, loaded, runtimeCfg)
	if err != nil {
		return nil, core.MapError(err)
	}

	accounts, err := account.NewClient(api)
	if err != nil {
		return nil, err
	}
	prospects, err := prospect.NewClient(api)
	if err != nil {
		return nil, err
	}
	schedulerClient, err := scheduler.NewClient(api, logger)
	if err != nil {
		return nil, err
	}
	manager, err := trigger.NewManager(trigger.ManagerConfig{
		Account: accounts,
		Store:   cfg.StateStore,
		URLs:    cfg.URLResolver,
		Logger:  logger,
		Now:     cfg.Now,
	})
	if err != nil {
		return nil, err
	}
	inbound, err := trigger.NewInboundProcessor(cfg.Sink, logger)
	if err != nil {
		return nil, err
	}
	runtime, err := node.NewRuntime(node.RuntimeConfig{
		Prospects:      prospects,
		Scheduler:      schedulerClient,
		Logger:         logger,
		ContinueOnFail: resolved.ContinueOnFail,
	})
	if err != nil {
		return nil, err
	}

	return &Service{
		api:       api,
		accounts:  accounts,
		prospects: prospects,
		scheduler: schedulerClient,
		manager:   manager,
		inbound:   inbound,
		runtime:   runtime,
		logger:    logger,
		config:    resolved,
	}, nil
}

// Config returns the layered configuration the service was built with.
func (s *Service) Config() core.Config {
	if s == nil {
		return core.Config{}
	}
	return s.config
}

func (s *Service) SaveProspect(ctx context.Context, cred core.Credential, in prospect.SaveInput) (any, error) {
	if s == nil {
		return nil, fmt.Errorf("outplay: service is not configured")
	}
	return s.prospects.Save(ctx, cred, in)
}

func (s *Service) GetProspect(ctx context.Context, cred core.Credential, prospectID string) (any, error) {
	if s == nil {
		return nil, fmt.Errorf("outplay: service is not configured")
	}
	return s.prospects.Get(ctx, cred, prospectID)
}

func (s *Service) CreateLead(ctx context.Context, cred core.Credential, meetingType string, fields []scheduler.LeadField) (any, error) {
	if s == nil {
		return nil, fmt.Errorf("outplay: service is not configured")
	}
	return s.scheduler.CreateLead(ctx, cred, meetingType, fields)
}

func (s *Service) MeetingTypeOptions(ctx context.Context, cred core.Credential) []core.OptionItem {
	if s == nil {
		return []core.OptionItem{}
	}
	return s.scheduler.MeetingTypeOptions(ctx, cred)
}

func (s *Service) MeetingFormFieldOptions(ctx context.Context, cred core.Credential, meetingType string) []core.OptionItem {
	if s == nil {
		return []core.OptionItem{}
	}
	return s.scheduler.MeetingFormFieldOptions(ctx, cred, meetingType)
}

func (s *Service) PingCredential(ctx context.Context, cred core.Credential) error {
	if s == nil {
		return fmt.Errorf("outplay: service is not configured")
	}
	return s.accounts.Ping(ctx, cred)
}

func (s *Service) SubscribeWebhook(ctx context.Context, cred core.Credential, nodeRef core.NodeRef, event string) error {
	if s == nil {
		return fmt.Errorf("outplay: service is not configured")
	}
	exists, err := s.manager.CheckExists(ctx, cred, nodeRef, event)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.manager.Create(ctx, cred, nodeRef, event)
}

func (s *Service) UnsubscribeWebhook(ctx context.Context, cred core.Credential, nodeRef core.NodeRef, event string) error {
	if s == nil {
		return fmt.Errorf("outplay: service is not configured")
	}
	return s.manager.Delete(ctx, cred, nodeRef, event)
}

func (s *Service) ReconcileSubscription(ctx context.Context, cred core.Credential, nodeRef core.NodeRef, event string) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("outplay: service is not configured")
	}
	return s.manager.EnsureSubscribed(ctx, cred, nodeRef, event)
}

// HandleDelivery routes one inbound webhook delivery for the node.
func (s *Service) HandleDelivery(ctx context.Context, nodeRef core.NodeRef, event string, req core.InboundRequest) (core.InboundResult, error) {
	if s == nil {
		return core.InboundResult{}, fmt.Errorf("outplay: service is not configured")
	}
	return s.inbound.HandleDelivery(ctx, nodeRef, event, req)
}

// ExecuteBatch runs action items the way a workflow host drives the node.
func (s *Service) ExecuteBatch(ctx context.Context, cred core.Credential, requests []node.Request) ([]map[string]any, error) {
	if s == nil {
		return nil, fmt.Errorf("outplay: service is not configured")
	}
	return s.runtime.ExecuteBatch(ctx, cred, requests)
}

// Trigger exposes the subscription manager for job wiring.
func (s *Service) Trigger() *trigger.Manager {
	if s == nil {
		return nil
	}
	return s.manager
}
