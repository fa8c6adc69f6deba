package outplay_test

import (
	"context"
	"testing"

	gocmd "github.com/goliatone/go-command"
	outplay "github.com/goliatone/go-outplay"
	outplaycommand "github.com/goliatone/go-outplay/command"
	"github.com/goliatone/go-outplay/core"
	"github.com/goliatone/go-outplay/devkit"
	"github.com/goliatone/go-outplay/node"
	"github.com/goliatone/go-outplay/prospect"
	outplayquery "github.com/goliatone/go-outplay/query"
)

func testCredential() core.Credential {
	return core.Credential{Location: "US", ClientID: "client-1", ClientSecret: "secret-1"}
}

func testNode() core.NodeRef {
	return core.NodeRef{WorkflowID: "wf-1", NodeID: "node-1"}
}

func newTestService(t *testing.T, api core.APICaller) (*outplay.Service, *devkit.MemoryNodeStateStore, *devkit.CaptureTriggerSink) {
	t.Helper()
	store := devkit.NewMemoryNodeStateStore()
	sink := devkit.NewCaptureTriggerSink()
	service, err := outplay.NewService(outplay.ServiceConfig{
		API:        api,
		StateStore: store,
		URLResolver: core.WebhookURLResolverFunc(func(context.Context, core.NodeRef) (string, error) {
			return "https://host/hook", nil
		}),
		Sink: sink,
	})
	if err != nil {
		t.Fatalf("expected service, got error: %v", err)
	}
	return service, store, sink
}

func TestNewServiceRequiresStateCollaborators(t *testing.T) {
	resolver := core.WebhookURLResolverFunc(func(context.Context, core.NodeRef) (string, error) {
		return "https://host/hook", nil
	})

	if _, err := outplay.NewService(outplay.ServiceConfig{
		API:         devkit.NewScriptedAPICaller(),
		URLResolver: resolver,
		Sink:        devkit.NewCaptureTriggerSink(),
	}); err == nil {
		t.Fatal("expected missing state store error")
	}

	if _, err := outplay.NewService(outplay.ServiceConfig{
		API:        devkit.NewScriptedAPICaller(),
		StateStore: devkit.NewMemoryNodeStateStore(),
		Sink:       devkit.NewCaptureTriggerSink(),
	}); err == nil {
		t.Fatal("expected missing url resolver error")
	}

	if _, err := outplay.NewService(outplay.ServiceConfig{
		API:         devkit.NewScriptedAPICaller(),
		StateStore:  devkit.NewMemoryNodeStateStore(),
		URLResolver: resolver,
	}); err == nil {
		t.Fatal("expected missing trigger sink error")
	}
}

func TestNewServiceResolvesLayeredConfig(t *testing.T) {
	provider := core.NewCfgxConfigProvider(core.NewStaticRawConfigLoader(map[string]any{
		"service_name":     "outplay-loaded",
		"continue_on_fail": true,
		"credential": map[string]any{
			"location":  "US",
			"client_id": "client-loaded",
		},
	}))

	service, err := outplay.NewService(outplay.ServiceConfig{
		API:        devkit.NewScriptedAPICaller(),
		StateStore: devkit.NewMemoryNodeStateStore(),
		URLResolver: core.WebhookURLResolverFunc(func(context.Context, core.NodeRef) (string, error) {
			return "https://host/hook", nil
		}),
		Sink:           devkit.NewCaptureTriggerSink(),
		ConfigProvider: provider,
		Config: core.Config{
			Credential: core.Credential{ClientID: "client-runtime"},
		},
	})
	if err != nil {
		t.Fatalf("expected service, got error: %v", err)
	}

	cfg := service.Config()
	if cfg.ServiceName != "outplay-loaded" {
		t.Fatalf("loaded layer must win over defaults, got %q", cfg.ServiceName)
	}
	if cfg.Credential.ClientID != "client-runtime" {
		t.Fatalf("runtime layer must win over loaded, got %q", cfg.Credential.ClientID)
	}
	if cfg.Credential.Location != "US" {
		t.Fatalf("loaded values must survive where runtime is silent, got %q", cfg.Credential.Location)
	}
	if !cfg.ContinueOnFail {
		t.Fatal("expected loaded continue_on_fail to apply")
	}

	// The resolved flag drives the batch runtime, not just the accessor.
	results, err := service.ExecuteBatch(context.Background(), testCredential(), []node.Request{
		{Resource: node.ResourceProspect, Operation: "delete"},
	})
	if err != nil {
		t.Fatalf("config-enabled continue-on-fail batch must not abort, got %v", err)
	}
	if len(results) != 1 || results[0]["error"] == "" {
		t.Fatalf("expected synthetic error item, got %+v", results)
	}
}

func TestFacadeRoutesCommandsAndQueries(t *testing.T) {
	api := devkit.NewScriptedAPICaller(
		devkit.APIScript{Result: map[string]any{"id": "p-1"}},
		devkit.APIScript{Result: map[string]any{"id": "p-1", "firstname": "Ada"}},
	)
	service, _, _ := newTestService(t, api)

	facade, err := outplay.NewFacade(service)
	if err != nil {
		t.Fatalf("expected facade, got error: %v", err)
	}

	collector := gocmd.NewResult[any]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)
	err = facade.Commands().SaveProspect.Execute(ctx, outplaycommand.SaveProspectMessage{
		Credential: testCredential(),
		Input:      prospect.SaveInput{Email: "ada@example.com", FirstName: "Ada"},
	})
	if err != nil {
		t.Fatalf("execute save prospect: %v", err)
	}
	if result, ok := collector.Load(); !ok || result == nil {
		t.Fatalf("expected stored save result, got %v %v", result, ok)
	}

	got, err := facade.Queries().GetProspect.Query(context.Background(), outplayquery.GetProspectMessage{
		Credential: testCredential(),
		ProspectID: "p-1",
	})
	if err != nil {
		t.Fatalf("query get prospect: %v", err)
	}
	if payload, ok := got.(map[string]any); !ok || payload["firstname"] != "Ada" {
		t.Fatalf("unexpected prospect payload: %#v", got)
	}
}

func TestServiceWebhookLifecycle(t *testing.T) {
	api := devkit.NewScriptedAPICaller(
		devkit.APIScript{Result: map[string]any{"id": "wh-1"}},
		devkit.APIScript{Result: map[string]any{"status": "removed"}},
	)
	service, store, _ := newTestService(t, api)
	ctx := context.Background()

	if err := service.SubscribeWebhook(ctx, testCredential(), testNode(), core.EventProspectCreated); err != nil {
		t.Fatalf("subscribe webhook: %v", err)
	}
	sub, found, _ := store.Load(ctx, testNode())
	if !found || sub.WebhookID != "wh-1" {
		t.Fatalf("expected stored subscription, got found=%v %+v", found, sub)
	}

	// A second subscribe for the same event is a no-op.
	if err := service.SubscribeWebhook(ctx, testCredential(), testNode(), core.EventProspectCreated); err != nil {
		t.Fatalf("repeat subscribe: %v", err)
	}
	if calls := api.Calls(); len(calls) != 1 {
		t.Fatalf("expected a single subscribe call, got %d", len(calls))
	}

	if err := service.UnsubscribeWebhook(ctx, testCredential(), testNode(), ""); err != nil {
		t.Fatalf("unsubscribe webhook: %v", err)
	}
	if _, found, _ := store.Load(ctx, testNode()); found {
		t.Fatal("expected cleared subscription after unsubscribe")
	}
}

func TestServiceHandleDeliveryFeedsSink(t *testing.T) {
	api := devkit.NewScriptedAPICaller()
	service, _, sink := newTestService(t, api)

	result, err := service.HandleDelivery(context.Background(), testNode(), core.EventProspectCreated, core.InboundRequest{
		Body: []byte(`{"event": "1", "prospect": {"id": "p-1"}}`),
	})
	if err != nil {
		t.Fatalf("handle delivery: %v", err)
	}
	if len(result.Items) != 1 || len(sink.Deliveries()) != 1 {
		t.Fatalf("expected one delivered item, got %+v", result)
	}
}

func TestServiceExecuteBatchContinueOnFail(t *testing.T) {
	api := devkit.NewScriptedAPICaller(
		devkit.APIScript{Result: map[string]any{"id": "p-1"}},
	)
	store := devkit.NewMemoryNodeStateStore()
	service, err := outplay.NewService(outplay.ServiceConfig{
		API:        api,
		StateStore: store,
		URLResolver: core.WebhookURLResolverFunc(func(context.Context, core.NodeRef) (string, error) {
			return "https://host/hook", nil
		}),
		Sink:           devkit.NewCaptureTriggerSink(),
		ContinueOnFail: true,
	})
	if err != nil {
		t.Fatalf("expected service, got error: %v", err)
	}

	results, err := service.ExecuteBatch(context.Background(), testCredential(), []node.Request{
		{Resource: node.ResourceProspect, Operation: node.OperationGet, ProspectID: "p-1"},
		{Resource: node.ResourceProspect, Operation: "delete"},
	})
	if err != nil {
		t.Fatalf("execute batch: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[1]["itemIndex"] != 1 || results[1]["error"] == "" {
		t.Fatalf("expected synthetic error item, got %+v", results[1])
	}
}
