package account

import (
	"context"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-outplay/core"
	"github.com/goliatone/go-outplay/devkit"
)

func testCredential() core.Credential {
	return core.Credential{Location: "US", ClientID: "client-1", ClientSecret: "secret-1"}
}

func TestPingUsesAccountEndpoint(t *testing.T) {
	api := devkit.NewScriptedAPICaller(devkit.APIScript{Result: map[string]any{"status": "ok"}})
	client, err := NewClient(api)
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}

	if err := client.Ping(context.Background(), testCredential()); err != nil {
		t.Fatalf("expected ping to succeed, got %v", err)
	}

	calls := api.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 api call, got %d", len(calls))
	}
	if calls[0].Request.Method != "GET" || calls[0].Request.Path != "/account/Ping" {
		t.Fatalf("unexpected ping request: %+v", calls[0].Request)
	}
}

func TestPingFailureBecomesCredentialError(t *testing.T) {
	api := devkit.NewScriptedAPICaller(devkit.APIScript{
		Err: goerrors.New("transport: outplay api returned 401: bad secret", goerrors.CategoryAuth).WithCode(401),
	})
	client, _ := NewClient(api)

	err := client.Ping(context.Background(), testCredential())
	if err == nil {
		t.Fatal("expected ping error")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected rich error, got %T", err)
	}
	if richErr.TextCode != core.ServiceErrorCredentialInvalid {
		t.Fatalf("expected text code %s, got %s", core.ServiceErrorCredentialInvalid, richErr.TextCode)
	}
	if richErr.Code != 401 {
		t.Fatalf("expected status 401, got %d", richErr.Code)
	}
}

func TestSubscribeWebhookSendsJSONBodyAndReadsID(t *testing.T) {
	api := devkit.NewScriptedAPICaller(devkit.APIScript{Result: map[string]any{"id": float64(9001)}})
	client, _ := NewClient(api)

	result, err := client.SubscribeWebhook(context.Background(), testCredential(), "https://host/hook", core.EventProspectCreated)
	if err != nil {
		t.Fatalf("expected subscribe to succeed, got %v", err)
	}
	if result.WebhookID != "9001" {
		t.Fatalf("expected webhook id 9001, got %q", result.WebhookID)
	}

	calls := api.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 api call, got %d", len(calls))
	}
	req := calls[0].Request
	if req.Method != "POST" || req.Path != "/account/SubscribeWebHook" {
		t.Fatalf("unexpected subscribe request: %+v", req)
	}
	body, ok := req.Body.(map[string]any)
	if !ok {
		t.Fatalf("expected map body, got %T", req.Body)
	}
	if body["target_url"] != "https://host/hook" || body["event"] != core.EventProspectCreated {
		t.Fatalf("unexpected subscribe body: %+v", body)
	}
	if len(req.Query) != 0 {
		t.Fatalf("subscribe should not pass arguments via query, got %+v", req.Query)
	}
	if req.Headers["User-Agent"] == "" {
		t.Fatal("expected subscribe request to carry a user agent")
	}
}

func TestSubscribeWebhookRejectsInvalidEvent(t *testing.T) {
	api := devkit.NewScriptedAPICaller()
	client, _ := NewClient(api)

	if _, err := client.SubscribeWebhook(context.Background(), testCredential(), "https://host/hook", "7"); err == nil {
		t.Fatal("expected invalid event error")
	}
	if len(api.Calls()) != 0 {
		t.Fatal("invalid event must not reach the network")
	}
}

func TestSubscribeWebhookFailureCarriesStatusAndMessage(t *testing.T) {
	api := devkit.NewScriptedAPICaller(devkit.APIScript{
		Err: goerrors.New("transport: outplay api returned 409: already subscribed", goerrors.CategoryExternal).WithCode(409),
	})
	client, _ := NewClient(api)

	_, err := client.SubscribeWebhook(context.Background(), testCredential(), "https://host/hook", core.EventProspectUpdated)
	if err == nil {
		t.Fatal("expected subscribe error")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected rich error, got %T", err)
	}
	if richErr.TextCode != core.ServiceErrorWebhookSubscribe {
		t.Fatalf("expected text code %s, got %s", core.ServiceErrorWebhookSubscribe, richErr.TextCode)
	}
	if richErr.Code != 409 {
		t.Fatalf("expected status 409, got %d", richErr.Code)
	}
	if !strings.Contains(richErr.Message, "409") || !strings.Contains(richErr.Message, "already subscribed") {
		t.Fatalf("expected message to surface status and cause, got %q", richErr.Message)
	}
}

func TestUnsubscribeWebhookUsesQueryParameters(t *testing.T) {
	api := devkit.NewScriptedAPICaller(devkit.APIScript{Result: map[string]any{"status": "removed"}})
	client, _ := NewClient(api)

	err := client.UnsubscribeWebhook(context.Background(), testCredential(), "https://host/hook", core.EventMailReceived)
	if err != nil {
		t.Fatalf("expected unsubscribe to succeed, got %v", err)
	}

	calls := api.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 api call, got %d", len(calls))
	}
	req := calls[0].Request
	if req.Method != "POST" || req.Path != "/account/UnsubscribeWebHook" {
		t.Fatalf("unexpected unsubscribe request: %+v", req)
	}
	if req.Body != nil {
		t.Fatalf("unsubscribe must not send a body, got %+v", req.Body)
	}
	if req.Query["target_url"] != "https://host/hook" || req.Query["event"] != core.EventMailReceived {
		t.Fatalf("unexpected unsubscribe query: %+v", req.Query)
	}
}

func TestUnsubscribeWebhookFailureIsFatal(t *testing.T) {
	api := devkit.NewScriptedAPICaller(devkit.APIScript{
		Err: goerrors.New("transport: outplay api returned 500: boom", goerrors.CategoryExternal).
			WithCode(500).
			WithMetadata(map[string]any{"body": `{"error":"boom"}`}),
	})
	client, _ := NewClient(api)

	err := client.UnsubscribeWebhook(context.Background(), testCredential(), "https://host/hook", core.EventProspectCreated)
	if err == nil {
		t.Fatal("expected unsubscribe error")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected rich error, got %T", err)
	}
	if richErr.TextCode != core.ServiceErrorWebhookUnsubscribe {
		t.Fatalf("expected text code %s, got %s", core.ServiceErrorWebhookUnsubscribe, richErr.TextCode)
	}
	if richErr.Metadata["body"] != `{"error":"boom"}` {
		t.Fatalf("expected response body in metadata, got %+v", richErr.Metadata)
	}
}
