package prospect

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-outplay/core"
	"github.com/goliatone/go-outplay/devkit"
)

func testCredential() core.Credential {
	return core.Credential{Location: "EU", ClientID: "client-1", ClientSecret: "secret-1"}
}

func TestSaveBuildsFlatBody(t *testing.T) {
	api := devkit.NewScriptedAPICaller(devkit.APIScript{Result: map[string]any{"id": "p-1"}})
	client, err := NewClient(api)
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}

	_, err = client.Save(context.Background(), testCredential(), SaveInput{
		Email:     "ada@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		AdditionalFields: map[string]any{
			"company": "Analytical Engines",
			"phone":   "+1-555-0100",
		},
	})
	if err != nil {
		t.Fatalf("expected save to succeed, got %v", err)
	}

	calls := api.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 api call, got %d", len(calls))
	}
	req := calls[0].Request
	if req.Method != "POST" || req.Path != "/prospect/add" {
		t.Fatalf("unexpected save request: %+v", req)
	}
	body, ok := req.Body.(map[string]any)
	if !ok {
		t.Fatalf("expected map body, got %T", req.Body)
	}
	if body["emailid"] != "ada@example.com" || body["firstname"] != "Ada" || body["lastname"] != "Lovelace" {
		t.Fatalf("unexpected identity fields: %+v", body)
	}
	if body["company"] != "Analytical Engines" || body["phone"] != "+1-555-0100" {
		t.Fatalf("additional fields must merge flat, got %+v", body)
	}
}

func TestSaveOmitsEmptyTagsAndFields(t *testing.T) {
	api := devkit.NewScriptedAPICaller(devkit.APIScript{Result: map[string]any{}})
	client, _ := NewClient(api)

	_, err := client.Save(context.Background(), testCredential(), SaveInput{
		Email: "ada@example.com",
		Tags:  []string{"", "  "},
		CustomFields: []CustomField{
			{Name: "", Value: "orphan"},
			{Name: "orphan", Value: ""},
		},
	})
	if err != nil {
		t.Fatalf("expected save to succeed, got %v", err)
	}

	body := api.Calls()[0].Request.Body.(map[string]any)
	if _, ok := body["tags"]; ok {
		t.Fatalf("tags key must be omitted when no usable tags exist, got %+v", body)
	}
	if _, ok := body["fields"]; ok {
		t.Fatalf("fields key must be omitted when no usable custom fields exist, got %+v", body)
	}
}

func TestSaveFoldsCustomFields(t *testing.T) {
	api := devkit.NewScriptedAPICaller(devkit.APIScript{Result: map[string]any{}})
	client, _ := NewClient(api)

	_, err := client.Save(context.Background(), testCredential(), SaveInput{
		Email: "ada@example.com",
		Tags:  []string{"vip", "", "beta"},
		CustomFields: []CustomField{
			{Name: "industry", Value: "computing"},
			{Name: "", Value: "skipped"},
			{Name: "region", Value: "emea"},
		},
	})
	if err != nil {
		t.Fatalf("expected save to succeed, got %v", err)
	}

	body := api.Calls()[0].Request.Body.(map[string]any)
	tags, ok := body["tags"].([]string)
	if !ok || len(tags) != 2 || tags[0] != "vip" || tags[1] != "beta" {
		t.Fatalf("expected filtered tags [vip beta], got %+v", body["tags"])
	}
	fields, ok := body["fields"].(map[string]string)
	if !ok || len(fields) != 2 || fields["industry"] != "computing" || fields["region"] != "emea" {
		t.Fatalf("expected folded custom fields, got %+v", body["fields"])
	}
}

func TestSaveRequiresEmail(t *testing.T) {
	api := devkit.NewScriptedAPICaller()
	client, _ := NewClient(api)

	_, err := client.Save(context.Background(), testCredential(), SaveInput{FirstName: "Ada"})
	if err == nil {
		t.Fatal("expected missing email error")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr.TextCode != core.ServiceErrorBadInput {
		t.Fatalf("expected %s, got %v", core.ServiceErrorBadInput, err)
	}
	if len(api.Calls()) != 0 {
		t.Fatal("missing email must not reach the network")
	}
}

func TestGetUsesPathParameter(t *testing.T) {
	api := devkit.NewScriptedAPICaller(devkit.APIScript{Result: map[string]any{"id": "p-42"}})
	client, _ := NewClient(api)

	result, err := client.Get(context.Background(), testCredential(), "p-42")
	if err != nil {
		t.Fatalf("expected get to succeed, got %v", err)
	}
	payload, ok := result.(map[string]any)
	if !ok || payload["id"] != "p-42" {
		t.Fatalf("unexpected get result: %+v", result)
	}

	req := api.Calls()[0].Request
	if req.Method != "GET" || req.Path != "/prospect/p-42" {
		t.Fatalf("unexpected get request: %+v", req)
	}
}

func TestGetRequiresID(t *testing.T) {
	api := devkit.NewScriptedAPICaller()
	client, _ := NewClient(api)

	if _, err := client.Get(context.Background(), testCredential(), "  "); err == nil {
		t.Fatal("expected missing id error")
	}
	if len(api.Calls()) != 0 {
		t.Fatal("missing id must not reach the network")
	}
}
