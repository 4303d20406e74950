package route

import (
	"encoding/json"
	"testing"

	"github.com/griffnb/rest-swag/internal/parser/route/domain"
)

func TestRouteToSpecOperation(t *testing.T) {
	t.Run("nil route is an error", func(t *testing.T) {
		result, err := RouteToSpecOperation(nil)
		if err == nil {
			t.Error("Expected error for nil route")
		}
		if result != nil {
			t.Errorf("Expected nil, got %v", result)
		}
	})

	t.Run("converts basic route", func(t *testing.T) {
		route := &domain.Route{
			Method:  "GET",
			Path:    "/widgets/{id}",
			Summary: "GET widgets",
			Responses: map[int]domain.Response{
				200: {Description: "successful operation", Ref: "Widget"},
			},
			Default:  &domain.Response{Description: "error", Ref: "error"},
			Security: []map[string][]string{{"cookieAuth": {}}},
		}

		result, err := RouteToSpecOperation(route)
		if err != nil {
			t.Fatal(err)
		}

		if result.Summary != "GET widgets" {
			t.Errorf("Expected summary 'GET widgets', got %s", result.Summary)
		}
		if result.Responses.Default == nil || result.Responses.Default.Schema.Ref.String() != "#/definitions/error" {
			t.Errorf("Expected default response referencing error, got %+v", result.Responses.Default)
		}
		if got := result.Responses.StatusCodeResponses[200].Schema.Ref.String(); got != "#/definitions/Widget" {
			t.Errorf("Expected 200 ref '#/definitions/Widget', got %s", got)
		}
		if len(result.Security) != 1 {
			t.Errorf("Expected 1 security requirement, got %d", len(result.Security))
		}
	})

	t.Run("keeps parameter order", func(t *testing.T) {
		route := &domain.Route{
			Parameters: []domain.Parameter{
				{Name: "id", In: "path", Type: "string", Required: true},
				{Name: "context", In: "query", Type: "string"},
				{Name: "after", In: "query", Type: "string", Format: "date-time"},
			},
		}

		result, err := RouteToSpecOperation(route)
		if err != nil {
			t.Fatal(err)
		}

		if len(result.Parameters) != 3 {
			t.Fatalf("Expected 3 parameters, got %d", len(result.Parameters))
		}
		for i, name := range []string{"id", "context", "after"} {
			if result.Parameters[i].Name != name {
				t.Errorf("Expected parameter %d to be %s, got %s", i, name, result.Parameters[i].Name)
			}
		}
	})

	t.Run("no security leaves field empty", func(t *testing.T) {
		result, err := RouteToSpecOperation(&domain.Route{Method: "GET"})
		if err != nil {
			t.Fatal(err)
		}
		if result.Security != nil {
			t.Errorf("Expected nil security, got %v", result.Security)
		}
	})
}

func TestParameterToSpec(t *testing.T) {
	lo, hi := 1.0, 100.0
	param := domain.Parameter{
		Name:        "per_page",
		In:          "query",
		Type:        "integer",
		Format:      "number",
		Description: "Maximum number of items to be returned in result set.",
		Default:     10,
		Minimum:     &lo,
		Maximum:     &hi,
	}

	result := ParameterToSpec(param)

	if result.Name != "per_page" || result.In != "query" || result.Type != "integer" {
		t.Errorf("Unexpected parameter props: %+v", result.ParamProps)
	}
	if result.Minimum == nil || *result.Minimum != 1 {
		t.Errorf("Expected minimum 1, got %v", result.Minimum)
	}
	if result.Maximum == nil || *result.Maximum != 100 {
		t.Errorf("Expected maximum 100, got %v", result.Maximum)
	}
	if result.Default != 10 {
		t.Errorf("Expected default 10, got %v", result.Default)
	}
	if result.Items != nil {
		t.Errorf("Expected no items, got %+v", result.Items)
	}

	arr := ParameterToSpec(domain.Parameter{Name: "include", In: "query", Type: "array", Items: &domain.Items{Type: "integer"}})
	if arr.Items == nil || arr.Items.Type != "integer" {
		t.Errorf("Expected integer items, got %+v", arr.Items)
	}
}

func TestResponseToSpec(t *testing.T) {
	t.Run("array wraps the reference", func(t *testing.T) {
		result, err := ResponseToSpec(domain.Response{Description: "ok", Ref: "Widget", Array: true})
		if err != nil {
			t.Fatal(err)
		}

		b, err := json.Marshal(result.Schema)
		if err != nil {
			t.Fatal(err)
		}

		var got map[string]interface{}
		if err := json.Unmarshal(b, &got); err != nil {
			t.Fatal(err)
		}

		if got["type"] != "array" {
			t.Errorf("Expected array type, got %v", got["type"])
		}
		items, _ := got["items"].(map[string]interface{})
		if items["$ref"] != "#/definitions/Widget" {
			t.Errorf("Expected items ref, got %v", got["items"])
		}
	})

	t.Run("no ref has no schema", func(t *testing.T) {
		result, err := ResponseToSpec(domain.Response{Description: "ok"})
		if err != nil {
			t.Fatal(err)
		}
		if result.Schema != nil {
			t.Errorf("Expected no schema, got %+v", result.Schema)
		}
		if result.Description != "ok" {
			t.Errorf("Expected description 'ok', got %s", result.Description)
		}
	})

	t.Run("title with reserved characters is escaped", func(t *testing.T) {
		result, err := ResponseToSpec(domain.Response{Description: "ok", Ref: "Widget Item"})
		if err != nil {
			t.Fatal(err)
		}
		if got := result.Schema.Ref.String(); got != "#/definitions/Widget%20Item" {
			t.Errorf("Expected escaped ref, got %s", got)
		}
	})
}
