package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/go-openapi/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/griffnb/rest-swag/internal/domain"
	"github.com/griffnb/rest-swag/internal/parser/route"
)

func testSite() domain.Site {
	return domain.Site{URL: "https://example.com", Title: "Example", TLS: true}
}

func widgetRegistry() *domain.RouteRegistry {
	schema := &domain.SchemaObject{
		Title: "Widget",
		Type:  "object",
		Properties: []domain.ArgSpec{
			{Name: "id", Type: "integer", HasType: true},
			{Name: "status", Type: "string", HasType: true, Enum: []interface{}{"", "active"}},
		},
	}

	registry := domain.NewRouteRegistry()
	registry.Add(&domain.RouteEntry{
		Pattern:   "/zeta/widgets",
		Namespace: "zeta",
		Endpoints: []domain.MethodSpec{
			{Methods: []string{"GET"}, Args: []domain.ArgSpec{{Name: "status", Type: "string", HasType: true, Enum: []interface{}{"", "active"}}}},
			{Methods: []string{"POST"}, Args: []domain.ArgSpec{{Name: "name", Type: "string", HasType: true, Required: true}}},
		},
		Schema: schema,
	})
	registry.Add(&domain.RouteEntry{
		Pattern:   `/zeta/widgets/(?P<id>\d+)`,
		Namespace: "zeta",
		Endpoints: []domain.MethodSpec{
			{Methods: []string{"GET"}},
			{Methods: []string{"DELETE"}},
		},
		Schema: schema,
	})
	registry.Add(&domain.RouteEntry{
		Pattern:   "/alpha/things",
		Namespace: "alpha",
		Endpoints: []domain.MethodSpec{{Methods: []string{"GET"}}},
		Schema:    &domain.SchemaObject{Title: "Thing", Type: "object"},
	})
	registry.Add(&domain.RouteEntry{
		Pattern:   route.DefaultSelfRoute,
		Namespace: "apigenerate",
		Endpoints: []domain.MethodSpec{{Methods: []string{"GET"}}},
		Schema:    &domain.SchemaObject{Title: "swagger"},
	})
	return registry
}

func collectOperations(ops ...*spec.Operation) []*spec.Operation {
	var out []*spec.Operation
	for _, op := range ops {
		if op != nil {
			out = append(out, op)
		}
	}
	return out
}

func staticSource(registry *domain.RouteRegistry) domain.RouteSource {
	return domain.RouteSourceFunc(func(_ context.Context, namespace string) (*domain.RouteRegistry, error) {
		if namespace == "" {
			return registry, nil
		}
		return registry.Filter("/" + namespace), nil
	})
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("builds a complete document", func(t *testing.T) {
		t.Parallel()

		service := New(staticSource(widgetRegistry()), &Config{Site: testSite()})

		doc, err := service.Generate(context.Background(), "")
		require.NoError(t, err)

		assert.Equal(t, "example.com", doc.Host)
		assert.Equal(t, "/wp-json", doc.BasePath)
		assert.Equal(t, []string{"https"}, doc.Schemes)
		assert.Equal(t, []string{"/zeta/widgets", "/zeta/widgets/{id}", "/alpha/things"}, doc.PathOrder)
		assert.NotContains(t, doc.Paths.Paths, route.DefaultSelfRoute)

		assert.Contains(t, doc.Definitions, "Widget")
		assert.Contains(t, doc.Definitions, "Thing")
		assert.Contains(t, doc.Definitions, "error")

		item := doc.Paths.Paths["/zeta/widgets"]
		require.NotNil(t, item.Post)
		assert.Contains(t, item.Post.Responses.StatusCodeResponses, 201)
	})

	t.Run("namespace narrows the document", func(t *testing.T) {
		t.Parallel()

		service := New(staticSource(widgetRegistry()), &Config{Site: testSite()})

		doc, err := service.Generate(context.Background(), "zeta")
		require.NoError(t, err)

		assert.Equal(t, "/wp-json/zeta", doc.BasePath)
		assert.Equal(t, []string{"/widgets", "/widgets/{id}"}, doc.PathOrder)
		assert.NotContains(t, doc.Definitions, "Thing")
	})

	t.Run("paths marshal in registry order", func(t *testing.T) {
		t.Parallel()

		service := New(staticSource(widgetRegistry()), &Config{Site: testSite()})

		doc, err := service.Generate(context.Background(), "")
		require.NoError(t, err)

		b, err := json.Marshal(doc)
		require.NoError(t, err)

		zeta := bytes.Index(b, []byte(`"/zeta/widgets"`))
		alpha := bytes.Index(b, []byte(`"/alpha/things"`))
		require.True(t, zeta > 0 && alpha > 0)
		assert.Less(t, zeta, alpha)

		assert.True(t, bytes.HasPrefix(b, []byte(`{"swagger":"2.0","info":`)), string(b[:40]))
	})

	t.Run("document value marshals the same as pointer", func(t *testing.T) {
		t.Parallel()

		service := New(staticSource(widgetRegistry()), &Config{Site: testSite()})

		doc, err := service.Generate(context.Background(), "")
		require.NoError(t, err)

		byPtr, err := json.Marshal(doc)
		require.NoError(t, err)
		byValue, err := json.Marshal(*doc)
		require.NoError(t, err)
		assert.Equal(t, byPtr, byValue)
	})

	t.Run("repeated generation is byte identical", func(t *testing.T) {
		t.Parallel()

		service := New(staticSource(widgetRegistry()), &Config{Site: testSite()})

		first, err := service.Generate(context.Background(), "")
		require.NoError(t, err)
		second, err := service.Generate(context.Background(), "")
		require.NoError(t, err)

		a, err := json.MarshalIndent(first, "", "    ")
		require.NoError(t, err)
		b, err := json.MarshalIndent(second, "", "    ")
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b))
	})

	t.Run("source registry is not modified", func(t *testing.T) {
		t.Parallel()

		registry := widgetRegistry()
		service := New(staticSource(registry), &Config{Site: testSite()})

		_, err := service.Generate(context.Background(), "")
		require.NoError(t, err)

		entry, ok := registry.Get("/zeta/widgets")
		require.True(t, ok)
		assert.Equal(t, []interface{}{"", "active"}, entry.Schema.Properties[1].Enum)
		assert.Equal(t, 4, registry.Len())
	})

	t.Run("basic auth without oauth1", func(t *testing.T) {
		t.Parallel()

		auth, err := domain.ParseAuthMethods([]string{"basic"})
		require.NoError(t, err)

		service := New(staticSource(widgetRegistry()), &Config{Site: testSite(), Auth: auth})

		doc, err := service.Generate(context.Background(), "")
		require.NoError(t, err)

		require.Len(t, doc.SecurityDefinitions, 2)
		assert.Contains(t, doc.SecurityDefinitions, "cookieAuth")
		assert.Contains(t, doc.SecurityDefinitions, "basicAuth")

		for path, item := range doc.Paths.Paths {
			for _, op := range collectOperations(item.Get, item.Post, item.Put, item.Patch, item.Delete) {
				require.Len(t, op.Security, 2, path)
				assert.Contains(t, op.Security[0], "cookieAuth", path)
				assert.Contains(t, op.Security[1], "basicAuth", path)
			}
		}
	})

	t.Run("source failure is wrapped", func(t *testing.T) {
		t.Parallel()

		source := domain.RouteSourceFunc(func(context.Context, string) (*domain.RouteRegistry, error) {
			return nil, domain.ErrNamespaceNotFound
		})

		_, err := New(source, &Config{Site: testSite()}).Generate(context.Background(), "missing")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrNamespaceNotFound))
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := New(staticSource(widgetRegistry()), &Config{Site: testSite()}).Generate(ctx, "")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("strict collisions fail generation", func(t *testing.T) {
		t.Parallel()

		registry := domain.NewRouteRegistry()
		for _, pattern := range []string{"/a", "/b"} {
			registry.Add(&domain.RouteEntry{
				Pattern:   pattern,
				Endpoints: []domain.MethodSpec{{Methods: []string{"GET"}}},
				Schema:    &domain.SchemaObject{Title: "Same"},
			})
		}

		_, err := New(staticSource(registry), &Config{Site: testSite(), Strict: true}).Generate(context.Background(), "")
		assert.ErrorIs(t, err, route.ErrDefinitionCollision)
	})

	t.Run("nil registry gives empty document", func(t *testing.T) {
		t.Parallel()

		source := domain.RouteSourceFunc(func(context.Context, string) (*domain.RouteRegistry, error) {
			return nil, nil
		})

		doc, err := New(source, nil).Generate(context.Background(), "")
		require.NoError(t, err)
		assert.Empty(t, doc.Paths.Paths)
		assert.Empty(t, doc.PathOrder)
	})
	t.Run("non-finite values from a code registry still marshal", func(t *testing.T) {
		t.Parallel()

		inf := math.Inf(1)
		nan := math.NaN()

		registry := domain.NewRouteRegistry()
		registry.Add(&domain.RouteEntry{
			Pattern:   "/good",
			Endpoints: []domain.MethodSpec{{Methods: []string{"GET"}}},
			Schema:    &domain.SchemaObject{Title: "Good", Type: "object"},
		})
		registry.Add(&domain.RouteEntry{
			Pattern: "/bad",
			Endpoints: []domain.MethodSpec{{
				Methods: []string{"GET"},
				Args:    []domain.ArgSpec{{Name: "per_page", Type: "integer", HasType: true, Maximum: &inf, Default: nan}},
			}},
			Schema: &domain.SchemaObject{
				Title:      "Bad",
				Type:       "object",
				Properties: []domain.ArgSpec{{Name: "size", Type: "number", HasType: true, Minimum: &inf}},
			},
		})

		doc, err := New(staticSource(registry), &Config{Site: testSite()}).Generate(context.Background(), "")
		require.NoError(t, err)

		b, err := json.Marshal(doc)
		require.NoError(t, err)
		assert.Contains(t, string(b), `"/good"`)
		assert.Contains(t, string(b), `"/bad"`)

		param := doc.Paths.Paths["/bad"].Get.Parameters[0]
		assert.Nil(t, param.Maximum)
		assert.Nil(t, param.Default)
	})

	t.Run("titles with reserved characters resolve", func(t *testing.T) {
		t.Parallel()

		registry := domain.NewRouteRegistry()
		registry.Add(&domain.RouteEntry{
			Pattern:   "/ok",
			Endpoints: []domain.MethodSpec{{Methods: []string{"GET"}}},
			Schema:    &domain.SchemaObject{Title: "Ok", Type: "object"},
		})
		for i, title := range []string{"Widget Item", "50%off", "a/b"} {
			registry.Add(&domain.RouteEntry{
				Pattern:   "/items" + string(rune('a'+i)),
				Endpoints: []domain.MethodSpec{{Methods: []string{"GET"}}},
				Schema:    &domain.SchemaObject{Title: title, Type: "object"},
			})
		}

		doc, err := New(staticSource(registry), &Config{Site: testSite()}).Generate(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, []string{"/ok", "/itemsa", "/itemsb", "/itemsc"}, doc.PathOrder)

		b, err := json.Marshal(doc)
		require.NoError(t, err)
		assert.Contains(t, string(b), `"#/definitions/Widget%20Item"`)
		assert.Contains(t, string(b), `"#/definitions/50%25off"`)
		assert.Contains(t, string(b), `"#/definitions/a~1b"`)
	})

	t.Run("definition properties marshal in declaration order", func(t *testing.T) {
		t.Parallel()

		doc, err := New(staticSource(widgetRegistry()), &Config{Site: testSite()}).Generate(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "status"}, doc.PropertyOrder["Widget"])

		registry := domain.NewRouteRegistry()
		registry.Add(&domain.RouteEntry{
			Pattern:   "/widgets",
			Endpoints: []domain.MethodSpec{{Methods: []string{"GET"}}},
			Schema: &domain.SchemaObject{
				Title: "Widget",
				Type:  "object",
				Properties: []domain.ArgSpec{
					{Name: "zeta", Type: "string", HasType: true},
					{Name: "alpha", Type: "string", HasType: true},
					{Name: "mid", Type: "string", HasType: true},
				},
			},
		})

		doc, err = New(staticSource(registry), &Config{Site: testSite()}).Generate(context.Background(), "")
		require.NoError(t, err)

		b, err := json.Marshal(doc)
		require.NoError(t, err)

		zeta := bytes.Index(b, []byte(`"zeta"`))
		alpha := bytes.Index(b, []byte(`"alpha"`))
		mid := bytes.Index(b, []byte(`"mid"`))
		require.True(t, zeta > 0 && alpha > 0 && mid > 0)
		assert.Less(t, zeta, alpha)
		assert.Less(t, alpha, mid)

		var decoded spec.Swagger
		require.NoError(t, json.Unmarshal(b, &decoded))
		assert.Len(t, decoded.Definitions["Widget"].Properties, 3)
	})
}
