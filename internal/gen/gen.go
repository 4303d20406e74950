package gen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"go/format"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/go-openapi/spec"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/griffnb/rest-swag/internal/domain"
	"github.com/griffnb/rest-swag/internal/loader"
	"github.com/griffnb/rest-swag/internal/orchestrator"
	"github.com/griffnb/rest-swag/internal/registry"
)

// DefaultInstanceName is the instance name that adds no filename prefix.
const DefaultInstanceName = "swagger"

type genTypeWriter func(*Config, *orchestrator.Document) error

// Gen generates Swagger files from a route index.
type Gen struct {
	json          func(data interface{}) ([]byte, error)
	jsonIndent    func(data interface{}) ([]byte, error)
	jsonToYAML    func(data []byte) ([]byte, error)
	outputTypeMap map[string]genTypeWriter
	debug         Debugger
}

// Debugger is the interface that wraps the basic Printf method.
type Debugger interface {
	Printf(format string, v ...interface{})
}

// New creates a new Gen.
func New() *Gen {
	gen := Gen{
		json: json.Marshal,
		jsonIndent: func(data interface{}) ([]byte, error) {
			return json.MarshalIndent(data, "", "    ")
		},
		jsonToYAML: orderedJSONToYAML,
		debug:      log.New(os.Stdout, "", log.LstdFlags),
	}

	gen.outputTypeMap = map[string]genTypeWriter{
		"go":   gen.writeDocSwagger,
		"json": gen.writeJSONSwagger,
		"yaml": gen.writeYAMLSwagger,
		"yml":  gen.writeYAMLSwagger,
	}

	return &gen
}

// Config presents Gen configurations.
type Config struct {
	Debugger Debugger

	// Source is the route index: a JSON or YAML dump, or an http(s) URL of
	// a live REST index
	Source string

	// OutputDir represents the output directory for all the generated files
	OutputDir string

	// OutputTypes define types of files which should be generated
	OutputTypes []string

	// InstanceName is used to get distinct names for different swagger documents in the
	// same project. The default value is "swagger".
	InstanceName string

	// State set host state, prefixed to the generated file names
	State string

	// PackageName defines package name of generated `docs.go`
	PackageName string

	// Namespace limits the document to one namespace, empty for all
	Namespace string

	// Site overrides the identity advertised by the index. Empty fields are
	// filled from the index.
	Site domain.Site

	// Auth lists enabled auth methods. The index's advertised methods are
	// used when empty.
	Auth []string

	// SelfRoute is the route serving the document, excluded from paths
	SelfRoute string

	// Strict whether a schema title registered by two routes fails generation
	Strict bool

	// GeneratedTime whether to generate the timestamp at the top of docs.go
	GeneratedTime bool
}

// Prepare loads the route index and returns an orchestrator over it along
// with the resolved site identity.
func (g *Gen) Prepare(ctx context.Context, config *Config) (*orchestrator.Service, domain.Site, error) {
	if config.Debugger != nil {
		g.debug = config.Debugger
	}

	if config.Source == "" {
		return nil, domain.Site{}, fmt.Errorf("route source is required")
	}

	index, err := loader.NewService(loader.WithDebugger(g.debug)).Load(ctx, config.Source)
	if err != nil {
		return nil, domain.Site{}, err
	}

	site := mergeSite(config.Site, index.Site())
	if err := site.Validate(); err != nil {
		return nil, domain.Site{}, err
	}

	auth := index.AuthMethods()
	if len(config.Auth) > 0 {
		if auth, err = domain.ParseAuthMethods(config.Auth); err != nil {
			return nil, domain.Site{}, err
		}
	}

	reg := registry.NewService()
	reg.SetDebugger(g.debug)
	index.Register(reg)

	g.debug.Printf("Loaded %d routes from %s", reg.Len(), config.Source)

	return orchestrator.New(reg, &orchestrator.Config{
		Site:      site,
		Auth:      auth,
		SelfRoute: config.SelfRoute,
		Strict:    config.Strict,
		Debug:     g.debug,
	}), site, nil
}

// Build generates the configured output files.
func (g *Gen) Build(ctx context.Context, config *Config) error {
	if config.InstanceName == "" {
		config.InstanceName = DefaultInstanceName
	}

	orc, _, err := g.Prepare(ctx, config)
	if err != nil {
		return err
	}

	g.debug.Printf("Generate swagger docs....")

	doc, err := orc.Generate(ctx, config.Namespace)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(config.OutputDir, os.ModePerm); err != nil {
		return err
	}

	for _, outputType := range config.OutputTypes {
		outputType = strings.ToLower(strings.TrimSpace(outputType))
		if typeWriter, ok := g.outputTypeMap[outputType]; ok {
			if err := typeWriter(config, doc); err != nil {
				return err
			}
		} else {
			g.debug.Printf("output type '%s' not supported", outputType)
		}
	}

	return nil
}

// mergeSite fills empty fields of site from the index identity.
func mergeSite(site, advertised domain.Site) domain.Site {
	if site.URL == "" {
		site.URL = advertised.URL
		site.TLS = site.TLS || advertised.TLS
	}
	if site.Title == "" {
		site.Title = advertised.Title
	}
	return site
}

func outputFileName(config *Config, filename string) string {
	if config.State != "" {
		filename = config.State + "_" + filename
	}

	if config.InstanceName != "" && config.InstanceName != DefaultInstanceName {
		filename = config.InstanceName + "_" + filename
	}

	return path.Join(config.OutputDir, filename)
}

func (g *Gen) writeDocSwagger(config *Config, doc *orchestrator.Document) error {
	docFileName := outputFileName(config, "docs.go")

	absOutputDir, err := filepath.Abs(config.OutputDir)
	if err != nil {
		return err
	}

	var packageName string
	if len(config.PackageName) > 0 {
		packageName = config.PackageName
	} else {
		packageName = filepath.Base(absOutputDir)
		packageName = strings.ReplaceAll(packageName, "-", "_")
	}

	docs, err := os.Create(docFileName)
	if err != nil {
		return err
	}
	defer docs.Close()

	if err := g.writeGoDoc(packageName, docs, doc, config); err != nil {
		return err
	}

	g.debug.Printf("create docs.go at %+v", docFileName)

	return nil
}

func (g *Gen) writeJSONSwagger(config *Config, doc *orchestrator.Document) error {
	jsonFileName := outputFileName(config, "swagger.json")

	b, err := g.jsonIndent(doc)
	if err != nil {
		return err
	}

	if err := g.writeFile(b, jsonFileName); err != nil {
		return err
	}

	g.debug.Printf("create swagger.json at %+v", jsonFileName)

	return nil
}

func (g *Gen) writeYAMLSwagger(config *Config, doc *orchestrator.Document) error {
	yamlFileName := outputFileName(config, "swagger.yaml")

	b, err := g.json(doc)
	if err != nil {
		return err
	}

	y, err := g.jsonToYAML(b)
	if err != nil {
		return fmt.Errorf("cannot covert json to yaml error: %s", err)
	}

	if err := g.writeFile(y, yamlFileName); err != nil {
		return err
	}

	g.debug.Printf("create swagger.yaml at %+v", yamlFileName)

	return nil
}

func (g *Gen) writeFile(b []byte, file string) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}

	defer f.Close()

	_, err = f.Write(b)

	return err
}

func (g *Gen) formatSource(src []byte) []byte {
	code, err := format.Source(src)
	if err != nil {
		code = src // Formatter failed, return original code.
	}

	return code
}

// orderedJSONToYAML converts JSON to block-style YAML, keeping key order.
func orderedJSONToYAML(data []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	clearStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// clearStyle drops the flow and quoting styles decoded from JSON so the
// encoder picks block style and quotes only where needed.
func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		clearStyle(child)
	}
}

func (g *Gen) writeGoDoc(packageName string, output io.Writer, doc *orchestrator.Document, config *Config) error {
	generator, err := template.New("swagger_info").Funcs(template.FuncMap{
		"printDoc": func(v string) string {
			// Sanitize backticks
			return strings.ReplaceAll(v, "`", "`+\"`\"+`")
		},
	}).Parse(packageTemplate)
	if err != nil {
		return err
	}

	buf, err := g.jsonIndent(doc)
	if err != nil {
		return err
	}

	swagger := doc.Swagger
	info := swagger.Info
	if info == nil {
		info = &spec.Info{}
	}

	state := ""
	if len(config.State) > 0 {
		state = cases.Title(language.English).String(strings.ToLower(config.State))
	}

	buffer := &bytes.Buffer{}

	err = generator.Execute(buffer, struct {
		Timestamp     time.Time
		Doc           string
		Host          string
		PackageName   string
		BasePath      string
		Title         string
		Description   string
		Version       string
		State         string
		InstanceName  string
		Schemes       []string
		GeneratedTime bool
	}{
		Timestamp:     time.Now(),
		GeneratedTime: config.GeneratedTime,
		Doc:           string(buf),
		Host:          swagger.Host,
		PackageName:   packageName,
		BasePath:      swagger.BasePath,
		Schemes:       swagger.Schemes,
		Title:         info.Title,
		Description:   info.Description,
		Version:       info.Version,
		State:         state,
		InstanceName:  config.InstanceName,
	})
	if err != nil {
		return err
	}

	code := g.formatSource(buffer.Bytes())

	_, err = output.Write(code)

	return err
}

var packageTemplate = `// Package {{.PackageName}} Code generated by rest-swag{{ if .GeneratedTime }} at {{ .Timestamp }}{{ end }}. DO NOT EDIT
package {{.PackageName}}

const docTemplate{{ if ne .InstanceName "swagger" }}{{ .InstanceName }} {{- end }}{{ .State }} = ` + "`{{ printDoc .Doc}}`" + `

// Swagger{{ .State }}Info{{ if ne .InstanceName "swagger" }}{{ .InstanceName }} {{- end }} holds exported Swagger Info so clients can modify it
var Swagger{{ .State }}Info{{ if ne .InstanceName "swagger" }}{{ .InstanceName }} {{- end }} = struct {
	Version          string
	Host             string
	BasePath         string
	Schemes          []string
	Title            string
	Description      string
	InfoInstanceName string
	SwaggerTemplate  string
}{
	Version:          {{ printf "%q" .Version}},
	Host:             {{ printf "%q" .Host}},
	BasePath:         {{ printf "%q" .BasePath}},
	Schemes:          []string{ {{ range $index, $schema := .Schemes}}{{if gt $index 0}},{{end}}{{printf "%q" $schema}}{{end}} },
	Title:            {{ printf "%q" .Title}},
	Description:      {{ printf "%q" .Description}},
	InfoInstanceName: {{ printf "%q" .InstanceName }},
	SwaggerTemplate:  docTemplate{{ if ne .InstanceName "swagger" }}{{ .InstanceName }} {{- end }}{{ .State }},
}
`
