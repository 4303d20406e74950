package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/griffnb/rest-swag/internal/config"
	"github.com/griffnb/rest-swag/internal/gen"
	"github.com/griffnb/rest-swag/internal/loader"
	"github.com/griffnb/rest-swag/internal/server"
)

// Version of the rest-swag tool.
const Version = "v0.1.0"

const (
	configFlag        = "config"
	sourceFlag        = "source"
	siteURLFlag       = "siteURL"
	apiRootFlag       = "apiRoot"
	titleFlag         = "title"
	authFlag          = "auth"
	namespaceFlag     = "namespace"
	strictFlag        = "strict"
	selfRouteFlag     = "selfRoute"
	outputFlag        = "output"
	outputTypesFlag   = "outputTypes"
	instanceNameFlag  = "instanceName"
	stateFlag         = "state"
	packageNameFlag   = "packageName"
	generatedTimeFlag = "generatedTime"
	listenFlag        = "listen"
	schemaFileFlag    = "schemaFile"
	corsFlag          = "cors"
	quietFlag         = "quiet"
)

var commonFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    configFlag,
		Aliases: []string{"c"},
		Usage:   "YAML config file",
	},
	&cli.StringFlag{
		Name:    sourceFlag,
		Aliases: []string{"s"},
		Usage:   "Route index to document: a JSON or YAML dump, or the API root URL of a live site",
	},
	&cli.StringFlag{
		Name:  siteURLFlag,
		Usage: "Site URL, defaults to the url advertised by the route index",
	},
	&cli.StringFlag{
		Name:  apiRootFlag,
		Usage: "REST API root URL, defaults to <siteURL>/wp-json/",
	},
	&cli.StringFlag{
		Name:  titleFlag,
		Usage: "Document title, defaults to the site name",
	},
	&cli.StringFlag{
		Name:  authFlag,
		Usage: "Enabled auth methods, comma separated: oauth1,oauth2,basic. Defaults to the methods the index advertises",
	},
	&cli.BoolFlag{
		Name:  strictFlag,
		Usage: "Fail when two routes register a schema under the same title",
	},
	&cli.StringFlag{
		Name:  selfRouteFlag,
		Usage: "Route serving the document, left out of the paths",
	},
	&cli.BoolFlag{
		Name:    quietFlag,
		Aliases: []string{"q"},
		Usage:   "Make the logger quiet.",
	},
}

var initFlags = append([]cli.Flag{
	&cli.StringFlag{
		Name:    namespaceFlag,
		Aliases: []string{"n"},
		Usage:   "Document only this namespace, e.g. wp/v2",
	},
	&cli.StringFlag{
		Name:    outputFlag,
		Aliases: []string{"o"},
		Usage:   "Output directory for all the generated files (swagger.json, swagger.yaml, docs.go)",
	},
	&cli.StringFlag{
		Name:    outputTypesFlag,
		Aliases: []string{"ot"},
		Usage:   "Output types of generated files (swagger.json, swagger.yaml, docs.go) like json,yaml,go",
	},
	&cli.StringFlag{
		Name:  instanceNameFlag,
		Usage: "This parameter can be used to name different swagger document instances. It is optional.",
	},
	&cli.StringFlag{
		Name:  stateFlag,
		Usage: "Set host state for swagger.json",
	},
	&cli.StringFlag{
		Name:  packageNameFlag,
		Usage: "Package name of the generated docs.go, defaults to the output directory name",
	},
	&cli.BoolFlag{
		Name:  generatedTimeFlag,
		Usage: "Generate timestamp at the top of docs.go, disabled by default",
	},
}, commonFlags...)

var serveFlags = append([]cli.Flag{
	&cli.StringFlag{
		Name:    listenFlag,
		Aliases: []string{"l"},
		Usage:   "Listen address",
	},
	&cli.StringFlag{
		Name:  schemaFileFlag,
		Usage: "JSON or YAML file answered on OPTIONS instead of the built-in meta schema",
	},
	&cli.StringFlag{
		Name:  corsFlag,
		Usage: "Allowed CORS origins, comma separated",
	},
}, commonFlags...)

// loadConfig reads the config file and applies the flags that were set.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx.String(configFlag))
	if err != nil {
		return nil, err
	}

	setString := func(dst *string, flag string) {
		if ctx.IsSet(flag) {
			*dst = ctx.String(flag)
		}
	}
	setList := func(dst *[]string, flag string) {
		if ctx.IsSet(flag) {
			*dst = splitList(ctx.String(flag))
		}
	}

	setString(&cfg.Source, sourceFlag)
	setString(&cfg.Site.URL, siteURLFlag)
	setString(&cfg.Site.APIRoot, apiRootFlag)
	setString(&cfg.Site.Title, titleFlag)
	setList(&cfg.Auth, authFlag)
	setString(&cfg.Server.SelfRoute, selfRouteFlag)
	setString(&cfg.Server.Listen, listenFlag)
	setString(&cfg.Server.SchemaFile, schemaFileFlag)
	setList(&cfg.Server.CORSOrigins, corsFlag)
	setString(&cfg.Output.Namespace, namespaceFlag)
	setString(&cfg.Output.Dir, outputFlag)
	setList(&cfg.Output.Types, outputTypesFlag)
	setString(&cfg.Output.InstanceName, instanceNameFlag)
	setString(&cfg.Output.State, stateFlag)
	setString(&cfg.Output.PackageName, packageNameFlag)
	if ctx.IsSet(strictFlag) {
		cfg.Strict = ctx.Bool(strictFlag)
	}

	if len(cfg.Output.Types) == 0 {
		return nil, fmt.Errorf("no output types specified")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func newLogger(ctx *cli.Context) *log.Logger {
	if ctx.Bool(quietFlag) {
		return log.New(io.Discard, "", log.LstdFlags)
	}
	return log.New(os.Stdout, "", log.LstdFlags)
}

func genConfig(ctx *cli.Context, cfg *config.Config, logger *log.Logger) *gen.Config {
	return &gen.Config{
		Debugger:      logger,
		Source:        cfg.Source,
		OutputDir:     cfg.Output.Dir,
		OutputTypes:   cfg.Output.Types,
		InstanceName:  cfg.Output.InstanceName,
		State:         cfg.Output.State,
		PackageName:   cfg.Output.PackageName,
		Namespace:     cfg.Output.Namespace,
		Site:          cfg.SiteIdentity(),
		Auth:          cfg.Auth,
		SelfRoute:     cfg.Server.SelfRoute,
		Strict:        cfg.Strict,
		GeneratedTime: ctx.Bool(generatedTimeFlag),
	}
}

func initAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	logger := newLogger(ctx)

	return gen.New().Build(ctx.Context, genConfig(ctx, cfg, logger))
}

func serveAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	logger := newLogger(ctx)

	runCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	orc, site, err := gen.New().Prepare(runCtx, genConfig(ctx, cfg, logger))
	if err != nil {
		return err
	}

	serverConfig := server.Config{
		Listen:          cfg.Server.Listen,
		SelfRoute:       cfg.Server.SelfRoute,
		CORSOrigins:     cfg.Server.CORSOrigins,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Debug:           logger,
	}
	if cfg.Server.SchemaFile != "" {
		if serverConfig.Schema, err = loader.LoadSchemaFile(cfg.Server.SchemaFile); err != nil {
			return err
		}
	}

	srv, err := server.New(orc, serverConfig)
	if err != nil {
		return err
	}

	logger.Printf("serving %s documentation on http://%s%s", site.URL, cfg.Server.Listen, cfg.Server.SelfRoute)

	return srv.Run(runCtx)
}

func main() {
	app := cli.NewApp()
	app.Name = "rest-swag"
	app.Version = Version
	app.Usage = "Generate Swagger 2.0 documentation from a REST API route index."
	app.Commands = []*cli.Command{
		{
			Name:    "init",
			Aliases: []string{"i"},
			Usage:   "Generate swagger documentation files",
			Action:  initAction,
			Flags:   initFlags,
		},
		{
			Name:    "serve",
			Aliases: []string{"s"},
			Usage:   "Serve the swagger document over HTTP",
			Action:  serveAction,
			Flags:   serveFlags,
		},
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
