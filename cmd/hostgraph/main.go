package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"

	"github.com/hanpama/hostgraph/internal/config"
	"github.com/hanpama/hostgraph/internal/eventbus"
	"github.com/hanpama/hostgraph/internal/hostrt"
	"github.com/hanpama/hostgraph/internal/metrics"
	"github.com/hanpama/hostgraph/internal/otel"
	"github.com/hanpama/hostgraph/internal/property"
	"github.com/hanpama/hostgraph/internal/protoreg"
	"github.com/hanpama/hostgraph/internal/schema"
	"github.com/hanpama/hostgraph/internal/server"
)

const rootUsage = `hostgraph: resolve GraphQL fields against host values

USAGE:
  hostgraph <command> [flags]

COMMANDS:
  project          Project JSON or protobuf records through a GraphQL type
  serve            Serve projections over HTTP with Prometheus metrics
  proto            Print the protobuf record messages generated from SDL
  help             Show help for any command
`

const projectUsage = `project FLAGS:
  -sdl <file>        GraphQL SDL file (required)
  -type <name>       Object type of the records (required)
  -data <file>       JSON record or array of records (required)
  -fields <a,b,...>  Comma-separated fields to resolve
  -query <selection> Selection set, e.g. "{ title author { name } }"
                     Exactly one of -fields and -query is required.
  -proto             Decode records into the generated protobuf messages
  -package <name>    Protobuf package used with -proto (default: hostgraph)
  -config <file>     YAML configuration file
  -pretty            Pretty-print JSON output
  -stats             Write resolver metrics to stderr when done
`

const serveUsage = `serve FLAGS:
  -sdl <file>             GraphQL SDL file (required)
  -addr <addr>            HTTP listen address (default: :8080)
  -proto                  Decode sources into the generated protobuf messages
  -package <name>         Protobuf package used with -proto (default: hostgraph)
  -config <file>          YAML configuration file
  -pretty                 Pretty-print JSON responses
  -timeout <duration>     Per-request timeout, e.g. 10s (default: 10s)
`

const protoUsage = `proto FLAGS:
  -sdl <file>      GraphQL SDL file (required)
  -package <name>  Protobuf package (default: hostgraph)
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("missing command")
	}
	cmd, cmdArgs := args[0], args[1:]
	switch cmd {
	case "project":
		return cmdProject(cmdArgs, stdout, stderr)
	case "serve":
		return cmdServe(cmdArgs, stderr)
	case "proto":
		return cmdProto(cmdArgs, stdout, stderr)
	case "help":
		return cmdHelp(cmdArgs, stdout)
	default:
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, rootUsage)
		return nil
	}
	switch args[0] {
	case "project":
		fmt.Fprint(stdout, projectUsage)
	case "serve":
		fmt.Fprint(stdout, serveUsage)
	case "proto":
		fmt.Fprint(stdout, protoUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

func cmdProto(args []string, stdout, stderr io.Writer) error {
	sdlFile := ""
	pkg := "hostgraph"
	fs := flag.NewFlagSet("proto", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&sdlFile, "sdl", sdlFile, "GraphQL SDL file")
	fs.StringVar(&pkg, "package", pkg, "Protobuf package")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, protoUsage)
		return err
	}
	if sdlFile == "" {
		fmt.Fprint(stderr, protoUsage)
		return fmt.Errorf("-sdl is required")
	}
	sch, err := loadSchema(sdlFile)
	if err != nil {
		return err
	}
	reg, err := protoreg.Build(sch, pkg)
	if err != nil {
		return fmt.Errorf("protoreg build: %w", err)
	}
	return protoreg.Render(reg, stdout)
}

func cmdServe(args []string, stderr io.Writer) error {
	sdlFile := ""
	addr := ":8080"
	useProto := false
	pkg := "hostgraph"
	configFile := ""
	pretty := false
	timeout := 10 * time.Second

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&sdlFile, "sdl", sdlFile, "GraphQL SDL file")
	fs.StringVar(&addr, "addr", addr, "HTTP listen address")
	fs.BoolVar(&useProto, "proto", useProto, "Decode sources into protobuf messages")
	fs.StringVar(&pkg, "package", pkg, "Protobuf package")
	fs.StringVar(&configFile, "config", configFile, "YAML configuration file")
	fs.BoolVar(&pretty, "pretty", pretty, "Pretty-print JSON responses")
	fs.DurationVar(&timeout, "timeout", timeout, "Per-request timeout")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, serveUsage)
		return err
	}
	if sdlFile == "" {
		fmt.Fprint(stderr, serveUsage)
		return fmt.Errorf("-sdl is required")
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	sch, err := loadSchema(sdlFile)
	if err != nil {
		return err
	}
	sopts := []server.Option{server.WithLogger(logger), server.WithTimeout(timeout)}
	if pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if useProto {
		reg, err := protoreg.Build(sch, pkg)
		if err != nil {
			return fmt.Errorf("protoreg build: %w", err)
		}
		sopts = append(sopts, server.WithRegistry(reg))
	}

	bus := eventbus.New()
	shutdown, err := otel.Setup(cfg.OTel.Endpoint, cfg.OTel.Service, bus)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	resolver, rt := newRuntime(cfg, sch, logger, bus)
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(metrics.NewCollector("hostgraph", resolver))

	logger.Info("hostgraph server listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, server.Mux(server.New(rt, sopts...), promReg))
}

func newRuntime(cfg *config.Config, sch *schema.Schema, logger *zap.Logger, bus *eventbus.Bus) (*property.Resolver, *hostrt.Runtime) {
	resolver := property.New(
		property.WithLogger(logger),
		property.WithEventBus(bus),
		property.WithVisibilityOverride(cfg.Resolver.VisibilityOverride),
		property.WithNegativeCaching(cfg.Resolver.NegativeCache),
	)
	rt := hostrt.New(resolver, sch,
		hostrt.WithLogger(logger),
		hostrt.WithEventBus(bus),
		hostrt.WithConcurrency(cfg.Runtime.Concurrency),
	)
	return resolver, rt
}

func cmdProject(args []string, stdout, stderr io.Writer) error {
	sdlFile := ""
	typeName := ""
	dataFile := ""
	fields := ""
	query := ""
	useProto := false
	pkg := "hostgraph"
	configFile := ""
	pretty := false
	stats := false

	fs := flag.NewFlagSet("project", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&sdlFile, "sdl", sdlFile, "GraphQL SDL file")
	fs.StringVar(&typeName, "type", typeName, "Object type of the records")
	fs.StringVar(&dataFile, "data", dataFile, "JSON record or array of records")
	fs.StringVar(&fields, "fields", fields, "Comma-separated fields")
	fs.StringVar(&query, "query", query, "Selection set")
	fs.BoolVar(&useProto, "proto", useProto, "Decode records into protobuf messages")
	fs.StringVar(&pkg, "package", pkg, "Protobuf package")
	fs.StringVar(&configFile, "config", configFile, "YAML configuration file")
	fs.BoolVar(&pretty, "pretty", pretty, "Pretty-print JSON output")
	fs.BoolVar(&stats, "stats", stats, "Write resolver metrics to stderr")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, projectUsage)
		return err
	}
	switch {
	case sdlFile == "":
		fmt.Fprint(stderr, projectUsage)
		return fmt.Errorf("-sdl is required")
	case typeName == "":
		fmt.Fprint(stderr, projectUsage)
		return fmt.Errorf("-type is required")
	case dataFile == "":
		fmt.Fprint(stderr, projectUsage)
		return fmt.Errorf("-data is required")
	case (fields == "") == (query == ""):
		fmt.Fprint(stderr, projectUsage)
		return fmt.Errorf("exactly one of -fields and -query is required")
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	sch, err := loadSchema(sdlFile)
	if err != nil {
		return err
	}
	if t := sch.Type(typeName); t == nil || t.Kind != schema.TypeKindObject {
		return fmt.Errorf("%q is not an object type", typeName)
	}
	raw, isList, err := loadRecords(dataFile)
	if err != nil {
		return err
	}
	sources, err := decodeRecords(sch, typeName, raw, useProto, pkg)
	if err != nil {
		return err
	}

	bus := eventbus.New()
	shutdown, err := otel.Setup(cfg.OTel.Endpoint, cfg.OTel.Service, bus)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	resolver, rt := newRuntime(cfg, sch, logger, bus)

	ctx := context.Background()
	out := make([]map[string]any, len(sources))
	for i, src := range sources {
		if fields != "" {
			out[i], err = rt.ProjectFields(ctx, typeName, src, splitFields(fields))
		} else {
			out[i], err = rt.ProjectQuery(ctx, typeName, src, query)
		}
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}

	enc := json.NewEncoder(stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	var result any = out
	if !isList {
		result = out[0]
	}
	if err := enc.Encode(result); err != nil {
		return err
	}
	if stats {
		return writeStats(stderr, resolver)
	}
	return nil
}

func newLogger(c config.Log) (*zap.Logger, error) {
	lvl, err := c.ZapLevel()
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

func loadSchema(path string) (*schema.Schema, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sdl: %w", err)
	}
	sch, err := schema.BuildFromSDL(path, string(src))
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	return sch, nil
}

// loadRecords reads a JSON object or array of objects. The bool reports
// whether the file held an array.
func loadRecords(path string) ([]json.RawMessage, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read data: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, false, fmt.Errorf("parse data: %w", err)
		}
		return list, true, nil
	}
	return []json.RawMessage{trimmed}, false, nil
}

func decodeRecords(sch *schema.Schema, typeName string, raw []json.RawMessage, useProto bool, pkg string) ([]any, error) {
	var reg *protoreg.Registry
	if useProto {
		var err error
		if reg, err = protoreg.Build(sch, pkg); err != nil {
			return nil, fmt.Errorf("protoreg build: %w", err)
		}
	}
	out := make([]any, len(raw))
	for i, r := range raw {
		if reg != nil {
			msg, err := reg.Decode(typeName, r)
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
			out[i] = msg
			continue
		}
		var m map[string]any
		if err := json.Unmarshal(r, &m); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out[i] = m
	}
	return out, nil
}

func splitFields(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func writeStats(w io.Writer, source metrics.StatsSource) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics.NewCollector("hostgraph", source))
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
