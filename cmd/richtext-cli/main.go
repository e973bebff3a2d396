package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	richtext "github.com/goliatone/go-richtext"
	"github.com/goliatone/go-richtext/pkg/config"
	"github.com/goliatone/go-richtext/pkg/lookup"
	"github.com/goliatone/go-richtext/pkg/playground"
)

func main() {
	expression := flag.String("expr", "", "template expression to render against -data")
	textPath := flag.String("text", "", "rich text file to pre-render")
	dataPath := flag.String("data", "", "JSON or YAML data document")
	catalogPath := flag.String("catalog", "", "JSON or YAML collaborator catalog")
	configPath := flag.String("config", "", "JSON or YAML settings document")
	showErrors := flag.Bool("show-errors", false, "render inline notices for failed variables")
	output := flag.String("output", "", "output file (stdout if empty)")
	interactive := flag.Bool("interactive", false, "start the expression playground")
	verbose := flag.Bool("v", false, "log debug output to stderr")
	flag.Parse()

	ctx := context.Background()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *showErrors {
		cfg.ShowErrors = true
	}

	opts := []richtext.Option{richtext.WithConfig(cfg)}
	if *catalogPath != "" {
		raw, err := os.ReadFile(*catalogPath)
		if err != nil {
			log.Fatalf("Failed to read catalog: %v", err)
		}
		catalog, err := lookup.LoadCatalog(raw, *catalogPath)
		if err != nil {
			log.Fatalf("Failed to load catalog: %v", err)
		}
		opts = append(opts, richtext.WithCatalog(catalog))
	}
	if *verbose {
		opts = append(opts, richtext.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	}

	engine, err := richtext.New(opts...)
	if err != nil {
		log.Fatalf("Failed to configure renderer: %v", err)
	}

	data, err := loadData(*dataPath)
	if err != nil {
		log.Fatalf("Failed to load data: %v", err)
	}

	if *interactive {
		session := playground.New(engine, data, playground.WithRichText(engine))
		if err := session.Run(ctx); err != nil {
			log.Fatalf("Playground failed: %v", err)
		}
		return
	}

	var result string
	switch {
	case *textPath != "":
		raw, err := os.ReadFile(*textPath)
		if err != nil {
			log.Fatalf("Failed to read rich text: %v", err)
		}
		result, err = engine.PreRender(ctx, string(raw))
		if err != nil {
			log.Fatalf("Failed to pre-render %s: %v", *textPath, err)
		}
	case *expression != "":
		result = engine.RenderContext(ctx, *expression, data)
	default:
		log.Fatalf("one of -expr, -text or -interactive is required")
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(result), 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Output written to %s\n", *output)
	} else {
		fmt.Println(result)
	}
}

func loadData(path string) (any, error) {
	if strings.TrimSpace(path) == "" {
		return map[string]any{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc any
	jsonErr := json.Unmarshal(raw, &doc)
	if jsonErr == nil {
		return doc, nil
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: json: %v; yaml: %w", path, jsonErr, err)
	}
	return doc, nil
}
