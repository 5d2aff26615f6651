// pipeflow runs a configured pipeline once and prints the result.
//
// Usage:
//
//	pipeflow run --config config.yaml --pipeline chat --input "hello"
//	pipeflow version
//
// The binary wires an echo model invoker by default; deployments embed the
// engine as a library and supply real providers.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/BaSui01/pipeflow/config"
	"github.com/BaSui01/pipeflow/internal/metrics"
	"github.com/BaSui01/pipeflow/knowledge"
	"github.com/BaSui01/pipeflow/llm"
	"github.com/BaSui01/pipeflow/pipeline"
	"github.com/BaSui01/pipeflow/tools"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		if err := runCommand(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("pipeflow %s (%s)\n", Version, GitCommit)
	default:
		printUsage()
		os.Exit(1)
	}
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to the configuration file")
	pipelineName := fs.String("pipeline", "", "name of the pipeline to run")
	input := fs.String("input", "", "user input for the run")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *pipelineName == "" {
		return fmt.Errorf("--pipeline is required")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	doc, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	store := config.NewStore()
	index := knowledge.NewIndexer(nil, logger).BuildIndex(context.Background(), doc.KnowledgeBases)
	store.Replace(doc, index)

	collector := metrics.NewCollector("pipeflow", logger)
	registry := tools.NewRegistry(logger)

	exec := pipeline.NewExecutor(store, echoInvoker(),
		pipeline.WithToolRegistry(registry),
		pipeline.WithCollector(collector),
		pipeline.WithLogger(logger))

	result, err := exec.Run(context.Background(), *pipelineName, *input)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// echoInvoker stands in for a real model provider so configurations can be
// exercised without credentials.
func echoInvoker() llm.ModelInvoker {
	return llm.InvokerFunc(func(_ context.Context, prompt string, _ llm.InvokeOptions) (string, error) {
		return prompt, nil
	})
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `pipeflow - pipeline execution engine

Commands:
  run      execute a pipeline: pipeflow run --config config.yaml --pipeline NAME --input TEXT
  version  print version information`)
}
