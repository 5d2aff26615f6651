package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/pipeflow/config"
	"github.com/BaSui01/pipeflow/internal/metrics"
	"github.com/BaSui01/pipeflow/knowledge"
	"github.com/BaSui01/pipeflow/llm"
	"github.com/BaSui01/pipeflow/rag"
	"github.com/BaSui01/pipeflow/tools"
	"github.com/BaSui01/pipeflow/types"
)

const tracerName = "github.com/BaSui01/pipeflow/pipeline"

// RetrievalOutput is the structured output of a retriever node.
type RetrievalOutput struct {
	Source  string              `json:"source"`
	Matches []types.ScoredMatch `json:"matches"`
	Context string              `json:"context"`
}

// Executor runs pipelines: it resolves the definition from the current
// configuration snapshot, walks the scheduler's order, dispatches each
// node by type, and threads the run state between nodes.
//
// A run either completes with a full step trace or aborts with a single
// descriptive error; partial traces are never returned.
type Executor struct {
	store     *config.Store
	variants  *llm.VariantCache
	scheduler *Scheduler
	scorer    *knowledge.Scorer

	embedder     llm.EmbeddingProvider
	vectorStore  rag.VectorStore
	toolRegistry *tools.Registry

	collector *metrics.Collector
	logger    *zap.Logger
	tracer    trace.Tracer
}

// Option configures an Executor.
type Option func(*Executor)

// WithEmbedder supplies the embedding provider for retrieval queries.
func WithEmbedder(e llm.EmbeddingProvider) Option {
	return func(x *Executor) { x.embedder = e }
}

// WithVectorStore supplies the durable semantic-search adapter.
func WithVectorStore(vs rag.VectorStore) Option {
	return func(x *Executor) { x.vectorStore = vs }
}

// WithToolRegistry supplies the tool registry for tool nodes.
func WithToolRegistry(r *tools.Registry) Option {
	return func(x *Executor) { x.toolRegistry = r }
}

// WithCollector supplies the metrics collector.
func WithCollector(c *metrics.Collector) Option {
	return func(x *Executor) { x.collector = c }
}

// WithLogger supplies the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(x *Executor) { x.logger = logger }
}

// NewExecutor creates an executor over a configuration store and a base
// model invoker.
func NewExecutor(store *config.Store, invoker llm.ModelInvoker, opts ...Option) *Executor {
	x := &Executor{
		store:  store,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(x)
	}
	x.logger = x.logger.With(zap.String("component", "pipeline_executor"))
	x.variants = llm.NewVariantCache(invoker, x.logger)
	x.scheduler = NewScheduler(x.logger)
	x.scorer = knowledge.NewScorer(x.logger)
	x.tracer = otel.Tracer(tracerName)
	return x
}

// Run executes the named pipeline against the user input.
func (x *Executor) Run(ctx context.Context, pipelineName, userInput string) (*types.RunResult, error) {
	started := time.Now()

	snap := x.store.Snapshot()
	def, ok := snap.Pipeline(pipelineName)
	if !ok {
		return nil, types.NewErrorf(types.ErrPipelineNotFound, "pipeline %q not found", pipelineName)
	}

	runID := uuid.NewString()
	ctx, span := x.tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(
			attribute.String("pipeline.name", def.Name),
			attribute.String("pipeline.run_id", runID),
		))
	defer span.End()

	logger := x.logger.With(
		zap.String("pipeline", def.Name),
		zap.String("run_id", runID))
	logger.Info("starting pipeline run",
		zap.Int("nodes", len(def.Nodes)))

	order, degraded := x.scheduler.Order(def)
	if degraded {
		logger.Warn("executing with degraded node order")
	}

	state := NewState(userInput)
	steps := make([]types.Step, 0, len(order))

	for _, nodeID := range order {
		node, found := def.Node(nodeID)
		if !found {
			logger.Warn("edge references unknown node, skipping",
				zap.String("node_id", nodeID))
			continue
		}

		step, err := x.executeNode(ctx, snap, node, state, logger)
		if err != nil {
			logger.Error("pipeline run aborted",
				zap.String("node_id", node.ID),
				zap.Error(err))
			x.collector.RecordRun(def.Name, "error", time.Since(started))
			return nil, err
		}
		steps = append(steps, step)
	}

	x.collector.RecordRun(def.Name, "success", time.Since(started))
	logger.Info("pipeline run completed",
		zap.Int("steps", len(steps)),
		zap.Duration("duration", time.Since(started)))

	return &types.RunResult{
		FinalOutput: state.LastOutput,
		Intent:      state.Intent,
		Context:     state.Context,
		Steps:       steps,
	}, nil
}

func (x *Executor) executeNode(ctx context.Context, snap *config.Snapshot, node types.PipelineNode, state *State, logger *zap.Logger) (types.Step, error) {
	started := time.Now()
	ctx, span := x.tracer.Start(ctx, "pipeline.node",
		trace.WithAttributes(
			attribute.String("node.id", node.ID),
			attribute.String("node.type", string(node.Type)),
		))
	defer span.End()

	logger.Debug("executing node",
		zap.String("node_id", node.ID),
		zap.String("node_type", string(node.Type)))

	var (
		output any
		meta   types.StepMetadata
		err    error
	)
	switch node.Type {
	case types.NodeTypeLLM:
		output, meta, err = x.executeLLMNode(ctx, node, state)
	case types.NodeTypeRetriever:
		output, err = x.executeRetrieverNode(ctx, snap, node, state, logger)
	case types.NodeTypeTool:
		output, err = x.executeToolNode(ctx, node, state)
	default:
		err = types.NewErrorf(types.ErrInvalidPipelineConfig,
			"node %q has unsupported type %q", node.ID, node.Type).WithNodeID(node.ID)
	}
	if err != nil {
		x.collector.RecordNode(string(node.Type), "error", time.Since(started))
		return types.Step{}, err
	}

	state.LastOutput = Stringify(output)
	state.SetVariable(node.ID, output)

	x.collector.RecordNode(string(node.Type), "success", time.Since(started))

	return types.Step{
		NodeID:   node.ID,
		Type:     node.Type,
		Output:   output,
		Metadata: meta,
	}, nil
}

// executeLLMNode interpolates the node's prompt against the run state and
// invokes the model, optionally through a cached variant with overridden
// model or temperature.
func (x *Executor) executeLLMNode(ctx context.Context, node types.PipelineNode, state *State) (any, types.StepMetadata, error) {
	template := node.StringConfig("prompt", "{input}")
	prompt := Interpolate(template, state)

	opts := llm.InvokeOptions{
		Model:           node.StringConfig("model", ""),
		Temperature:     floatConfig(node.Config, "temperature"),
		MaxOutputTokens: intConfig(node.Config, 0, "maxOutputTokens", "max_output_tokens"),
	}

	invoker := x.variants.Variant(opts)
	output, err := invoker.Invoke(ctx, prompt, llm.InvokeOptions{})
	if err != nil {
		return nil, types.StepMetadata{}, types.NewErrorf(types.ErrUpstreamError,
			"model invocation failed at node %q", node.ID).WithNodeID(node.ID).WithCause(err)
	}

	if isIntentNode(node) {
		state.Intent = strings.TrimSpace(output)
	}
	if state.Context == "" {
		state.Context = output
	}

	return output, types.StepMetadata{Model: opts.Model, Temperature: opts.Temperature}, nil
}

// isIntentNode reports whether a node's output should be captured as the
// run intent. The explicit role flag wins; the node-id substring match is
// kept as a compatibility fallback for configurations that rely on the
// naming convention.
func isIntentNode(node types.PipelineNode) bool {
	if node.Role() == types.RoleIntent {
		return true
	}
	return strings.Contains(strings.ToLower(node.ID), "intent")
}

// executeRetrieverNode ranks the configured knowledge source against the
// current query. Vector-store hits take precedence; local scoring is the
// fallback path.
func (x *Executor) executeRetrieverNode(ctx context.Context, snap *config.Snapshot, node types.PipelineNode, state *State, logger *zap.Logger) (any, error) {
	source := node.StringConfig("source", "")
	if source == "" {
		return nil, types.NewErrorf(types.ErrInvalidPipelineConfig,
			"retriever node %q is missing a source", node.ID).WithNodeID(node.ID)
	}

	entries, ok := snap.Index().Source(source)
	if !ok || len(entries) == 0 {
		return nil, types.NewErrorf(types.ErrSourceNotFound,
			"knowledge source %q is not indexed or empty", source).WithNodeID(node.ID)
	}

	query := strings.TrimSpace(state.Input + " " + state.Intent)
	queryTokens := knowledge.Tokenize(query)
	topK := intConfig(node.Config, knowledge.DefaultTopK, "top_k", "topK")

	var queryEmbedding []float64
	if x.embedder != nil {
		embedding, err := x.embedder.Embed(ctx, query)
		if err != nil {
			logger.Warn("query embedding failed, retrieving lexically only",
				zap.String("node_id", node.ID),
				zap.Error(err))
			x.collector.RecordEmbeddingFailure()
		} else {
			queryEmbedding = embedding
		}
	}

	var out RetrievalOutput
	if matches, ok := x.semanticSearch(ctx, source, queryEmbedding, topK, logger); ok {
		x.collector.RecordRetrieval(source, "vector_store", len(matches))
		out = retrievalOutput(source, matches)
	} else {
		matches := x.scorer.Rank(queryTokens, entries, queryEmbedding, topK)
		x.collector.RecordRetrieval(source, "local", len(matches))
		out = retrievalOutput(source, matches)
	}

	if out.Context != "" {
		state.Context = out.Context
	}
	return out, nil
}

// semanticSearch consults the vector store when one is configured and a
// query embedding is available. Failures and empty result sets both fall
// back to local scoring.
func (x *Executor) semanticSearch(ctx context.Context, source string, queryEmbedding []float64, topK int, logger *zap.Logger) ([]types.ScoredMatch, bool) {
	if x.vectorStore == nil || queryEmbedding == nil {
		return nil, false
	}

	hits, err := x.vectorStore.SemanticSearch(ctx, source, queryEmbedding, topK)
	if err != nil {
		logger.Warn("vector store search failed, falling back to local scoring",
			zap.String("source", source),
			zap.Error(err))
		return nil, false
	}
	if len(hits) == 0 {
		return nil, false
	}

	matches := make([]types.ScoredMatch, 0, len(hits))
	for i, hit := range hits {
		matches = append(matches, types.ScoredMatch{
			Rank:    i + 1,
			ID:      hit.ID,
			Title:   hit.Title,
			Content: hit.Content,
			Score:   hit.Score,
		})
	}
	return matches, true
}

func retrievalOutput(source string, matches []types.ScoredMatch) RetrievalOutput {
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, m.Title+"\n"+m.Content)
	}
	return RetrievalOutput{
		Source:  source,
		Matches: matches,
		Context: strings.Join(blocks, "\n\n"),
	}
}

// executeToolNode dispatches the node's configured tool with a query
// built from the run input and intent, appending the serialized output to
// the context as an attributed block.
func (x *Executor) executeToolNode(ctx context.Context, node types.PipelineNode, state *State) (any, error) {
	toolName := node.StringConfig("toolName", "")
	if toolName == "" {
		return nil, types.NewErrorf(types.ErrInvalidPipelineConfig,
			"tool node %q is missing a toolName", node.ID).WithNodeID(node.ID)
	}
	if x.toolRegistry == nil {
		return nil, types.NewErrorf(types.ErrToolNotFound,
			"tool %q is not registered", toolName).WithNodeID(node.ID)
	}

	query := strings.TrimSpace(state.Input + " " + state.Intent)
	result, err := x.toolRegistry.Invoke(ctx, toolName, query)
	if err != nil {
		if e, ok := err.(*types.Error); ok {
			e.WithNodeID(node.ID)
		}
		return nil, err
	}

	block := "Tool Output (" + node.ID + "): " + tools.Serialize(result)
	if state.Context == "" {
		state.Context = block
	} else {
		state.Context += "\n\n" + block
	}

	return result, nil
}

// floatConfig reads a float config field. YAML decoding may surface
// numbers as int or float64.
func floatConfig(cfg map[string]any, key string) *float64 {
	switch v := cfg[key].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	}
	return nil
}

// intConfig reads the first present integer field among keys.
func intConfig(cfg map[string]any, fallback int, keys ...string) int {
	for _, key := range keys {
		switch v := cfg[key].(type) {
		case int:
			return v
		case float64:
			return int(v)
		}
	}
	return fallback
}
