package main

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	openaisdk "github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"

	"github.com/walterfan/agentcore/internal/config"
	"github.com/walterfan/agentcore/internal/llm/anthropic"
	"github.com/walterfan/agentcore/internal/llm/bedrock"
	"github.com/walterfan/agentcore/internal/llm/openai"
	"github.com/walterfan/agentcore/internal/model"
	"github.com/walterfan/agentcore/internal/store"
	"github.com/walterfan/agentcore/internal/store/memory"
	"github.com/walterfan/agentcore/internal/store/sqlite"
	"github.com/walterfan/agentcore/internal/telemetry"
)

// buildModelClient constructs the model.Client named by cfg.LLMProvider
// through internal/llm/{anthropic,openai,bedrock}'s New constructors.
// For anthropic and openai the SDK client is built by hand from each
// SDK's own option package (the packages' NewFromAPIKey helpers take no
// base URL), and cfg.LLMBaseURL is applied when it is set and differs
// from the config default, the OpenAI endpoint. Bedrock uses the ambient
// AWS configuration and ignores cfg.LLMBaseURL and cfg.LLMAPIKey.
func buildModelClient(ctx context.Context, cfg config.Settings) (model.Client, error) {
	switch strings.ToLower(cfg.LLMProvider) {
	case "anthropic":
		opts := []anthropicopt.RequestOption{anthropicopt.WithAPIKey(cfg.LLMAPIKey)}
		if cfg.LLMBaseURL != "" && cfg.LLMBaseURL != "https://api.openai.com/v1" {
			opts = append(opts, anthropicopt.WithBaseURL(cfg.LLMBaseURL))
		}
		cl := anthropicsdk.NewClient(opts...)
		return anthropic.New(&cl.Messages, anthropic.Options{DefaultModel: cfg.LLMModel})
	case "bedrock":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("bedrock: load AWS config: %w", err)
		}
		cl := bedrockruntime.NewFromConfig(awsCfg)
		return bedrock.New(cl, bedrock.Options{DefaultModel: cfg.LLMModel})
	case "openai", "":
		opts := []openaiopt.RequestOption{openaiopt.WithAPIKey(cfg.LLMAPIKey)}
		if cfg.LLMBaseURL != "" && cfg.LLMBaseURL != "https://api.openai.com/v1" {
			opts = append(opts, openaiopt.WithBaseURL(cfg.LLMBaseURL))
		}
		cl := openaisdk.NewClient(opts...)
		return openai.New(&cl.Chat.Completions, openai.Options{DefaultModel: cfg.LLMModel})
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
}

// buildStore opens the task persistence store named by cfg.DatabaseURL:
// "sqlite://<path>" for a local file, "memory://" (or anything else)
// for the in-process store used in development and tests.
func buildStore(dbURL string) (store.Store, error) {
	switch {
	case strings.HasPrefix(dbURL, "sqlite://"):
		path := strings.TrimPrefix(dbURL, "sqlite://")
		path = strings.TrimPrefix(path, "/") // "sqlite:///./agentcore.db" -> "./agentcore.db"
		return sqlite.New(path)
	default:
		return memory.New(), nil
	}
}

// buildSink constructs the telemetry.Sink from cfg. Logging always
// delegates to goa.design/clue/log (configured on the command's context
// in main.go's PersistentPreRunE); metrics and tracing use the real OTEL
// exporters only when an OTLP endpoint is configured, falling back to
// no-ops otherwise so a bare CLI run never blocks on a collector.
func buildSink(cfg config.Settings) *telemetry.Sink {
	metrics := telemetry.NewNoopMetrics()
	tracer := telemetry.NewNoopTracer()
	if cfg.OTELEndpoint != "" {
		metrics = telemetry.NewClueMetrics()
		tracer = telemetry.NewClueTracer()
	}
	return telemetry.NewSink(telemetry.NewClueLogger(), metrics, tracer, cfg.TraceDetailed)
}
