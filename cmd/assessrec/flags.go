package main

import (
	"context"
	"fmt"
	"os"

	"github.com/poiesic/assessrec"
	"github.com/poiesic/assessrec/ai"
	"github.com/poiesic/assessrec/ranking"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
)

// serviceFlags are shared by every command that builds a recommender.
// Each can also be set from the YAML file named by --config.
func serviceFlags() []cli.Flag {
	defaults := ai.DefaultConfig()
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Load flag values from a YAML file",
			EnvVars: []string{"ASSESSREC_CONFIG"},
		},
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "catalog",
			Usage:   "Path to the assessment catalog CSV",
			EnvVars: []string{"ASSESSREC_CATALOG"},
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "provider",
			Usage:   "Embedding provider (openai, onnx)",
			Value:   defaults.Provider,
			EnvVars: []string{"ASSESSREC_PROVIDER"},
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "OpenAI-compatible embedding service URL",
			Value:   defaults.EmbeddingHost,
			EnvVars: []string{"ASSESSREC_EMBEDDING_HOST"},
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   defaults.EmbeddingModel,
			EnvVars: []string{"ASSESSREC_EMBEDDING_MODEL"},
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "onnx-model",
			Usage:   "Path to the ONNX sentence encoder (onnx provider)",
			EnvVars: []string{"ASSESSREC_ONNX_MODEL"},
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "tokenizer",
			Usage:   "Path to the encoder's tokenizer.json (onnx provider)",
			EnvVars: []string{"ASSESSREC_TOKENIZER"},
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "onnxruntime-lib",
			Usage:   "Path to the ONNX Runtime shared library (onnx provider)",
			EnvVars: []string{"ASSESSREC_ONNXRUNTIME_LIB"},
		}),
		altsrc.NewIntFlag(&cli.IntFlag{
			Name:    "max-seq-len",
			Usage:   "Maximum tokens per text (onnx provider)",
			Value:   defaults.MaxSeqLen,
			EnvVars: []string{"ASSESSREC_MAX_SEQ_LEN"},
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "cache-dir",
			Usage:   "BadgerDB directory for cached catalog embeddings (disabled when empty)",
			EnvVars: []string{"ASSESSREC_CACHE_DIR"},
		}),
		altsrc.NewFloat64Flag(&cli.Float64Flag{
			Name:    "lexical-weight",
			Usage:   "Weight of the normalized BM25 score",
			Value:   ranking.DefaultLexicalWeight,
			EnvVars: []string{"ASSESSREC_LEXICAL_WEIGHT"},
		}),
		altsrc.NewFloat64Flag(&cli.Float64Flag{
			Name:    "semantic-weight",
			Usage:   "Weight of the normalized embedding similarity",
			Value:   ranking.DefaultSemanticWeight,
			EnvVars: []string{"ASSESSREC_SEMANTIC_WEIGHT"},
		}),
		altsrc.NewIntFlag(&cli.IntFlag{
			Name:    "top-n",
			Usage:   "Maximum number of recommendations",
			Value:   ranking.DefaultTopN,
			EnvVars: []string{"ASSESSREC_TOP_N"},
		}),
		altsrc.NewIntFlag(&cli.IntFlag{
			Name:    "batch-size",
			Usage:   "Number of catalog texts embedded per request at startup",
			Value:   32,
			EnvVars: []string{"ASSESSREC_BATCH_SIZE"},
		}),
		altsrc.NewIntFlag(&cli.IntFlag{
			Name:    "pool-size",
			Usage:   "Number of concurrent embedding batches at startup (0 uses half the CPUs)",
			EnvVars: []string{"ASSESSREC_POOL_SIZE"},
		}),
	}
}

// withFlags appends extra command flags to the shared service flags.
func withFlags(extra ...cli.Flag) []cli.Flag {
	return append(serviceFlags(), extra...)
}

// loadConfigFile applies values from the --config YAML file to flags not set on the
// command line or in the environment.
func loadConfigFile(flags []cli.Flag) cli.BeforeFunc {
	apply := altsrc.InitInputSourceWithContext(flags, altsrc.NewYamlSourceFromFlagFunc("config"))
	return func(c *cli.Context) error {
		if c.String("config") == "" {
			return nil
		}
		return apply(c)
	}
}

// aiConfigFromFlags maps provider flags onto an ai.Config.
func aiConfigFromFlags(c *cli.Context) *ai.Config {
	return ai.NewConfig(
		ai.WithProvider(c.String("provider")),
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithONNXModel(c.String("onnx-model"), c.String("tokenizer")),
		ai.WithSharedLibraryPath(c.String("onnxruntime-lib")),
		ai.WithMaxSeqLen(c.Int("max-seq-len")),
	)
}

// buildRecommender loads the catalog and encodes it with the configured provider.
func buildRecommender(ctx context.Context, c *cli.Context) (*assessrec.Recommender, error) {
	catalogPath := c.String("catalog")
	if catalogPath == "" {
		return nil, fmt.Errorf("catalog path is required")
	}

	aiConfig := aiConfigFromFlags(c)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts := []assessrec.Option{
		assessrec.WithAIConfig(aiConfig),
		assessrec.WithCacheDir(c.String("cache-dir")),
		assessrec.WithWeights(c.Float64("lexical-weight"), c.Float64("semantic-weight")),
		assessrec.WithTopN(c.Int("top-n")),
		assessrec.WithBatchSize(c.Int("batch-size")),
		assessrec.WithPoolSize(c.Int("pool-size")),
	}
	if fi, err := os.Stderr.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
		opts = append(opts, assessrec.WithProgress(os.Stderr))
	}

	rec, err := assessrec.New(ctx, catalogPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to start recommender: %w", err)
	}
	return rec, nil
}
