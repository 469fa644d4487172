// Command jokeqa trains and serves the joke/answer retrieval model.
//
//	jokeqa train   -input jokes.db [-out model]
//	jokeqa ask     [-json] question words...
//	jokeqa console
//	jokeqa verify  [-sample 200] [-k 2]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/viant/jokeqa/artifact"
	"github.com/viant/jokeqa/config"
	"github.com/viant/jokeqa/corpus"
	"github.com/viant/jokeqa/embed"
	"github.com/viant/jokeqa/internal/console"
	"github.com/viant/jokeqa/internal/logging"
	"github.com/viant/jokeqa/normalize"
	"github.com/viant/jokeqa/response"
	"github.com/viant/jokeqa/retrieval"
	"github.com/viant/jokeqa/train"
)

const usage = `usage: jokeqa <command> [flags]

commands:
  train    fit models from a corpus and publish an artifact set
  ask      answer one query and print the response envelope
  console  interactive query console
  verify   validate the artifact set and measure index recall
`

func main() {
	_ = godotenv.Load()
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "train":
		err = runTrain(ctx, os.Args[2:])
	case "ask":
		err = runAsk(ctx, os.Args[2:])
	case "console":
		err = runConsole(ctx, os.Args[2:])
	case "verify":
		err = runVerify(ctx, os.Args[2:])
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		logging.Component("cli").Error("command failed", "command", os.Args[1], "err", err)
		var le *artifact.LoadError
		if errors.As(err, &le) {
			os.Exit(3)
		}
		os.Exit(1)
	}
}

func loadConfig(fs *flag.FlagSet, args []string) (*config.AppConfig, error) {
	cfgPath := fs.String("config", "config.yaml", "path to YAML config file")
	dir := fs.String("artifacts", "", "artifact directory (overrides config)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return nil, err
	}
	if *dir != "" {
		cfg.Artifacts.Dir = *dir
	}
	return cfg, nil
}

func newEncoder(cfg *config.AppConfig) embed.Encoder {
	return embed.Lazy(func() (embed.Encoder, error) {
		return embed.NewOpenAIEncoder(cfg.OpenAI())
	})
}

func runTrain(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	input := fs.String("input", "", "training corpus: SQLite file with a joke(theme, text) table, or JSONL of {topic, text}")
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	if *input == "" {
		return errors.New("train: -input is required")
	}
	samples, err := corpus.ReadSamples(ctx, *input)
	if err != nil {
		return err
	}
	opts := cfg.TrainOptions()
	var encoder embed.Encoder
	if opts.Variant == artifact.VariantEncoder {
		encoder = newEncoder(cfg)
	}
	trainer, err := train.New(normalize.New(), opts, encoder)
	if err != nil {
		return err
	}
	arts, err := trainer.Train(ctx, samples)
	if err != nil {
		return err
	}
	m, err := arts.Save(ctx, cfg.Artifacts.Dir)
	if err != nil {
		return err
	}
	logging.Component("cli").Info("artifacts published", "dir", cfg.Artifacts.Dir, "run_id", m.RunID,
		"items", m.Items, "index", m.IndexKind, "empty_embeddings", arts.Empty)
	return nil
}

func openService(ctx context.Context, cfg *config.AppConfig) (*retrieval.Service, *artifact.Set, error) {
	set, err := artifact.Load(ctx, cfg.Artifacts.Dir, cfg.LoadOptions())
	if err != nil {
		return nil, nil, err
	}
	svc, err := retrieval.FromSet(set, normalize.New(), newEncoder(cfg), cfg.Strategy())
	if err != nil {
		set.Close()
		return nil, nil, err
	}
	return svc, set, nil
}

func runAsk(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	raw := fs.Bool("json", false, "print the full result instead of the response envelope")
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	svc, set, err := openService(ctx, cfg)
	if err != nil {
		return err
	}
	defer set.Close()
	res, qerr := svc.SubmitQuery(ctx, strings.Join(fs.Args(), " "))
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if *raw && qerr == nil {
		return enc.Encode(res)
	}
	_, env := response.Render(res, qerr)
	return enc.Encode(env)
}

func runConsole(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("console", flag.ExitOnError)
	timeout := fs.Duration("timeout", 30*time.Second, "per-query timeout")
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	svc, set, err := openService(ctx, cfg)
	if err != nil {
		return err
	}
	defer set.Close()
	m := set.Manifest
	summary := fmt.Sprintf("%d items, %s embeddings, %s index, %s strategy, run %s",
		m.Items, m.Variant, m.IndexKind, svc.Strategy().Name(), m.RunID)
	return console.Run(svc, summary, *timeout)
}

func runVerify(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	sample := fs.Int("sample", 200, "number of items used as recall queries (0 = all)")
	k := fs.Int("k", 2, "neighbors compared per query")
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	set, err := artifact.Load(ctx, cfg.Artifacts.Dir, cfg.LoadOptions())
	if err != nil {
		return err
	}
	defer set.Close()
	report, err := set.Recall(ctx, *sample, *k)
	if err != nil {
		return err
	}
	out := struct {
		RunID string                 `json:"run_id"`
		Items int                    `json:"items"`
		Index string                 `json:"index"`
		Recall *artifact.RecallReport `json:"recall"`
	}{set.Manifest.RunID, set.Manifest.Items, set.Manifest.IndexKind, report}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
