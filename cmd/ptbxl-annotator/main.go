package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"ptbxl-annotator/common/httpclient"
	"ptbxl-annotator/common/logger"
	mqttcommon "ptbxl-annotator/common/mqtt"
	rediscommon "ptbxl-annotator/common/redis"
	"ptbxl-annotator/internal/config"
	"ptbxl-annotator/internal/consumer"
	"ptbxl-annotator/internal/metrics"
	"ptbxl-annotator/internal/repository"
	"ptbxl-annotator/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const serviceName = "ptbxl-annotator"

type options struct {
	configFile  string
	workers     int
	logLevel    string
	logFormat   string
	metricsFile string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   serviceName + " <annotation_table> <dictionary> <output_dir>",
		Short: "Generate bilingual PTB-XL annotation documents",
		Long: `Reads the PTB-XL metadata table (CSV, TSV or XLSX; local path or http(s) URL),
looks every record's heart axis, SCP codes, infarction stage and ectopic beats up
in the code dictionary (JSON file, URL or postgres:// DSN) and writes one
<ecg_id>_hr.json annotation document per record into the output directory.`,
		Args:         cobra.ExactArgs(3),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(opts.configFile)
			if err != nil {
				return err
			}
			applyFlags(cmd, opts, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, args[0], args[1], args[2], stdout)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configFile, "config", os.Getenv("ANNOTATOR_CONFIG"), "YAML config file")
	flags.IntVar(&opts.workers, "workers", 0, "number of rows annotated in parallel (default: number of CPUs)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: json or console")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus textfile metrics to this path")

	return cmd
}

// applyFlags 命令行参数覆盖配置文件与环境变量
func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Annotator.Workers = opts.workers
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = opts.logFormat
	}
	if flags.Changed("metrics-file") {
		cfg.Annotator.MetricsFile = opts.metricsFile
	}
}

func run(ctx context.Context, cfg *config.Config, tablePath, dictPath, outDir string, stdout io.Writer) error {
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	m := metrics.New()
	httpClient := httpclient.NewClient(&cfg.HTTP)

	loader := repository.NewDictionaryLoader(httpClient, cfg.Database, cfg.Annotator.DictionaryTable, log)
	dict, err := loader.Load(ctx, dictPath)
	if err != nil {
		log.Error("Failed to load code dictionary", zap.String("source", dictPath), zap.Error(err))
		return err
	}

	stores, cleanup, err := buildStores(ctx, cfg, outDir, log)
	if err != nil {
		log.Error("Failed to initialize annotation stores", zap.Error(err))
		return err
	}
	defer cleanup()

	annotator := service.NewAnnotatorService(cfg, dict, consumer.NewTableConsumer(httpClient, log), stores, m, log)
	summary, err := annotator.Run(ctx, tablePath)
	if err != nil {
		log.Error("Annotation run failed", zap.Error(err))
		return err
	}

	if err := m.WriteTextfile(cfg.Annotator.MetricsFile); err != nil {
		log.Warn("Failed to write metrics textfile", zap.String("path", cfg.Annotator.MetricsFile), zap.Error(err))
	}

	fmt.Fprintf(stdout, "run %s: %d rows, %d documents, %d duplicate records, stores: %s\n",
		summary.RunID, summary.Rows, summary.Documents, summary.Duplicates, strings.Join(summary.Stores, ","))
	return nil
}

// buildStores 输出目录始终写入；Redis Stream 与 MQTT 按配置追加
func buildStores(ctx context.Context, cfg *config.Config, outDir string, log *zap.Logger) ([]repository.AnnotationStore, func(), error) {
	stores := []repository.AnnotationStore{repository.NewAnnotationFileRepository(outDir, log)}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Publish.Redis.Enabled {
		client, err := rediscommon.Connect(ctx, &cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() {
			if err := rediscommon.Close(client); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		})
		stores = append(stores, repository.NewAnnotationStreamRepository(client, cfg.Publish.Redis.Stream, log))
	}

	if cfg.Publish.MQTT.Enabled {
		client, err := mqttcommon.NewClient(&cfg.MQTT)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, client.Disconnect)
		stores = append(stores, repository.NewAnnotationMQTTRepository(client, cfg.Publish.MQTT.TopicPrefix, cfg.MQTT.QoS, log))
	}

	return stores, cleanup, nil
}
