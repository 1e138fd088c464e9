package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/sararag/sara/internal/ai"
	"github.com/sararag/sara/internal/config"
	"github.com/sararag/sara/internal/datastore"
	"github.com/sararag/sara/internal/handler"
	"github.com/sararag/sara/internal/job"
	"github.com/sararag/sara/internal/middleware"
	"github.com/sararag/sara/internal/model"
	"github.com/sararag/sara/internal/objstore"
	"github.com/sararag/sara/internal/schedule"
	"github.com/sararag/sara/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "sara",
		Short: "sara document retrieval service",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the retrieval server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}

	var processDir string
	var processOut string
	processCmd := &cobra.Command{
		Use:   "process",
		Short: "ingest a directory of pdf/markdown documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if processDir == "" {
				return fmt.Errorf("--dir is required")
			}
			return runProcess(cfg, processDir, processOut)
		},
	}
	processCmd.Flags().StringVar(&processDir, "dir", "", "directory of documents to process")
	processCmd.Flags().StringVar(&processOut, "out", "", "write embedded chunks to a json file instead of the datastore")

	var loadFile string
	var loadMode string
	loadCmd := &cobra.Command{
		Use:   "load",
		Short: "bulk-load pre-embedded chunks from a json file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if loadFile == "" {
				return fmt.Errorf("--file is required")
			}
			return runLoad(cfg, loadFile, loadMode)
		},
	}
	loadCmd.Flags().StringVar(&loadFile, "file", "", "json file of chunks to load")
	loadCmd.Flags().StringVar(&loadMode, "mode", service.LoadModeAdd, "load mode: add or initialize")

	rootCmd.AddCommand(runCmd, processCmd, loadCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", path))
	return cfg, nil
}

func buildEmbedder(cfg *config.Config) (ai.IProvider, ai.IEmbedder, error) {
	provider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return nil, nil, fmt.Errorf("init ai provider: %w", err)
	}
	return provider, ai.NewEmbedder(provider, cfg.AI.EmbedModel), nil
}

func runServer(cfg *config.Config) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("datastore", cfg.Datastore.Kind),
		zap.String("ai_provider", cfg.AI.Provider),
	)

	store, err := datastore.New(cfg.Datastore)
	if err != nil {
		return fmt.Errorf("init datastore: %w", err)
	}
	defer store.Close()

	provider, embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	var generator ai.IGenerator
	if cfg.AI.GenerateModel != "" {
		generator = ai.NewGenerator(provider, cfg.AI.GenerateModel)
	}

	ingestService := service.NewIngestService(store, embedder, cfg.AI.EmbedDimension, cfg.Ingest)
	retrievalService := service.NewRetrievalService(store, embedder, generator, time.Duration(cfg.AI.Timeout)*time.Second)

	var uploadHandler *handler.UploadHandler
	if cfg.ObjectStore.Kind != "" {
		objStore, err := objstore.New(cfg.ObjectStore)
		if err != nil {
			return fmt.Errorf("init object store: %w", err)
		}
		uploadHandler = handler.NewUploadHandler(objStore)
	}

	deps := handler.RouterDeps{
		Documents:  handler.NewDocumentHandler(ingestService, retrievalService, cfg.Ingest.MaxUploadSize, cfg.Ingest.TempDir),
		Uploads:    uploadHandler,
		AuthSecret: []byte(cfg.AuthSecret),
	}

	engine, err := webapi.NewEngine(
		"/",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewUploadCleanupJob(cfg.Ingest.TempDir, 24*time.Hour), "0 * * * *"); err != nil {
		return fmt.Errorf("schedule cleanup job: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}

func runProcess(cfg *config.Config, dir, out string) error {
	ctx := context.Background()
	paths, err := collectDocuments(dir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no pdf or markdown files found in %s", dir)
	}

	_, embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}

	var store datastore.Store
	if out == "" {
		store, err = datastore.New(cfg.Datastore)
		if err != nil {
			return fmt.Errorf("init datastore: %w", err)
		}
		defer store.Close()
	}
	ingestService := service.NewIngestService(store, embedder, cfg.AI.EmbedDimension, cfg.Ingest)

	if out == "" {
		reports := ingestService.ProcessFiles(ctx, paths)
		printReports(ctx, reports)
		return nil
	}

	var allChunks []model.DocumentChunk
	var reports []model.FileReport
	for _, path := range paths {
		chunks, report := ingestService.BuildChunks(ctx, path)
		reports = append(reports, report)
		allChunks = append(allChunks, chunks...)
	}
	printReports(ctx, reports)

	data, err := json.MarshalIndent(allChunks, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logutil.GetLogger(ctx).Info("chunks written", zap.String("file", out), zap.Int("chunks", len(allChunks)))
	return nil
}

func runLoad(cfg *config.Config, file, mode string) error {
	ctx := context.Background()
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read chunk file: %w", err)
	}
	var chunks []model.DocumentChunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return fmt.Errorf("decode chunk file: %w", err)
	}

	store, err := datastore.New(cfg.Datastore)
	if err != nil {
		return fmt.Errorf("init datastore: %w", err)
	}
	defer store.Close()

	ingestService := service.NewIngestService(store, nil, cfg.AI.EmbedDimension, cfg.Ingest)
	if err := ingestService.LoadChunks(ctx, chunks, strings.ToLower(mode)); err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("chunks loaded", zap.Int("chunks", len(chunks)), zap.String("mode", mode))
	return nil
}

func collectDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".pdf", ".md", ".markdown":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func printReports(ctx context.Context, reports []model.FileReport) {
	for _, report := range reports {
		if report.Status == model.FileStatusOK {
			logutil.GetLogger(ctx).Info("processed",
				zap.String("filename", report.Filename),
				zap.String("doc_type", string(report.DocType)),
				zap.Int("chunks", report.Chunks),
				zap.Int("dropped", report.DroppedChunks),
			)
			continue
		}
		logutil.GetLogger(ctx).Error("failed",
			zap.String("filename", report.Filename),
			zap.String("error", report.Error),
		)
	}
}
