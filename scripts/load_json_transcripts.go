package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	youtubeapi "github.com/pblonline/ops-dashboard/internal/api/youtube"
	"github.com/pblonline/ops-dashboard/internal/llm"
	"github.com/pblonline/ops-dashboard/internal/loaders"
	"github.com/pblonline/ops-dashboard/internal/processors"
	"github.com/pblonline/ops-dashboard/internal/utils"
)

// TranscriptRecord is one entry of the export file.
type TranscriptRecord struct {
	VideoID    string `json:"videoId"`
	Transcript string `json:"transcript"`
}

func main() {
	jsonFile := flag.String("file", "transcripts.json", "Path to the JSON file")
	dbDSN := flag.String("db", "", "PostgreSQL DSN connection string")
	apiKeys := flag.String("keys", "", "Comma-separated Gemini API keys; enables metadata generation")
	model := flag.String("model", "gemini-2.5-flash", "Gemini model")
	batchSize := flag.Int("batch", 10, "Records per batch")
	flag.Parse()

	if *dbDSN == "" {
		fmt.Println("Error: Database DSN is required. Use -db flag")
		flag.Usage()
		os.Exit(1)
	}
	if *batchSize <= 0 {
		*batchSize = 10
	}

	if err := utils.InitLogger("info", false, "load-transcripts"); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger := utils.Zlog
	defer logger.Sync()

	ctx := context.Background()

	records, err := loadJSONFile(*jsonFile)
	if err != nil {
		logger.Fatal("Failed to load JSON file", zap.Error(err))
	}
	logger.Info("Loaded records from JSON", zap.Int("count", len(records)))

	var gen llm.Generator
	if keys := parseAPIKeys(*apiKeys); len(keys) > 0 {
		g, err := llm.NewGeminiGenerator(ctx, keys, *model)
		if err != nil {
			logger.Fatal("Failed to initialize Gemini", zap.Error(err))
		}
		gen = g
	}

	pgClient, err := loaders.NewPostgresClient(*dbDSN, 4, *batchSize)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pgClient.Close()

	svc := youtubeapi.NewService(pgClient, pgClient, nil, gen, processors.NewFactory(nil), nil, nil)

	totalProcessed, totalFailed := 0, 0
	for i := 0; i < len(records); i += *batchSize {
		end := i + *batchSize
		if end > len(records) {
			end = len(records)
		}

		processed, failed := processBatch(ctx, svc, records[i:end], gen != nil, logger)
		totalProcessed += processed
		totalFailed += failed

		// pause between batches to stay under Gemini rate limits
		if gen != nil && end < len(records) {
			time.Sleep(500 * time.Millisecond)
		}
	}

	logger.Info("Completed processing all records",
		zap.Int("totalRecords", len(records)),
		zap.Int("successful", totalProcessed),
		zap.Int("failed", totalFailed))
}

func loadJSONFile(filePath string) ([]TranscriptRecord, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var records []TranscriptRecord
	if err := json.NewDecoder(file).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}
	return records, nil
}

func parseAPIKeys(keysStr string) []string {
	var keys []string
	for _, k := range strings.Split(keysStr, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func processBatch(ctx context.Context, svc *youtubeapi.Service, batch []TranscriptRecord, generate bool, logger *zap.Logger) (processed, failed int) {
	for _, record := range batch {
		if err := processRecord(ctx, svc, record, generate); err != nil {
			logger.Error("Failed to process record",
				zap.String("videoId", record.VideoID),
				zap.Error(err))
			failed++
			continue
		}
		processed++
	}
	return processed, failed
}

// processRecord stores the transcript and, with Gemini configured, the
// generated metadata. The video must already be synced.
func processRecord(ctx context.Context, svc *youtubeapi.Service, record TranscriptRecord, generate bool) error {
	if record.VideoID == "" {
		return fmt.Errorf("videoId is empty")
	}

	saveCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := svc.SaveTranscript(saveCtx, record.VideoID, record.Transcript); err != nil {
		return fmt.Errorf("failed to save transcript: %w", err)
	}
	if !generate {
		return nil
	}

	genCtx, genCancel := context.WithTimeout(ctx, 2*time.Minute)
	defer genCancel()
	resp, err := svc.GenerateMetadata(genCtx, record.VideoID)
	if err != nil {
		return fmt.Errorf("failed to generate metadata: %w", err)
	}

	utils.Zlog.Info("Generated metadata",
		zap.String("videoId", record.VideoID),
		zap.String("title", resp.Metadata.Title),
		zap.Int("tags", len(resp.Metadata.Tags)))
	return nil
}
