package main

import (
	"context"
	"flag"
	"log"

	"github.com/fatih/color"

	"reasonmed-be/internal/bootstrap"
	"reasonmed-be/internal/config"
	"reasonmed-be/pkg/ingest"
)

func main() {
	filePath := flag.String("file", "data/medical_cases.jsonl", "Path to the JSONL corpus")
	limit := flag.Int("limit", 0, "Max records to ingest (0 = all)")
	reset := flag.Bool("reset", false, "Wipe the collection before ingesting")
	flag.Parse()

	cfg := config.Load()
	container := bootstrap.NewContainer(cfg)

	ctx := context.Background()

	if *reset {
		color.Yellow("Resetting collection %s...", cfg.VectorStore.CollectionName)
		if err := container.Store.Reset(ctx); err != nil {
			log.Fatalf("[FATAL] Failed to reset collection: %v", err)
		}
	}

	color.Cyan("Loading corpus from %s...", *filePath)
	records, err := ingest.LoadJSONL(*filePath, *limit)
	if err != nil {
		log.Fatalf("[FATAL] Failed to load corpus: %v", err)
	}
	color.Cyan("Loaded %d records", len(records))

	processed := ingest.ProcessAll(records)

	ids := make([]string, 0, len(processed))
	texts := make([]string, 0, len(processed))
	metadatas := make([]map[string]interface{}, 0, len(processed))
	for i := range processed {
		ids = append(ids, processed[i].QuestionID)
		texts = append(texts, processed[i].Text)
		metadatas = append(metadatas, processed[i].Metadata())
	}

	color.Cyan("Embedding %d documents...", len(texts))
	embeddings, err := container.Embedder.EmbedBatch(ctx, texts, cfg.Ai.EmbedBatchSize, cfg.Ai.EmbedBatchDelay)
	if err != nil {
		log.Fatalf("[FATAL] Failed to embed corpus: %v", err)
	}

	color.Cyan("Upserting into %s...", cfg.VectorStore.CollectionName)
	if err := container.Store.Upsert(ctx, ids, texts, metadatas, embeddings); err != nil {
		log.Fatalf("[FATAL] Failed to upsert corpus: %v", err)
	}

	count, err := container.Store.Count(ctx)
	if err != nil {
		log.Fatalf("[FATAL] Failed to count collection: %v", err)
	}
	color.Green("Done. Collection %s now holds %d records.", cfg.VectorStore.CollectionName, count)
}
