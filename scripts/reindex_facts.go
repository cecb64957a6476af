package main

import (
	"context"
	"encoding/json"
	"log"

	"blockverify/credential-verifier/internal/config"
	"blockverify/credential-verifier/internal/repositories"
	"blockverify/credential-verifier/internal/services"
)

// Rebuilds the Qdrant duplicate-detection index from the fact sheets of
// completed verification records. Run after wiping or migrating the vector
// store.
func main() {
	log.Println("🚀 Starting fact sheet reindex...")

	// Load configuration
	cfg := config.Load()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := qdrantService.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	verificationRepo := repositories.NewVerificationRepository(db)
	detector := services.NewDuplicateDetectorService(geminiService, qdrantService)

	records, err := verificationRepo.FindCompleted(1000)
	if err != nil {
		log.Fatalf("❌ Failed to load completed records: %v", err)
	}

	ctx := context.Background()
	indexed := 0
	skipped := 0

	for _, record := range records {
		if record.FactsJSON == nil || *record.FactsJSON == "" {
			skipped++
			continue
		}

		var fact services.CertificateFact
		if err := json.Unmarshal([]byte(*record.FactsJSON), &fact); err != nil {
			log.Printf("⚠️  Skipping record %s: unreadable fact sheet: %v\n", record.ID, err)
			skipped++
			continue
		}

		if err := detector.IndexFacts(ctx, record.ID.String(), record.StudentID, &fact); err != nil {
			log.Printf("⚠️  Failed to index record %s: %v\n", record.ID, err)
			skipped++
			continue
		}
		indexed++
	}

	log.Printf("✅ Reindex complete: %d indexed, %d skipped\n", indexed, skipped)
}
