package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Nuaddam/scb-protect-test-chatbot/internal/agent"
	"github.com/Nuaddam/scb-protect-test-chatbot/internal/chunker"
	"github.com/Nuaddam/scb-protect-test-chatbot/internal/config"
	"github.com/Nuaddam/scb-protect-test-chatbot/internal/domain"
	openaiembed "github.com/Nuaddam/scb-protect-test-chatbot/internal/embedding/openai"
	"github.com/Nuaddam/scb-protect-test-chatbot/internal/embedding/tfidf"
	"github.com/Nuaddam/scb-protect-test-chatbot/internal/history"
	"github.com/Nuaddam/scb-protect-test-chatbot/internal/interest"
	"github.com/Nuaddam/scb-protect-test-chatbot/internal/interview"
	openaillm "github.com/Nuaddam/scb-protect-test-chatbot/internal/llm/openai"
	"github.com/Nuaddam/scb-protect-test-chatbot/internal/rag"
	"github.com/Nuaddam/scb-protect-test-chatbot/internal/server"
	"github.com/Nuaddam/scb-protect-test-chatbot/internal/session"
	"github.com/Nuaddam/scb-protect-test-chatbot/internal/summarizer"
	"github.com/Nuaddam/scb-protect-test-chatbot/internal/vectorstore/memory"
	"github.com/Nuaddam/scb-protect-test-chatbot/internal/vectorstore/qdrant"
	"github.com/Nuaddam/scb-protect-test-chatbot/internal/websearch"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/scb-chatbot/config.yaml if not provided)")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	var cfg *config.AppConfig
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// Assemble components
	var emb domain.Embedder
	switch cfg.Embedder.Type {
	case "tfidf", "":
		emb = tfidf.NewEmbedder()
	case "openai":
		ecfg := cfg.Embedder.OpenAI
		if ecfg == nil {
			ecfg = &config.OpenAIEmbedderConfig{}
		}
		client, err := openaiembed.NewClient(openaiembed.Config{
			APIKeyEnv: ecfg.APIKeyEnv,
			Model:     ecfg.Model,
			Timeout:   time.Duration(ecfg.TimeoutSecs) * time.Second,
		})
		if err != nil {
			logger.Fatal("openai embedder init failed", zap.Error(err))
		}
		emb = client
	default:
		logger.Fatal("unknown embedder", zap.String("type", cfg.Embedder.Type))
	}

	var store domain.VectorStore
	switch cfg.VectorStore.Type {
	case "memory", "":
		store = memory.NewStorage()
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			logger.Fatal("qdrant config missing")
		}
		store = qdrant.NewStorage(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Collection: cfg.VectorStore.Qdrant.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		})
	default:
		logger.Fatal("unknown vector store", zap.String("type", cfg.VectorStore.Type))
	}

	gen, err := openaillm.NewGenerator(openaillm.Config{
		APIKeyEnv:   cfg.LLM.APIKeyEnv,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
	})
	if err != nil {
		logger.Fatal("llm init failed", zap.Error(err))
	}

	var interestLogger domain.InterestLogger
	switch cfg.Interest.Type {
	case "csv", "":
		interestLogger = interest.NewCSVLogger(cfg.Interest.CSVPath)
	case "http":
		if cfg.Interest.URL == "" {
			logger.Fatal("interest tool url missing")
		}
		interestLogger = interest.NewHTTPLogger(cfg.Interest.URL, time.Duration(cfg.Interest.TimeoutSecs)*time.Second)
	default:
		logger.Fatal("unknown interest logger", zap.String("type", cfg.Interest.Type))
	}

	hist, err := history.Open(cfg.History.Path)
	if err != nil {
		logger.Fatal("failed to open history db", zap.Error(err))
	}
	defer func() { _ = hist.Close() }()

	ch := chunker.NewSentenceChunker(cfg.Chunker.SentencesPerChunk, cfg.Chunker.OverlapSentences)
	retriever := rag.NewService(ch, emb, store, logger.Named("rag"))

	var web domain.WebSearcher
	if cfg.WebSearch.Enabled {
		web = websearch.NewDuckDuckGo(cfg.WebSearch.BaseURL, time.Duration(cfg.WebSearch.TimeoutSecs)*time.Second)
	}

	a := agent.New(agent.Config{
		Sessions:   session.NewMemoryStore(),
		Generator:  gen,
		Interview:  interview.New(gen, interestLogger, logger.Named("interview")),
		Classifier: agent.NewLLMClassifier(gen, logger.Named("classifier")),
		Retriever:  retriever,
		Web:        web,
		Summarizer: summarizer.NewFrequencySummarizer(),
		Logger:     logger.Named("agent"),
		TopK:       cfg.Retrieval.TopK,
		MinScore:   cfg.Retrieval.MinScore,
	})

	srv := server.New(a, retriever, hist, logger.Named("http"))
	logger.Info("chatbot server listening", zap.String("addr", cfg.Server.Addr))
	if err := http.ListenAndServe(cfg.Server.Addr, srv.Routes()); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
