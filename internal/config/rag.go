package config

import (
	"sync"
)

// RAGConfig configures chunking, the document store and retrieval.
type RAGConfig struct {
	ChunkSize     int
	ChunkOverlap  int
	StorePath     string
	VectorEnabled bool
	TopK          int
}

var (
	ragConfig *RAGConfig
	ragOnce   sync.Once
)

func LoadRAGConfig() *RAGConfig {
	ragOnce.Do(func() {
		ragConfig = &RAGConfig{
			ChunkSize:     getEnvInt("RAG_CHUNK_SIZE", 1000),
			ChunkOverlap:  getEnvInt("RAG_CHUNK_OVERLAP", 200),
			StorePath:     getEnv("RAG_STORE_PATH", "./data/simple_documents.json"),
			VectorEnabled: getEnvBool("RAG_VECTOR_ENABLED", true),
			TopK:          getEnvInt("RAG_TOP_K", 5),
		}
	})
	return ragConfig
}
