package config

import (
	"os"
	"strings"
	"time"
)

const (
	StoreFirestore = "firestore"
	StoreSQLite    = "sqlite"
	StorePostgres  = "postgres"

	ProviderOpenAI = "openai"
	ProviderVertex = "vertex"
)

type Config struct {
	ProjectID          string
	Region             string
	LogLevel           string
	Port               string
	StoreDriver        string
	DatabaseURL        string
	ModelProvider      string
	OpenAIAPIKey       string
	OpenAIAPIKeySecret string
	OpenAIBaseURL      string
	OpenAIModel        string
	VertexModel        string
	ToolServerCommand  string
	AgentTimeout       time.Duration
}

func New() *Config {
	return &Config{
		ProjectID:          os.Getenv("PROJECTID"),
		Region:             os.Getenv("REGION"),
		LogLevel:           os.Getenv("LOGLEVEL"),
		Port:               getOr("PORT", "8080"),
		StoreDriver:        getStoreDriver(os.Getenv("STOREDRIVER")),
		DatabaseURL:        getOr("DATABASEURL", "file:todo.db"),
		ModelProvider:      getModelProvider(os.Getenv("MODELPROVIDER")),
		OpenAIAPIKey:       os.Getenv("OPENAIAPIKEY"),
		OpenAIAPIKeySecret: os.Getenv("OPENAIAPIKEYSECRET"),
		OpenAIBaseURL:      os.Getenv("OPENAIBASEURL"),
		OpenAIModel:        getOr("OPENAIMODEL", "gpt-4o-mini"),
		VertexModel:        os.Getenv("VERTEXMODEL"),
		ToolServerCommand:  getOr("TOOLSERVERCOMMAND", "tasktools"),
		AgentTimeout:       getDuration("AGENTTIMEOUT", 60*time.Second),
	}
}

// HasModelCredential decides, once per process, whether the model-backed
// agent can run. Placeholder keys copied from example env files don't count.
func (c *Config) HasModelCredential() bool {
	switch c.ModelProvider {
	case ProviderVertex:
		return c.ProjectID != "" && c.Region != "" && c.VertexModel != ""
	default:
		key := strings.TrimSpace(c.OpenAIAPIKey)
		return key != "" && !strings.HasPrefix(key, "sk-your")
	}
}

func getOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getStoreDriver(driver string) string {
	switch strings.ToLower(driver) {
	case StoreSQLite:
		return StoreSQLite
	case StorePostgres:
		return StorePostgres
	default: // "firestore"
		return StoreFirestore
	}
}

func getModelProvider(provider string) string {
	switch strings.ToLower(provider) {
	case ProviderVertex:
		return ProviderVertex
	default: // "openai", also covers Groq and other compatible endpoints
		return ProviderOpenAI
	}
}
