package bootstrap

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"

	openaiclient "github.com/AsgharZaheer/todo-app-chatbot/internal/client/openai"
	vertexclient "github.com/AsgharZaheer/todo-app-chatbot/internal/client/vertex"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/config"
)

// initModel builds the model client for the configured provider. Without a
// usable credential bs.Model stays nil and the fallback agent is used.
func (bs *Bootstrap) initModel(ctx context.Context, cfg *config.Config) error {
	if cfg.ModelProvider == config.ProviderOpenAI && cfg.OpenAIAPIKey == "" && cfg.OpenAIAPIKeySecret != "" {
		key, err := AccessSecret(ctx, cfg.ProjectID, cfg.OpenAIAPIKeySecret)
		if err != nil {
			return fmt.Errorf("load model api key: %w", err)
		}
		cfg.OpenAIAPIKey = key
	}

	if !cfg.HasModelCredential() {
		bs.Log.Warn("no model credential configured, using rule-based agent", "provider", cfg.ModelProvider)
		return nil
	}

	switch cfg.ModelProvider {
	case config.ProviderVertex:
		adapter, err := vertexclient.NewAdapter(ctx, bs.Log, cfg.ProjectID, cfg.Region, cfg.VertexModel)
		if err != nil {
			return err
		}
		bs.closers = append(bs.closers, adapter.Close)
		bs.Model = adapter
	default:
		bs.Model = openaiclient.NewAdapter(bs.Log, cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	}
	bs.Log.Info("model client ready", "provider", cfg.ModelProvider)
	return nil
}

// AccessSecret reads a Secret Manager secret. name may be a bare secret id,
// a secret resource name, or a full version resource name.
func AccessSecret(ctx context.Context, projectID, name string) (string, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretVersionName(projectID, name),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(resp.GetPayload().GetData())), nil
}

func secretVersionName(projectID, name string) string {
	if !strings.HasPrefix(name, "projects/") {
		name = fmt.Sprintf("projects/%s/secrets/%s", projectID, name)
	}
	if !strings.Contains(name, "/versions/") {
		name += "/versions/latest"
	}
	return name
}
