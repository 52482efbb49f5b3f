package aws

import (
	"context"
	"fmt"
	"sync"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// Secrets rotate, so cached values go stale after a while.
const secretCacheTTL = 5 * time.Minute

type cachedSecret struct {
	value     string
	fetchedAt time.Time
}

// SecretsClient reads string secrets from Secrets Manager with a short
// per-process cache, so config loaders can call it repeatedly without a
// network round trip per key.
type SecretsClient struct {
	client *secretsmanager.Client
	mu     sync.Mutex
	cache  map[string]cachedSecret
}

func NewSecretsClient(cfg sdkaws.Config) *SecretsClient {
	return &SecretsClient{
		client: secretsmanager.NewFromConfig(cfg),
		cache:  make(map[string]cachedSecret),
	}
}

func (s *SecretsClient) GetSecret(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	if entry, ok := s.cache[name]; ok && time.Since(entry.fetchedAt) < secretCacheTTL {
		s.mu.Unlock()
		return entry.value, nil
	}
	s.mu.Unlock()

	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: &name})
	if err != nil {
		return "", fmt.Errorf("failed to get secret %s: %w", name, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", name)
	}

	s.mu.Lock()
	s.cache[name] = cachedSecret{value: *out.SecretString, fetchedAt: time.Now()}
	s.mu.Unlock()

	return *out.SecretString, nil
}

// Lookup is GetSecret for optional overrides: it reports whether a
// non-empty value was found and swallows the error, which is what the
// service config loaders want for env-with-secret-fallback keys.
func (s *SecretsClient) Lookup(ctx context.Context, name string) (string, bool) {
	value, err := s.GetSecret(ctx, name)
	return value, err == nil && value != ""
}
