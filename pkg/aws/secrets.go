package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

const defaultSecretTTL = 10 * time.Minute

// SecretValueAPI is the part of the Secrets Manager client the store uses.
type SecretValueAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

type cachedSecret struct {
	value   string
	expires time.Time
}

// SecretsClient reads store credentials from Secrets Manager. Values are
// cached for ttl.
type SecretsClient struct {
	api   SecretValueAPI
	ttl   time.Duration
	now   func() time.Time
	cache map[string]cachedSecret
	mu    sync.RWMutex
}

func NewSecretsClient(cfg sdkaws.Config) *SecretsClient {
	return NewSecretsClientWithAPI(secretsmanager.NewFromConfig(cfg), defaultSecretTTL)
}

func NewSecretsClientWithAPI(api SecretValueAPI, ttl time.Duration) *SecretsClient {
	if ttl <= 0 {
		ttl = defaultSecretTTL
	}
	return &SecretsClient{
		api:   api,
		ttl:   ttl,
		now:   time.Now,
		cache: make(map[string]cachedSecret),
	}
}

// GetSecret returns a secret's string value. A name of the form "id#key"
// reads key from a JSON object secret, so several settings can share one
// secret.
func (s *SecretsClient) GetSecret(ctx context.Context, name string) (string, error) {
	id, key, hasKey := strings.Cut(name, "#")

	raw, err := s.secretString(ctx, id)
	if err != nil {
		return "", err
	}
	if !hasKey {
		return raw, nil
	}

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return "", fmt.Errorf("secret %s is not a JSON object: %w", id, err)
	}
	v, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("secret %s has no key %q", id, key)
	}
	if str, ok := v.(string); ok {
		return str, nil
	}
	return fmt.Sprint(v), nil
}

func (s *SecretsClient) secretString(ctx context.Context, id string) (string, error) {
	now := s.now()

	s.mu.RLock()
	entry, ok := s.cache[id]
	s.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.value, nil
	}

	out, err := s.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: sdkaws.String(id)})
	if err != nil {
		return "", fmt.Errorf("failed to get secret %s: %w", id, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", id)
	}

	s.mu.Lock()
	s.cache[id] = cachedSecret{value: *out.SecretString, expires: now.Add(s.ttl)}
	s.mu.Unlock()

	return *out.SecretString, nil
}
