package publishers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publishers.yaml")
	raw := `
publishers:
  - id: hook
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: topic
    type: sns
    sns:
      topic_arn: arn:aws:sns:eu-west-1:123:listings
      region: eu-west-1
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "topic" {
		t.Fatalf("expected only topic enabled, got %#v", enabled)
	}
	hook, ok := reg.ByID("hook")
	if !ok || hook.HTTP.Method != "POST" || hook.HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Fatalf("http defaults not applied: %#v", hook.HTTP)
	}
}

func TestLoadRegistryEmptyPath(t *testing.T) {
	reg, err := LoadRegistry("")
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(reg.Enabled()) != 0 {
		t.Fatalf("expected no publishers")
	}
}

func TestSanitizeExpandsCredentialEnv(t *testing.T) {
	t.Setenv("TEST_AWS_KEY", "AKIA123")
	t.Setenv("TEST_AWS_SECRET", "s3cret")

	cfg := sanitizePublisherConfig(PublisherConfig{
		ID:   "q",
		Type: "SQS",
		SQS: &SQSPublisherConfig{
			QueueURL: " https://sqs.local/q ",
			Region:   "eu-west-1",
			Credentials: &AWSCredentials{
				AccessKeyID:     "${TEST_AWS_KEY}",
				SecretAccessKey: "${TEST_AWS_SECRET}",
			},
		},
	})
	if err := validatePublisherConfig(cfg); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Type != TypeSQS || cfg.SQS.QueueURL != "https://sqs.local/q" {
		t.Fatalf("config not sanitized: %#v", cfg)
	}
	if cfg.SQS.Credentials.AccessKeyID != "AKIA123" || cfg.SQS.Credentials.SecretAccessKey != "s3cret" {
		t.Fatalf("credentials not expanded: %#v", cfg.SQS.Credentials)
	}
}

func TestValidatePublisherConfigRejectsIncompleteBlocks(t *testing.T) {
	cases := []PublisherConfig{
		{ID: "h1", Type: TypeHTTP},
		{ID: "s1", Type: TypeSNS, SNS: &SNSPublisherConfig{Region: "eu-west-1"}},
		{ID: "p1", Type: TypePubSub, PubSub: &PubSubPublisherConfig{ProjectID: "proj"}},
		{ID: "q1", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "u", Region: "r", Credentials: &AWSCredentials{AccessKeyID: "k"}}},
	}
	for _, cfg := range cases {
		if err := validatePublisherConfig(cfg); err == nil {
			t.Fatalf("expected validation error for %s", cfg.ID)
		}
	}
}
