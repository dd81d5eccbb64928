package config

import "testing"

func TestLoadPerServiceDefaults(t *testing.T) {
	t.Setenv("SERVICE_NAME", "feed-service")

	cfg := Load()
	if cfg.HTTPPort != "8081" || cfg.MetricsPort != "9096" {
		t.Fatalf("unexpected feed-service ports: %s / %s", cfg.HTTPPort, cfg.MetricsPort)
	}
	if cfg.TopicChallengeFinalized != "challenge_finalized" {
		t.Fatalf("unexpected topic default: %s", cfg.TopicChallengeFinalized)
	}
	if cfg.RedisPubSubChannel != "challenge_updates_broadcast" {
		t.Fatalf("unexpected pubsub channel: %s", cfg.RedisPubSubChannel)
	}
}

func TestLoadWorkerHasNoPublicPort(t *testing.T) {
	t.Setenv("SERVICE_NAME", "bet-settlement-worker")

	cfg := Load()
	if cfg.HTTPPort != "" {
		t.Fatalf("worker must not expose a public port, got %s", cfg.HTTPPort)
	}
	if cfg.MetricsPort != "9097" {
		t.Fatalf("unexpected metrics port: %s", cfg.MetricsPort)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SERVICE_NAME", "challenge-service")
	t.Setenv("HTTP_PORT_CHALLENGE", "18080")
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg := Load()
	if cfg.HTTPPort != "18080" {
		t.Fatalf("override ignored: %s", cfg.HTTPPort)
	}
	if cfg.StorageDriver != "memory" {
		t.Fatalf("storage driver override ignored: %s", cfg.StorageDriver)
	}
}
