package objectstore

import "testing"

func TestConfigValidate(t *testing.T) {
	valid := Config{
		Endpoint:  "localhost:9000",
		AccessKey: "a",
		SecretKey: "b",
		Region:    "us-east-1",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() err=%v", err)
	}

	invalid := valid
	invalid.Endpoint = "http://localhost:9000"
	if err := invalid.Validate(); err == nil {
		t.Fatalf("Validate() expected error for scheme in endpoint")
	}

	invalid = valid
	invalid.AccessKey = ""
	if err := invalid.Validate(); err == nil {
		t.Fatalf("Validate() expected error for missing access key")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("EVALSWEEP_MINIO_ENDPOINT", "minio.internal:9000")
	t.Setenv("EVALSWEEP_MINIO_ACCESS_KEY", "sweep")
	t.Setenv("EVALSWEEP_MINIO_SECRET_KEY", "sweepsecret")
	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv() err=%v", err)
	}
	if cfg.Endpoint != "minio.internal:9000" {
		t.Fatalf("Endpoint=%q", cfg.Endpoint)
	}
	if cfg.Region != "us-east-1" {
		t.Fatalf("Region=%q, want default", cfg.Region)
	}
}
