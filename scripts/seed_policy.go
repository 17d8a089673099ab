// seed_policy.go loads a policy YAML file into the policy registry and, when
// asked, activates it and announces the activation so running services reload.
//
// Usage:
//
//	go run scripts/seed_policy.go -file policy.yaml -db postgres://... -activate -nats nats://localhost:4222
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Underwriter/internal/hermes"
	"github.com/MikeSquared-Agency/Underwriter/internal/policy"
	"github.com/MikeSquared-Agency/Underwriter/internal/store"
)

func main() {
	file := flag.String("file", "policy.yaml", "policy YAML file; fields left out keep their defaults")
	dbURL := flag.String("db", os.Getenv("UNDERWRITER_DATABASE_URL"), "policy registry database URL")
	natsURL := flag.String("nats", os.Getenv("UNDERWRITER_HERMES_URL"), "NATS URL for the activation event")
	activate := flag.Bool("activate", false, "mark the version active")
	dryRun := flag.Bool("dry-run", false, "validate and print without saving")
	flag.Parse()

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("read %s: %v", *file, err)
	}
	p := policy.Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		log.Fatalf("parse %s: %v", *file, err)
	}
	if err := p.Validate(); err != nil {
		log.Fatalf("policy %s: %v", p.Version, err)
	}

	if *dryRun {
		out, _ := yaml.Marshal(p)
		fmt.Printf("# version %s is valid\n%s", p.Version, out)
		return
	}
	if *dbURL == "" {
		log.Fatal("-db or UNDERWRITER_DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := store.NewPostgresStore(ctx, *dbURL)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if err := db.SavePolicy(ctx, p, *activate); err != nil {
		log.Fatalf("save: %v", err)
	}
	log.Printf("saved policy %s (active=%v)", p.Version, *activate)

	if !*activate || *natsURL == "" {
		return
	}
	hc, err := hermes.NewNATSClient(ctx, *natsURL, slog.Default())
	if err != nil {
		log.Fatalf("connect hermes: %v", err)
	}
	defer hc.Close()
	if err := hc.Publish(hermes.SubjectPolicyActivated, hermes.PolicyActivatedEvent{Version: p.Version}); err != nil {
		log.Fatalf("publish activation: %v", err)
	}
	log.Printf("announced activation of %s", p.Version)
}
