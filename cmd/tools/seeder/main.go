package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/storefront-cart/internal/cache"
	"github.com/noah-isme/storefront-cart/internal/config"
	"github.com/noah-isme/storefront-cart/internal/lock"
	"github.com/noah-isme/storefront-cart/internal/page"
	"github.com/noah-isme/storefront-cart/internal/snapshot"
)

// seeder writes a demo snapshot into Redis so a session opened with the same
// snapshot key starts from non-default quantities.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	key := flag.String("key", "00000000-0000-4000-8000-000000000001", "snapshot key to seed")
	owner := flag.String("owner", "", "csrftoken cookie of the visitor the snapshot belongs to")
	reset := flag.Bool("clear", false, "delete the snapshot instead of writing it")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.RedisURL == "" {
		log.Fatal("REDIS_URL is not set")
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("parse redis url: %v", err)
	}
	client := redis.NewClient(opts)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	storeKey := snapshot.ScopedKey(*key, *owner)
	store := snapshot.NewStore(cache.NewRedis(client, cfg.SnapshotTTL), lock.Redis{R: client}, zerolog.Nop())
	if *reset {
		if err := store.Clear(ctx, storeKey); err != nil {
			log.Fatalf("clear snapshot: %v", err)
		}
		log.Printf("Cleared snapshot %q", *key)
		return
	}

	seed := []struct {
		product string
		qty     int
		price   string
	}{
		{"teapot", 2, "£18.50"},
		{"mug", 4, "£6"},
		{"coaster", 1, "£2.25"},
	}
	for _, s := range seed {
		rec := snapshot.Record{
			ProductIDName: s.product,
			CurrentQty:    s.qty,
			CurrentPrice:  s.price,
			SelectorID:    page.QtyID(s.product),
		}
		if err := store.Upsert(ctx, storeKey, rec); err != nil {
			log.Fatalf("seed %s: %v", s.product, err)
		}
	}
	log.Printf("Seeded %d records into snapshot %q", len(seed), *key)
}
