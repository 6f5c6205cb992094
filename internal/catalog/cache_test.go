package catalog

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestCacheRoundTripAndExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()
	cache := NewCache(client, "test:", time.Minute)
	ctx := context.Background()

	var out []Category
	hit, err := cache.GetJSON(ctx, "categories", &out)
	if err != nil || hit {
		t.Fatalf("expected miss, got hit=%v err=%v", hit, err)
	}
	if err := cache.SetJSON(ctx, "categories", []Category{{ID: "5", Name: "Pizzas", Count: 3}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("test:categories") {
		t.Fatal("expected prefixed key to be stored")
	}
	hit, err = cache.GetJSON(ctx, "categories", &out)
	if err != nil || !hit {
		t.Fatalf("expected hit, got hit=%v err=%v", hit, err)
	}
	if len(out) != 1 || out[0].Name != "Pizzas" {
		t.Fatalf("unexpected payload %+v", out)
	}

	mr.FastForward(2 * time.Minute)
	hit, _ = cache.GetJSON(ctx, "categories", &out)
	if hit {
		t.Fatal("expected entry to expire")
	}
}

func TestNilCacheIsNoop(t *testing.T) {
	var cache *Cache
	var out any
	hit, err := cache.GetJSON(context.Background(), "k", &out)
	if hit || err != nil {
		t.Fatalf("expected silent miss, got %v %v", hit, err)
	}
	if err := cache.SetJSON(context.Background(), "k", 1); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
