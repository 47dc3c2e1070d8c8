package redis

import (
	"context"
	"testing"

	goredis "github.com/redis/go-redis/v9"
)

func TestNewRequiresClient(t *testing.T) {
	if _, err := New(Config{}); err != ErrNilClient {
		t.Fatalf("want ErrNilClient, got %v", err)
	}
}

func TestKeyPrefix(t *testing.T) {
	rdb := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"})
	defer rdb.Close()

	p, err := New(Config{Client: rdb, KeyPrefix: "app:prod:"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := p.key("query:console:k"); got != "app:prod:query:console:k" {
		t.Fatalf("key = %q", got)
	}
}

func TestCloseLeavesSharedClientOpen(t *testing.T) {
	rdb := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"})
	defer rdb.Close()

	p, _ := New(Config{Client: rdb})
	if err := p.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	owned, _ := New(Config{Client: goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"}), CloseClient: true})
	if err := owned.Close(context.Background()); err != nil {
		t.Fatalf("close owned: %v", err)
	}
	if err := owned.Close(context.Background()); err != nil {
		t.Fatalf("second close should be a no-op, got %v", err)
	}
}
