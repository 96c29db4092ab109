package cache

import (
	"context"
	"net"
	"strconv"
	"testing"

	"ask-mark/config"

	"github.com/alicebob/miniredis/v2"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, _ := net.SplitHostPort(mr.Addr())
	p, _ := strconv.Atoi(port)

	client, err := NewRedisClient(context.Background(), &config.RedisConfig{Address: host, Port: p})
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	defer client.Close()

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, _ := mr.Get("k"); got != "v" {
		t.Fatalf("value = %q", got)
	}
}

func TestNewRedisClientUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, _ := net.SplitHostPort(mr.Addr())
	p, _ := strconv.Atoi(port)
	mr.Close()

	if _, err := NewRedisClient(context.Background(), &config.RedisConfig{Address: host, Port: p}); err == nil {
		t.Fatal("expected ping error")
	}
}
