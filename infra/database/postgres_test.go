package database

import (
	"testing"

	"ask-mark/config"
)

func TestDSN(t *testing.T) {
	got := DSN(&config.PostgresConfig{Address: "db", Port: 5433, User: "u", Password: "p", DBName: "ask"})
	want := "host=db user=u password=p dbname=ask port=5433 sslmode=disable TimeZone=UTC"
	if got != want {
		t.Fatalf("DSN = %q, want %q", got, want)
	}

	got = DSN(&config.PostgresConfig{Address: "db", Port: 5432, SSLMode: "require"})
	if want := "host=db user= password= dbname= port=5432 sslmode=require TimeZone=UTC"; got != want {
		t.Fatalf("DSN = %q, want %q", got, want)
	}
}
