package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"SignalSentinel/internal/alert"
	"SignalSentinel/internal/model"
)

func sample() []model.AlertRecord {
	return []model.AlertRecord{
		{Symbol: "BITCOIN", Signal: model.SignalBuy, Price: 64000.12, RSI: 25.5, Trend: model.TrendBullish, EmittedAt: "2025-01-01 00:00:00 UTC"},
		{Symbol: "XRP", Signal: model.SignalSell, Price: 0.61, RSI: 77.1, Trend: model.TrendBearish, EmittedAt: "2025-01-01 00:00:00 UTC"},
	}
}

func TestFileLedger_MissingFileIsEmpty(t *testing.T) {
	l := NewFileLedger(filepath.Join(t.TempDir(), "none", "alerts.json"))
	records, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty ledger, got %d", len(records))
	}
}

func TestFileLedger_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "alerts.json")
	l := NewFileLedger(path)
	if err := l.Save(context.Background(), sample()); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	got, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(got) != 2 || got[0] != sample()[0] {
		t.Fatalf("unexpected records %+v", got)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	var generic []map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("file is not a JSON array: %v", err)
	}
	for _, key := range []string{"symbol", "signal", "price", "rsi", "trend", "emitted_at"} {
		if _, ok := generic[0][key]; !ok {
			t.Errorf("missing field %q in stored record", key)
		}
	}
}

func TestFileLedger_CorruptOrNonListTolerated(t *testing.T) {
	for _, content := range []string{"{not json", `{"symbol":"BTC"}`, `"hello"`} {
		path := filepath.Join(t.TempDir(), "alerts.json")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
		l := NewFileLedger(path)
		if _, err := l.Load(context.Background()); err == nil {
			t.Errorf("%q: expected load error", content)
		}

		rec := alert.NewRecorder(l, 100, zerolog.Nop())
		batch := sample()
		merged, err := rec.Commit(context.Background(), batch)
		if err != nil {
			t.Fatalf("%q: commit should tolerate corrupt ledger, got %v", content, err)
		}
		if len(merged) != len(batch) {
			t.Errorf("%q: expected ledger to equal batch, got %d records", content, len(merged))
		}
		stored, err := l.Load(context.Background())
		if err != nil || len(stored) != len(batch) {
			t.Errorf("%q: expected repaired file, got %d, %v", content, len(stored), err)
		}
	}
}

func TestRemoteLedger_LoadSave(t *testing.T) {
	var stored []byte
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if stored == nil {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write(stored)
		case http.MethodPost:
			auth = r.Header.Get("Authorization")
			stored, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer server.Close()

	l := NewRemoteLedger(server.URL, "secret", time.Second)
	records, err := l.Load(context.Background())
	if err != nil || len(records) != 0 {
		t.Fatalf("expected empty ledger on 404, got %v, %v", records, err)
	}
	if err := l.Save(context.Background(), sample()); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if auth != "Bearer secret" {
		t.Errorf("unexpected authorization header %q", auth)
	}
	records, err = l.Load(context.Background())
	if err != nil || len(records) != 2 {
		t.Fatalf("expected 2 records, got %v, %v", records, err)
	}
}

func TestRemoteLedger_SaveRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	l := NewRemoteLedger(server.URL, "wrong", time.Second)
	if err := l.Save(context.Background(), sample()); err == nil {
		t.Fatal("expected error on 403")
	}
}

func TestNew_Backends(t *testing.T) {
	if l, err := New(Options{Backend: "file", Path: "x.json"}); err != nil {
		t.Fatalf("file: %v", err)
	} else if _, ok := l.(*FileLedger); !ok {
		t.Errorf("expected *FileLedger, got %T", l)
	}
	if l, err := New(Options{Backend: "redis", Redis: RedisConfig{Addr: "localhost:6379"}}); err != nil {
		t.Fatalf("redis: %v", err)
	} else if rl, ok := l.(*RedisLedger); !ok || rl.key != DefaultRedisKey {
		t.Errorf("expected *RedisLedger with default key, got %T", l)
	}
	if _, err := New(Options{Backend: "remote"}); err == nil {
		t.Error("expected error for remote without url")
	}
	if _, err := New(Options{Backend: "s3"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestRedisLedger_UnreachableServer(t *testing.T) {
	cli := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	l := NewRedisLedgerWithClient(cli, "")
	defer l.Close()

	if _, err := l.Load(context.Background()); err == nil {
		t.Fatal("expected load error from unreachable server")
	}

	rec := alert.NewRecorder(l, alert.DefaultCapacity, zerolog.Nop())
	_, err := rec.Commit(context.Background(), sample())
	if !errors.Is(err, alert.ErrLedgerWrite) {
		t.Errorf("Commit err = %v, want ErrLedgerWrite", err)
	}
}
