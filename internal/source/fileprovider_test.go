package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/qihao/futures-insight/internal/market"
)

func TestFileProvider_Positions(t *testing.T) {
	dir := t.TempDir()
	payload := `{"Tables":[{"Name":"m2501","Rows":[{"long_party_name":"永安期货","vol":"100"}]}]}`
	if err := os.WriteFile(filepath.Join(dir, "dce_20260828.json"), []byte(payload), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	fetch := NewFileProvider(dir).Positions(ExchangeDCE)
	ds, err := fetch(context.Background(), "20260828")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(ds.Tables) != 1 || ds.Tables[0].Name != "m2501" {
		t.Errorf("dataset = %+v", ds)
	}
}

func TestFileProvider_MissingFileIsEmptyResult(t *testing.T) {
	fetch := NewFileProvider(t.TempDir()).Positions(ExchangeSHFE)
	_, err := fetch(context.Background(), "20260828")
	if !errors.Is(err, market.ErrEmptyResult) {
		t.Errorf("want ErrEmptyResult, got %v", err)
	}
}

func TestFileProvider_MalformedFileIsFormatError(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "daily_DCE_20260828.json"), []byte("{"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	daily := NewFileProvider(dir).Daily()
	_, err := daily(context.Background(), "20260828", "DCE")
	if !errors.Is(err, market.ErrDataFormat) {
		t.Errorf("want ErrDataFormat, got %v", err)
	}
}

func TestDefaultDescriptors(t *testing.T) {
	descs := DefaultDescriptors(NewFileProvider(t.TempDir()))
	if len(descs) != 5 {
		t.Fatalf("descriptors = %d, want 5", len(descs))
	}

	reg, err := NewRegistry(nil, descs...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if got := len(reg.PriceSources()); got != 4 {
		t.Errorf("price sources = %d, want 4 (gfex has none)", got)
	}

	czce, ok := reg.Get(ExchangeCZCE)
	if !ok {
		t.Fatal("czce not registered")
	}
	if len(czce.Adapter.Renames) == 0 {
		t.Error("czce should use the renaming adapter")
	}
}
