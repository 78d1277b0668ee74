package links

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeLinksFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "links.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write links file: %v", err)
	}
	return path
}

func TestReadDeduplicatesByCarID(t *testing.T) {
	path := writeLinksFile(t, `
https://www.autotrader.co.uk/car-details/123?advert=1
https://www.autotrader.co.uk/car-details/456
https://www.autotrader.co.uk/car-details/123?advert=2
`)

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	want := []string{
		"https://www.autotrader.co.uk/car-details/123?advert=1",
		"https://www.autotrader.co.uk/car-details/456",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Read = %v; want %v (first occurrence wins, order preserved)", got, want)
	}
}

func TestReadSkipsUnrecognisedLines(t *testing.T) {
	path := writeLinksFile(t, `
https://www.autotrader.co.uk/search
not a url at all

https://www.autotrader.co.uk/car-details/789
`)

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if len(got) != 1 || got[0] != "https://www.autotrader.co.uk/car-details/789" {
		t.Errorf("Read = %v; want only the car-details link", got)
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Error("Read of a missing file returned nil error")
	}
}
