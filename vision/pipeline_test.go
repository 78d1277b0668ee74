package vision

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"autotrader-analyzer/models"
	"autotrader-analyzer/utils"
)

// fakeRecognizer returns canned OCR text regardless of the region content.
type fakeRecognizer struct {
	text string
}

func (f *fakeRecognizer) Recognize(_ context.Context, _ image.Image) (string, error) {
	return f.text, nil
}

func newTestPlateReader(t *testing.T, rec TextRecognizer) *PlateReader {
	t.Helper()
	logger := utils.NewLogger(false)
	return NewPlateReader(
		NewDownloader(5*time.Second),
		NewDetector(logger, ""),
		rec,
		utils.NewWorkerPool(2, 0),
		logger,
	)
}

func newImageServer(t *testing.T) *httptest.Server {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, syntheticPlateImage()); err != nil {
		t.Fatalf("encode synthetic image: %v", err)
	}
	data := buf.Bytes()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPlateReaderConsensusAcrossImages(t *testing.T) {
	srv := newImageServer(t)
	reader := newTestPlateReader(t, &fakeRecognizer{text: "GB\nAB12 CDE"})

	plate := reader.Read(context.Background(), []string{
		srv.URL + "/img1.png",
		srv.URL + "/img2.png",
	})
	if plate != "AB12 CDE" {
		t.Errorf("Read = %q; want %q", plate, "AB12 CDE")
	}
}

func TestPlateReaderSingleReadIsNotTrusted(t *testing.T) {
	srv := newImageServer(t)
	reader := newTestPlateReader(t, &fakeRecognizer{text: "AB12 CDE"})

	plate := reader.Read(context.Background(), []string{srv.URL + "/img1.png"})
	if plate != models.NoPlate {
		t.Errorf("Read with one image = %q; want %q", plate, models.NoPlate)
	}
}

func TestPlateReaderFailedDownloadLosesOnlyThatVote(t *testing.T) {
	srv := newImageServer(t)
	reader := newTestPlateReader(t, &fakeRecognizer{text: "AB12 CDE"})

	plate := reader.Read(context.Background(), []string{
		srv.URL + "/img1.png",
		srv.URL + "/missing.png",
		srv.URL + "/img2.png",
	})
	if plate != "AB12 CDE" {
		t.Errorf("Read = %q; want %q", plate, "AB12 CDE")
	}
}

func TestPlateReaderNoImages(t *testing.T) {
	reader := newTestPlateReader(t, &fakeRecognizer{text: "AB12 CDE"})
	if plate := reader.Read(context.Background(), nil); plate != models.NoPlate {
		t.Errorf("Read with no images = %q; want %q", plate, models.NoPlate)
	}
}
