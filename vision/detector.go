package vision

import (
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"os"
	"path/filepath"
	"sort"

	"autotrader-analyzer/utils"
)

// Detection pipeline parameters, tuned for AutoTrader gallery photos.
const (
	bilateralDiameter = 11
	bilateralSigma    = 17
	cannyLow          = 30
	cannyHigh         = 200
	maxContours       = 10
	approxTolerance   = 10
)

// Detector proposes the image region most likely to contain a number plate.
type Detector struct {
	logger  *utils.Logger
	saveDir string // when non-empty, detected crops are written here for review
}

// NewDetector creates a Detector. saveDir may be empty to disable crop dumps.
func NewDetector(logger *utils.Logger, saveDir string) *Detector {
	return &Detector{logger: logger, saveDir: saveDir}
}

// Detect returns the cropped plate-region candidate for one gallery image, or
// nil when no four-sided candidate is found. The ten largest contours by
// enclosed area are considered, largest first; the first one whose polygonal
// approximation has exactly four vertices is taken as the plate outline and
// its axis-aligned bounding box is cropped from the source image.
func (d *Detector) Detect(img image.Image, idx int) image.Image {
	gray := grayscale(img)
	smooth := bilateralFilter(gray, bilateralDiameter, bilateralSigma, bilateralSigma)
	edges := cannyEdges(smooth, cannyLow, cannyHigh)

	contours := findContours(edges, smooth.w, smooth.h)
	sort.SliceStable(contours, func(i, j int) bool {
		return contourArea(contours[i]) > contourArea(contours[j])
	})
	if len(contours) > maxContours {
		contours = contours[:maxContours]
	}

	for _, contour := range contours {
		approx := approxPolygon(contour, approxTolerance)
		if len(approx) != 4 {
			continue
		}

		rect := boundingRect(approx)
		crop := cropImage(img, rect)
		if d.saveDir != "" {
			d.saveCrop(crop, idx)
		}
		return crop
	}
	return nil
}

// Preprocess prepares a cropped plate region for text recognition: the same
// grayscale plus edge-preserving smoothing applied before edge detection.
func Preprocess(img image.Image) *image.Gray {
	gray := grayscale(img)
	return bilateralFilter(gray, bilateralDiameter, bilateralSigma, bilateralSigma).toImage()
}

// cropImage copies rect (in bounds-relative coordinates) out of src.
func cropImage(src image.Image, rect image.Rectangle) image.Image {
	b := src.Bounds()
	rect = rect.Intersect(image.Rect(0, 0, b.Dx(), b.Dy()))
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), src, rect.Min.Add(b.Min), draw.Src)
	return dst
}

func (d *Detector) saveCrop(crop image.Image, idx int) {
	if err := os.MkdirAll(d.saveDir, 0755); err != nil {
		d.logger.Warn("[detector] Could not create crop dir %s: %v", d.saveDir, err)
		return
	}
	path := filepath.Join(d.saveDir, fmt.Sprintf("number_plate_%d.jpg", idx))
	f, err := os.Create(path)
	if err != nil {
		d.logger.Warn("[detector] Could not save crop %s: %v", path, err)
		return
	}
	defer f.Close()
	if err := jpeg.Encode(f, crop, nil); err != nil {
		d.logger.Warn("[detector] Could not encode crop %s: %v", path, err)
	}
}
