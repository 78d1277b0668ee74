package links

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"autotrader-analyzer/utils"
)

// carIDPattern captures the numeric listing id embedded in an advert URL.
var carIDPattern = regexp.MustCompile(`car-details/(\d+)`)

// Read loads listing URLs from a text file, one per line, de-duplicated by
// the car-details/<digits> id. The first occurrence of an id wins and input
// order is preserved. Lines without a recognisable id are skipped.
func Read(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("links: open %q: %w", path, err)
	}
	defer f.Close()

	seen := utils.NewIDSet()
	var unique []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		link := strings.TrimSpace(scanner.Text())
		if link == "" {
			continue
		}
		match := carIDPattern.FindStringSubmatch(link)
		if match == nil {
			continue
		}
		if seen.Add(match[1]) {
			unique = append(unique, link)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("links: read %q: %w", path, err)
	}

	return unique, nil
}
