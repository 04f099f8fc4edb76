package cli

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/propdoc/propdoc/internal/extractor"
)

// CLIProgressReporter implements progress reporting with progress bars.
// All output goes to stderr so the extracted document can stream to stdout.
type CLIProgressReporter struct {
	quiet          bool
	pairBar        *progressbar.ProgressBar
	startTime      time.Time
	totalPairs     int
	processedPairs int
}

// NewCLIProgressReporter creates a new CLI progress reporter.
func NewCLIProgressReporter(quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{
		quiet:     quiet,
		startTime: time.Now(),
	}
}

func (c *CLIProgressReporter) OnDiscoveryStart() {
	if c.quiet {
		return
	}
	log.Println("Discovering file pairs...")
}

func (c *CLIProgressReporter) OnDiscoveryComplete(pairCount int) {
	if c.quiet {
		return
	}
	log.Printf("Processing %d header/implementation pairs\n", pairCount)
	fmt.Fprintln(os.Stderr)
}

func (c *CLIProgressReporter) OnExtractionStart(totalPairs int) {
	if c.quiet {
		return
	}
	c.totalPairs = totalPairs
	c.processedPairs = 0

	c.pairBar = progressbar.NewOptions(totalPairs,
		progressbar.OptionSetDescription("Extracting properties"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("pairs/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}

func (c *CLIProgressReporter) OnPairProcessed(baseName string, properties int) {
	if c.quiet {
		return
	}
	if c.pairBar != nil {
		c.processedPairs++
		c.pairBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnComplete(stats *extractor.Stats) {
	if c.quiet {
		return
	}

	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "✓ Extraction complete: %s properties in %.1fs\n",
		formatNumber(stats.PropertiesEmitted), stats.Duration.Seconds())
	fmt.Fprintf(os.Stderr, "  Pairs extracted: %s\n", formatNumber(stats.PairsExtracted))
	if stats.PairsSkipped > 0 {
		fmt.Fprintf(os.Stderr, "  Pairs skipped:   %s\n", formatNumber(stats.PairsSkipped))
	}
	if stats.PropertiesDropped > 0 {
		fmt.Fprintf(os.Stderr, "  Dropped:         %s\n", formatNumber(stats.PropertiesDropped))
	}
	if stats.EnterpriseCount > 0 {
		fmt.Fprintf(os.Stderr, "  Enterprise:      %s\n", formatNumber(stats.EnterpriseCount))
	}
}

// formatNumber formats integer with thousand separators.
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
