package extractor

// ProgressReporter provides callbacks for reporting extraction progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnDiscoveryStart is called when file pair discovery begins.
	OnDiscoveryStart()

	// OnDiscoveryComplete is called when file pair discovery finishes.
	OnDiscoveryComplete(pairCount int)

	// OnExtractionStart is called before pair processing begins.
	OnExtractionStart(totalPairs int)

	// OnPairProcessed is called after each pair is processed.
	OnPairProcessed(baseName string, properties int)

	// OnComplete is called when extraction completes successfully.
	OnComplete(stats *Stats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryStart()                               {}
func (n *NoOpProgressReporter) OnDiscoveryComplete(pairCount int)               {}
func (n *NoOpProgressReporter) OnExtractionStart(totalPairs int)                {}
func (n *NoOpProgressReporter) OnPairProcessed(baseName string, properties int) {}
func (n *NoOpProgressReporter) OnComplete(stats *Stats)                         {}
