package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkWeightCrash     BookmarkType = "weight_crash"
	BookmarkColdSnap        BookmarkType = "cold_snap"
	BookmarkHeatStress      BookmarkType = "heat_stress"
	BookmarkLitter          BookmarkType = "litter"
	BookmarkStableCondition BookmarkType = "stable_condition"
	BookmarkDeath           BookmarkType = "death"
)

// Detector thresholds.
const (
	weightCrashFraction = 0.15
	coldSnapDeviation   = -4.0
	heatStressDeviation = 3.0
	stableWindow        = 4
	stableRuns          = 5
)

// Bookmark is an automatically flagged turn.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Turn        int          `csv:"turn"`
	Generation  int          `csv:"generation"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"turn", b.Turn,
		"generation", b.Generation,
		"description", b.Description,
	)
}

// BookmarkDetector flags notable turns in the subject's history.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []TurnRecord
	historySize int
	historyIdx  int
	historyFull bool

	recentPeakKg float64
	cold         bool
	hot          bool
	stableCount  int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < stableWindow {
		historySize = stableWindow
	}
	return &BookmarkDetector{
		history:     make([]TurnRecord, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest record and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(rec TurnRecord) []Bookmark {
	var bookmarks []Bookmark
	add := func(b *Bookmark) {
		if b != nil {
			b.Turn = rec.Turn
			b.Generation = rec.Generation
			bookmarks = append(bookmarks, *b)
		}
	}

	add(bd.checkWeightCrash(rec))
	add(bd.checkCoreTemperature(rec))
	if rec.Births > 0 {
		add(&Bookmark{Type: BookmarkLitter, Description: fmt.Sprintf("%d offspring survived birth", rec.Births)})
	}
	add(bd.checkStableCondition(rec))
	if !rec.Alive && rec.DeathCause != "" {
		add(&Bookmark{Type: BookmarkDeath, Description: fmt.Sprintf("Died of %s at %.2f kg", rec.DeathCause, rec.WeightKg)})
	}

	bd.addToHistory(rec)
	if rec.WeightKg > bd.recentPeakKg {
		bd.recentPeakKg = rec.WeightKg
	}
	return bookmarks
}

// Reset clears the history, used when a new generation starts.
func (bd *BookmarkDetector) Reset() {
	*bd = *NewBookmarkDetector(bd.historySize)
}

func (bd *BookmarkDetector) addToHistory(rec TurnRecord) {
	bd.history[bd.historyIdx] = rec
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n of the latest records, oldest first.
func (bd *BookmarkDetector) recent(n int) []TurnRecord {
	count := bd.historyIdx
	if bd.historyFull {
		count = bd.historySize
	}
	n = min(n, count)
	out := make([]TurnRecord, 0, n)
	for i := n; i > 0; i-- {
		idx := (bd.historyIdx - i + bd.historySize) % bd.historySize
		out = append(out, bd.history[idx])
	}
	return out
}

func (bd *BookmarkDetector) checkWeightCrash(rec TurnRecord) *Bookmark {
	if bd.recentPeakKg <= 0 {
		return nil
	}
	drop := 1 - rec.WeightKg/bd.recentPeakKg
	if drop <= weightCrashFraction {
		return nil
	}
	// Reset the peak after triggering
	oldPeak := bd.recentPeakKg
	bd.recentPeakKg = rec.WeightKg
	return &Bookmark{
		Type:        BookmarkWeightCrash,
		Description: fmt.Sprintf("Weight fell %.0f%% from %.2f kg to %.2f kg", drop*100, oldPeak, rec.WeightKg),
	}
}

func (bd *BookmarkDetector) checkCoreTemperature(rec TurnRecord) *Bookmark {
	switch {
	case rec.CoreDeviation <= coldSnapDeviation && !bd.cold:
		bd.cold = true
		return &Bookmark{
			Type:        BookmarkColdSnap,
			Description: fmt.Sprintf("Core temperature %.1f °C below normal in %s", -rec.CoreDeviation, rec.Weather),
		}
	case rec.CoreDeviation >= heatStressDeviation && !bd.hot:
		bd.hot = true
		return &Bookmark{
			Type:        BookmarkHeatStress,
			Description: fmt.Sprintf("Core temperature %.1f °C above normal in %s", rec.CoreDeviation, rec.Weather),
		}
	}
	// Re-arm once the deviation has halved
	if rec.CoreDeviation > coldSnapDeviation/2 {
		bd.cold = false
	}
	if rec.CoreDeviation < heatStressDeviation/2 {
		bd.hot = false
	}
	return nil
}

func (bd *BookmarkDetector) checkStableCondition(rec TurnRecord) *Bookmark {
	window := bd.recent(stableWindow)
	if len(window) < stableWindow || rec.AvgBalance < 0 || !rec.Alive {
		bd.stableCount = 0
		return nil
	}

	var sum float64
	for _, h := range window {
		sum += h.WeightKg
	}
	mean := sum / float64(len(window))
	var variance float64
	for _, h := range window {
		d := h.WeightKg - mean
		variance += d * d
	}
	variance /= float64(len(window))

	// CV^2 < 0.0004 means weight varies by under 2%
	if mean > 0 && variance/(mean*mean) < 0.0004 {
		bd.stableCount++
	} else {
		bd.stableCount = 0
	}

	if bd.stableCount == stableRuns {
		return &Bookmark{
			Type:        BookmarkStableCondition,
			Description: fmt.Sprintf("Weight steady near %.2f kg with a non-negative energy trend", mean),
		}
	}
	return nil
}
