package audit

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/vitalearn/backend/stats"
)

// Weighting of the three analyzer scores in the combined audit score.
var auditWeights = map[string]float64{
	"contrast":   0.4,
	"headings":   0.3,
	"typography": 0.3,
}

// cacheEntry is one cached combined audit with its creation time.
type cacheEntry struct {
	audit     *AccessibilityAudit
	timestamp time.Time
}

// CacheStats provides statistics about the auditor's report cache.
type CacheStats struct {
	AuditEntries     int           `json:"auditEntries"`
	AuditCacheHits   int           `json:"auditCacheHits"`
	AuditCacheMisses int           `json:"auditCacheMisses"`
	PagesFetched     int           `json:"pagesFetched"`
	AuditFailures    int           `json:"auditFailures"`
	AuditCacheTTL    time.Duration `json:"auditCacheTTL"`
}

// Auditor fetches pages and runs the three analyzers over them. The engine
// itself is stateless; the auditor only caches finished reports by URL so
// repeated panel refreshes don't re-fetch the page.
type Auditor struct {
	client          *http.Client
	cache           map[string]cacheEntry
	cacheMutex      sync.RWMutex
	cacheTTL        time.Duration
	maxCacheSize    int
	lastCleanup     time.Time
	cleanupInterval time.Duration
	stats           *stats.Storage
}

// New creates an Auditor with a pooled HTTP client and persistent usage
// counters under dataDir.
func New(dataDir string) (*Auditor, error) {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	statsStorage, err := stats.NewStorage(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize stats storage: %w", err)
	}

	auditor := &Auditor{
		client: &http.Client{
			Timeout:   15 * time.Second,
			Transport: transport,
		},
		cache:           make(map[string]cacheEntry),
		cacheTTL:        30 * time.Minute,
		maxCacheSize:    1000,
		cleanupInterval: 5 * time.Minute,
		lastCleanup:     time.Now(),
		stats:           statsStorage,
	}

	go auditor.periodicCleanup()

	return auditor, nil
}

func (a *Auditor) periodicCleanup() {
	ticker := time.NewTicker(a.cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		a.cleanup()
	}
}

// cleanup removes expired entries and enforces the cache size limit,
// evicting oldest entries first.
func (a *Auditor) cleanup() {
	now := time.Now()

	a.cacheMutex.Lock()
	defer a.cacheMutex.Unlock()

	for key, entry := range a.cache {
		if now.Sub(entry.timestamp) > a.cacheTTL {
			delete(a.cache, key)
		}
	}

	if len(a.cache) > a.maxCacheSize {
		entries := make([]struct {
			key       string
			timestamp time.Time
		}, 0, len(a.cache))
		for key, entry := range a.cache {
			entries = append(entries, struct {
				key       string
				timestamp time.Time
			}{key, entry.timestamp})
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].timestamp.Before(entries[j].timestamp)
		})
		for i := 0; i < len(entries)-a.maxCacheSize; i++ {
			delete(a.cache, entries[i].key)
		}
	}

	a.lastCleanup = now
}

// SetCacheTTL sets how long cached audits stay valid.
func (a *Auditor) SetCacheTTL(ttl time.Duration) {
	a.cacheMutex.Lock()
	defer a.cacheMutex.Unlock()
	a.cacheTTL = ttl
}

// SetMaxCacheSize sets the maximum number of cached audits.
func (a *Auditor) SetMaxCacheSize(size int) {
	a.cacheMutex.Lock()
	a.maxCacheSize = size
	a.cacheMutex.Unlock()
	a.cleanup()
}

// ClearCache drops every cached audit.
func (a *Auditor) ClearCache() {
	a.cacheMutex.Lock()
	defer a.cacheMutex.Unlock()
	a.cache = make(map[string]cacheEntry)
}

// IsCached reports whether a fresh audit for the URL is in the cache.
func (a *Auditor) IsCached(url string) bool {
	key := generateCacheKey(url)
	a.cacheMutex.RLock()
	defer a.cacheMutex.RUnlock()

	entry, found := a.cache[key]
	return found && time.Since(entry.timestamp) < a.cacheTTL
}

// GetCacheStats returns cache occupancy plus the persisted monthly counters.
func (a *Auditor) GetCacheStats() CacheStats {
	current := a.stats.GetCurrentStats()

	a.cacheMutex.RLock()
	entries := len(a.cache)
	ttl := a.cacheTTL
	a.cacheMutex.RUnlock()

	return CacheStats{
		AuditEntries:     entries,
		AuditCacheHits:   current.AuditCacheHits,
		AuditCacheMisses: current.AuditCacheMisses,
		PagesFetched:     current.PagesFetched,
		AuditFailures:    current.AuditFailures,
		AuditCacheTTL:    ttl,
	}
}

// generateCacheKey creates a stable cache key for the URL.
func generateCacheKey(url string) string {
	hash := md5.Sum([]byte(url))
	return hex.EncodeToString(hash[:])
}

// Audit fetches the page at url and runs all three analyzers over it,
// serving from the report cache when possible.
func (a *Auditor) Audit(url string) (*AccessibilityAudit, error) {
	if time.Since(a.lastCleanup) > a.cleanupInterval {
		go a.cleanup()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	key := generateCacheKey(url)
	a.cacheMutex.RLock()
	if entry, found := a.cache[key]; found {
		if time.Since(entry.timestamp) < a.cacheTTL {
			a.stats.IncrementStats(1, 0, 0, 0)
			a.cacheMutex.RUnlock()
			return entry.audit, nil
		}
	}
	a.cacheMutex.RUnlock()

	a.stats.IncrementStats(0, 1, 0, 0)

	audit, err := a.AuditWithContext(ctx, url)
	if err != nil {
		a.stats.IncrementStats(0, 0, 0, 1)
		return nil, err
	}

	a.cacheMutex.Lock()
	a.cache[key] = cacheEntry{audit: audit, timestamp: time.Now()}
	a.cacheMutex.Unlock()

	return audit, nil
}

// AuditWithContext fetches and audits a page without consulting the cache.
func (a *Auditor) AuditWithContext(ctx context.Context, url string) (*AccessibilityAudit, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "VitalearnAudit/1.0")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, fmt.Errorf("page fetch failed with status %d", resp.StatusCode)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, err
	}
	a.stats.IncrementStats(0, 0, 1, 0)

	gq, err := goquery.NewDocumentFromReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	return a.runAll(NewDocument(gq), url), nil
}

// AuditHTML audits raw markup directly, bypassing fetch and cache. This is
// the path the authoring preview uses.
func (a *Auditor) AuditHTML(markup string) (*AccessibilityAudit, error) {
	doc, err := NewDocumentFromHTML(markup)
	if err != nil {
		return nil, err
	}
	return a.runAll(doc, ""), nil
}

// runAll executes the three analyzers and combines their scores and
// recommendations into one audit.
func (a *Auditor) runAll(doc *Document, url string) *AccessibilityAudit {
	contrast := AuditContrast(doc)
	headings := AuditHeadingHierarchy(doc)
	typography := AuditFluidTypography(doc)

	score := 0.0
	score += float64(contrast.OverallScore) * auditWeights["contrast"]
	score += float64(headings.Summary.Score) * auditWeights["headings"]
	score += float64(typography.AccessibilityScore+typography.PerformanceScore) / 2 * auditWeights["typography"]

	var recommendations []string
	seen := make(map[string]bool)
	for _, group := range [][]string{
		contrast.Recommendations,
		headings.Recommendations,
		typography.Recommendations,
	} {
		for _, r := range group {
			if seen[r] {
				continue
			}
			seen[r] = true
			recommendations = append(recommendations, r)
		}
	}

	return &AccessibilityAudit{
		AuditID:         uuid.NewString(),
		URL:             url,
		Contrast:        contrast,
		Headings:        headings,
		Typography:      typography,
		Score:           score,
		Recommendations: recommendations,
	}
}

// GetStats returns the persistent statistics storage instance.
func (a *Auditor) GetStats() *stats.Storage {
	return a.stats
}

// Shutdown flushes statistics and releases the caches.
func (a *Auditor) Shutdown() error {
	if a == nil {
		return nil
	}

	if a.stats != nil {
		if err := a.stats.Shutdown(); err != nil {
			return fmt.Errorf("failed to shutdown stats storage: %w", err)
		}
	}

	a.cacheMutex.Lock()
	a.cache = nil
	a.cacheMutex.Unlock()

	return nil
}
