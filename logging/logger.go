package logging

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

// Environment variable name for controlling statistics visibility
const ENV_DEV_MODE = "DEV_MODE"

// Statistics collects request-level usage data for the audit API. It is
// constructed explicitly with NewStatistics and passed by reference to the
// middleware and handlers that need it; there is no package-level instance.
type Statistics struct {
	UniqueVisitors map[string]time.Time `json:"uniqueVisitors"` // IP -> Last Visit Time
	AuditRequests  int                  `json:"auditRequests"`  // Total number of audit requests
	ErrorCount     int                  `json:"errorCount"`     // Number of errors
	PopularURLs    map[string]int       `json:"popularUrls"`    // URL -> Count
	AverageLatency float64              `json:"averageLatency"` // Average audit latency in milliseconds
	TotalLatency   float64              `json:"-"`              // Used to calculate average
	RequestCount   int                  `json:"-"`              // Used to calculate average
	LastPersisted  time.Time            `json:"lastPersisted"`  // Last time stats were saved
	filePath       string
	mutex          sync.RWMutex
}

// NewStatistics creates a collector persisting to the given file, loading
// any previously saved counters.
func NewStatistics(filePath string) *Statistics {
	s := &Statistics{
		UniqueVisitors: make(map[string]time.Time),
		PopularURLs:    make(map[string]int),
		LastPersisted:  time.Now(),
		filePath:       filePath,
	}

	if err := s.Load(); err != nil {
		fmt.Printf("Could not load existing statistics: %v\n", err)
	}
	return s
}

// TrackVisitor records a unique visitor
func (s *Statistics) TrackVisitor(ip string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.UniqueVisitors[ip] = time.Now()
}

// Reset clears all collected counters. Lifecycle is explicit: callers decide
// when a collection window starts over.
func (s *Statistics) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.UniqueVisitors = make(map[string]time.Time)
	s.PopularURLs = make(map[string]int)
	s.AuditRequests = 0
	s.ErrorCount = 0
	s.AverageLatency = 0
	s.TotalLatency = 0
	s.RequestCount = 0
}

// cleanURL removes API paths and query parameters, returns just the main URL
func cleanURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return urlStr
	}

	// Don't track our own API URLs
	if strings.Contains(u.Host, "localhost") ||
		strings.Contains(u.Host, "127.0.0.1") ||
		strings.Contains(strings.ToLower(u.Path), "/api/") {
		return ""
	}

	cleanURL := u.Scheme + "://" + u.Host

	if u.Path != "" && u.Path != "/" {
		cleanURL += u.Path
	}

	return strings.TrimSuffix(cleanURL, "/")
}

// TrackAudit records one audit request with its latency and outcome.
func (s *Statistics) TrackAudit(url string, latency float64, hasError bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.AuditRequests++

	cleanedURL := cleanURL(url)
	if cleanedURL != "" {
		s.PopularURLs[cleanedURL]++
	}

	if hasError {
		s.ErrorCount++
	}

	s.TotalLatency += latency
	s.RequestCount++
	s.AverageLatency = s.TotalLatency / float64(s.RequestCount)
}

// GetUniqueVisitorsCount returns the number of unique visitors in the last 24 hours
func (s *Statistics) GetUniqueVisitorsCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.uniqueVisitorsLocked()
}

func (s *Statistics) uniqueVisitorsLocked() int {
	count := 0
	cutoff := time.Now().Add(-24 * time.Hour)

	for _, lastVisit := range s.UniqueVisitors {
		if lastVisit.After(cutoff) {
			count++
		}
	}

	return count
}

// GetPopularURLs returns the top N most audited URLs
func (s *Statistics) GetPopularURLs(n int) map[string]int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.popularURLsLocked(n)
}

func (s *Statistics) popularURLsLocked(n int) map[string]int {
	result := make(map[string]int)
	count := 0

	for url, freq := range s.PopularURLs {
		if count < n {
			result[url] = freq
			count++
		}
	}

	return result
}

// GetErrorRate returns the error rate as a percentage
func (s *Statistics) GetErrorRate() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.errorRateLocked()
}

func (s *Statistics) errorRateLocked() float64 {
	if s.AuditRequests == 0 {
		return 0
	}

	return (float64(s.ErrorCount) / float64(s.AuditRequests)) * 100
}

// Save persists the statistics to the collector's file
func (s *Statistics) Save() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.LastPersisted = time.Now()

	file, err := os.Create(s.filePath)
	if err != nil {
		return fmt.Errorf("could not create statistics file: %v", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	if err := encoder.Encode(s); err != nil {
		return fmt.Errorf("could not encode statistics: %v", err)
	}

	return nil
}

// Load reads the statistics from the collector's file
func (s *Statistics) Load() error {
	file, err := os.Open(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Not an error if file doesn't exist yet
		}
		return fmt.Errorf("could not open statistics file: %v", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(s); err != nil {
		return fmt.Errorf("could not decode statistics: %v", err)
	}

	return nil
}

// GetStatistics returns a snapshot of the current statistics; full detail
// (including audited URLs) is only exposed in development mode.
func (s *Statistics) GetStatistics() map[string]interface{} {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	snapshot := map[string]interface{}{
		"uniqueVisitors24h": s.uniqueVisitorsLocked(),
		"totalRequests":     s.AuditRequests,
		"errorRate":         s.errorRateLocked(),
		"averageLatency":    s.AverageLatency,
	}

	if os.Getenv(ENV_DEV_MODE) == "true" {
		snapshot["popularUrls"] = s.popularURLsLocked(5) // Top 5 URLs only shown in dev mode
	}

	return snapshot
}
