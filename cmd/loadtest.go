package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// LoadTestConfig holds configuration for load testing
type LoadTestConfig struct {
	BaseURL         string
	SlotID          string
	LevelID         string
	Gender          string
	NumApplicants   int
	ConcurrentUsers int
	SlotCapacity    int
	StaggerMs       int
}

// reserveBody mirrors the reservation endpoint payload.
type reserveBody struct {
	SlotID    string `json:"slot_id"`
	Surname   string `json:"surname"`
	Firstname string `json:"firstname"`
	Othername string `json:"othername"`
	Whatsapp  string `json:"whatsapp"`
	Email     string `json:"email"`
	Gender    string `json:"gender"`
	Address   string `json:"address"`
	LevelID   string `json:"level_id"`
}

// LoadTestResult holds the results of load testing
type LoadTestResult struct {
	TotalRequests     int
	SuccessfulReqs    int
	SlotFullReqs      int
	FailedReqs        int
	AvgResponseTimeMs float64
	MaxResponseTimeMs int64
	MinResponseTimeMs int64
	ThroughputRPS     float64
	ErrorsByType      map[string]int
}

// LoadTester hammers a single appointment slot with concurrent
// reservation attempts. With capacity C and N > C distinct applicants
// exactly C requests should succeed and the rest should come back 409.
type LoadTester struct {
	config    LoadTestConfig
	client    *http.Client
	profiles  []reserveBody
	results   LoadTestResult
	mutex     sync.Mutex
	startTime time.Time
}

// NewLoadTester creates a new load tester
func NewLoadTester(config LoadTestConfig) *LoadTester {
	return &LoadTester{
		config: config,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		profiles: make([]reserveBody, config.NumApplicants),
		results: LoadTestResult{
			ErrorsByType: make(map[string]int),
		},
	}
}

// Initialize generates one distinct applicant profile per request so no
// attempt trips the duplicate-contact path instead of the capacity path.
func (lt *LoadTester) Initialize() {
	fmt.Println("Initializing load test data...")

	for i := 0; i < lt.config.NumApplicants; i++ {
		tag := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		lt.profiles[i] = reserveBody{
			SlotID:    lt.config.SlotID,
			Surname:   fmt.Sprintf("Loadtest%04d", i),
			Firstname: "Applicant",
			Whatsapp:  fmt.Sprintf("+2348%09d", i),
			Email:     fmt.Sprintf("loadtest-%s@example.com", tag),
			Gender:    lt.config.Gender,
			Address:   fmt.Sprintf("Plot %d Test Avenue", i+1),
			LevelID:   lt.config.LevelID,
		}
	}

	fmt.Printf("Generated %d applicant profiles targeting slot %s\n", len(lt.profiles), lt.config.SlotID)
}

// RunLoadTest executes the load test
func (lt *LoadTester) RunLoadTest() {
	fmt.Printf("Starting load test with %d concurrent users...\n", lt.config.ConcurrentUsers)

	lt.startTime = time.Now()
	var wg sync.WaitGroup

	// Semaphore limits in-flight requests to the concurrency level
	semaphore := make(chan struct{}, lt.config.ConcurrentUsers)

	for i := 0; i < lt.config.NumApplicants; i++ {
		wg.Add(1)

		go func(requestID int) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			lt.attemptReservation(requestID)
		}(i)

		if lt.config.StaggerMs > 0 {
			time.Sleep(time.Duration(lt.config.StaggerMs) * time.Millisecond)
		}
	}

	wg.Wait()

	lt.calculateMetrics()
	lt.printResults()
}

// attemptReservation fires a single reservation attempt
func (lt *LoadTester) attemptReservation(requestID int) {
	startTime := time.Now()

	jsonData, err := json.Marshal(lt.profiles[requestID])
	if err != nil {
		lt.recordError("json_marshal")
		return
	}

	url := fmt.Sprintf("%s/api/v1/reserve", lt.config.BaseURL)
	resp, err := lt.client.Post(url, "application/json", bytes.NewBuffer(jsonData))

	responseTime := time.Since(startTime)

	if err != nil {
		lt.recordError("http_request")
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	lt.recordResponse(resp.StatusCode, responseTime)
}

// recordResponse records the response metrics
func (lt *LoadTester) recordResponse(statusCode int, responseTime time.Duration) {
	lt.mutex.Lock()
	defer lt.mutex.Unlock()

	lt.results.TotalRequests++
	responseTimeMs := responseTime.Milliseconds()

	if lt.results.MaxResponseTimeMs < responseTimeMs {
		lt.results.MaxResponseTimeMs = responseTimeMs
	}

	if lt.results.MinResponseTimeMs == 0 || lt.results.MinResponseTimeMs > responseTimeMs {
		lt.results.MinResponseTimeMs = responseTimeMs
	}

	// Running average
	currentAvg := lt.results.AvgResponseTimeMs
	currentCount := float64(lt.results.TotalRequests)
	lt.results.AvgResponseTimeMs = (currentAvg*(currentCount-1) + float64(responseTimeMs)) / currentCount

	switch {
	case statusCode >= 200 && statusCode < 300:
		lt.results.SuccessfulReqs++
	case statusCode == http.StatusConflict:
		lt.results.SlotFullReqs++
	default:
		lt.results.FailedReqs++
		lt.results.ErrorsByType[fmt.Sprintf("http_%d", statusCode)]++
	}
}

// recordError records an error that occurred during testing
func (lt *LoadTester) recordError(errorType string) {
	lt.mutex.Lock()
	defer lt.mutex.Unlock()

	lt.results.TotalRequests++
	lt.results.FailedReqs++
	lt.results.ErrorsByType[errorType]++
}

// calculateMetrics calculates final test metrics
func (lt *LoadTester) calculateMetrics() {
	totalDuration := time.Since(lt.startTime)
	lt.results.ThroughputRPS = float64(lt.results.TotalRequests) / totalDuration.Seconds()
}

// printResults displays the load test results
func (lt *LoadTester) printResults() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("RESERVATION LOAD TEST RESULTS")
	fmt.Println(strings.Repeat("=", 80))

	fmt.Printf("Test Configuration:\n")
	fmt.Printf("  - Target Slot: %s\n", lt.config.SlotID)
	fmt.Printf("  - Slot Capacity: %d seats\n", lt.config.SlotCapacity)
	fmt.Printf("  - Applicants: %d\n", lt.config.NumApplicants)
	fmt.Printf("  - Concurrent Users: %d\n", lt.config.ConcurrentUsers)

	fmt.Printf("\nOverall Performance:\n")
	fmt.Printf("  - Total Requests: %d\n", lt.results.TotalRequests)
	fmt.Printf("  - Reserved: %d (%.2f%%)\n",
		lt.results.SuccessfulReqs,
		float64(lt.results.SuccessfulReqs)/float64(lt.results.TotalRequests)*100)
	fmt.Printf("  - Slot Full (409): %d (%.2f%%)\n",
		lt.results.SlotFullReqs,
		float64(lt.results.SlotFullReqs)/float64(lt.results.TotalRequests)*100)
	fmt.Printf("  - Failed: %d (%.2f%%)\n",
		lt.results.FailedReqs,
		float64(lt.results.FailedReqs)/float64(lt.results.TotalRequests)*100)

	fmt.Printf("\nResponse Time Metrics:\n")
	fmt.Printf("  - Average: %.2f ms\n", lt.results.AvgResponseTimeMs)
	fmt.Printf("  - Minimum: %d ms\n", lt.results.MinResponseTimeMs)
	fmt.Printf("  - Maximum: %d ms\n", lt.results.MaxResponseTimeMs)

	fmt.Printf("\nThroughput:\n")
	fmt.Printf("  - Requests per Second: %.2f\n", lt.results.ThroughputRPS)

	if len(lt.results.ErrorsByType) > 0 {
		fmt.Printf("\nError Breakdown:\n")
		for errorType, count := range lt.results.ErrorsByType {
			fmt.Printf("  - %s: %d\n", errorType, count)
		}
	}

	fmt.Printf("\nCapacity Analysis:\n")
	lt.analyzeCapacity()
}

// analyzeCapacity verifies the test observed the capacity invariant:
// never more confirmed reservations than the slot has seats.
func (lt *LoadTester) analyzeCapacity() {
	fmt.Printf("  - Seats Available: %d\n", lt.config.SlotCapacity)
	fmt.Printf("  - Reservation Attempts: %d\n", lt.results.TotalRequests)
	fmt.Printf("  - Confirmed Reservations: %d\n", lt.results.SuccessfulReqs)

	if lt.config.SlotCapacity > 0 {
		contentionRatio := float64(lt.results.TotalRequests) / float64(lt.config.SlotCapacity)
		fmt.Printf("  - Contention Ratio: %.2f:1\n", contentionRatio)

		switch {
		case lt.results.SuccessfulReqs > lt.config.SlotCapacity:
			fmt.Printf("  ❌ OVERBOOKED: %d reservations confirmed for %d seats\n",
				lt.results.SuccessfulReqs, lt.config.SlotCapacity)
		case lt.results.SuccessfulReqs == lt.config.SlotCapacity:
			fmt.Printf("  ✅ Slot filled exactly to capacity, remainder rejected\n")
		default:
			fmt.Printf("  ⚠️  Slot not filled, check failed requests above\n")
		}
	}

	if lt.results.AvgResponseTimeMs > 1000 {
		fmt.Printf("  ⚠️  High average response time (>1s), lock contention likely\n")
	} else {
		fmt.Printf("  ✅ Response times acceptable under contention\n")
	}
}

// loadtestCmd represents the loadtest command
var loadtestCmd = &cobra.Command{
	Use:   "loadtest",
	Short: "Run reservation load tests against the intake API",
	Long: `Run load tests against the intake reservation API.
This includes:
- Concurrent applicant simulation against a single slot
- Capacity enforcement verification under contention
- Throughput and response time metrics`,
	Run: func(cmd *cobra.Command, args []string) {
		runLoadTest()
	},
}

var (
	baseURL         string
	targetSlotID    string
	targetLevelID   string
	targetGender    string
	numApplicants   int
	concurrentUsers int
	slotCapacity    int
	staggerMs       int
)

func init() {
	rootCmd.AddCommand(loadtestCmd)

	loadtestCmd.Flags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the intake API")
	loadtestCmd.Flags().StringVar(&targetSlotID, "slot", "", "Slot ID to hammer (required)")
	loadtestCmd.Flags().StringVar(&targetLevelID, "level", "", "Level ID for generated applicants (required)")
	loadtestCmd.Flags().StringVar(&targetGender, "gender", "Male", "Gender of the target slot; mismatched requests are rejected before the capacity check")
	loadtestCmd.Flags().IntVar(&numApplicants, "applicants", 200, "Number of distinct applicants to simulate")
	loadtestCmd.Flags().IntVar(&concurrentUsers, "concurrent", 100, "Number of concurrent requests")
	loadtestCmd.Flags().IntVar(&slotCapacity, "capacity", 30, "Capacity of the target slot, for the analysis step")
	loadtestCmd.Flags().IntVar(&staggerMs, "stagger", 0, "Delay in ms between request starts")
	loadtestCmd.MarkFlagRequired("slot")
	loadtestCmd.MarkFlagRequired("level")
}

func runLoadTest() {
	config := LoadTestConfig{
		BaseURL:         baseURL,
		SlotID:          targetSlotID,
		LevelID:         targetLevelID,
		Gender:          targetGender,
		NumApplicants:   numApplicants,
		ConcurrentUsers: concurrentUsers,
		SlotCapacity:    slotCapacity,
		StaggerMs:       staggerMs,
	}

	loadTester := NewLoadTester(config)
	loadTester.Initialize()

	fmt.Println("Campus Intake Reservation Load Test")
	fmt.Println("===================================")

	loadTester.RunLoadTest()
}
