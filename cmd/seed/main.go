// Command seed generates synthetic entity submissions and posts them to a
// running marquee instance. Useful for load-testing the ingest pipeline and
// eyeballing calendar output with realistic data.
package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/marquee-live/marquee/internal/domain/types"
)

// Default configuration constants.
const (
	defaultNumEntities = 1000
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultRunTimeout  = 10 * time.Minute
)

// Shape of the generated population, as cases of a uniform draw.
const (
	caseDaily = iota
	caseWeekdays
	caseWeekends
	caseSpecificDay
	caseOneOff
	caseCount
)

var ruleNames = map[int]string{
	caseDaily:       "DAILY",
	caseWeekdays:    "WEEKDAYS",
	caseWeekends:    "WEEKENDS",
	caseSpecificDay: "SPECIFIC_DAY",
}

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numEntities = flag.Int("entities", defaultNumEntities, "Number of entities to generate and submit")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	records := generate(*numEntities)

	client := &http.Client{Timeout: *timeout}
	var accepted, duplicate, failed atomic.Int64

	jobs := make(chan types.WireEntity)
	var wg sync.WaitGroup
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				switch submit(ctx, client, *baseURL, rec) {
				case http.StatusAccepted:
					accepted.Add(1)
				case http.StatusOK:
					duplicate.Add(1)
				default:
					failed.Add(1)
				}
			}
		}()
	}

	start := time.Now()
	for _, rec := range records {
		select {
		case jobs <- rec:
		case <-ctx.Done():
		}
	}
	close(jobs)
	wg.Wait()

	fmt.Printf("submitted %d entities in %s: %d accepted, %d duplicate, %d failed\n",
		len(records), time.Since(start).Round(time.Millisecond),
		accepted.Load(), duplicate.Load(), failed.Load())

	if failed.Load() > 0 {
		os.Exit(1)
	}
}

// generate builds a mixed population of recurring and one-off entities.
func generate(n int) []types.WireEntity {
	records := make([]types.WireEntity, 0, n)
	now := time.Now()

	for i := 0; i < n; i++ {
		kind := randomInt(caseCount)
		entityType := "show"
		if randomInt(2) == 1 {
			entityType = "event"
		}

		rec := types.WireEntity{
			SubmissionID: uuid.New().String(),
			ID:           fmt.Sprintf("seed-%d", i),
			Type:         entityType,
			Metadata:     json.RawMessage(fmt.Sprintf(`{"title":"Seeded %s %d"}`, entityType, i)),
		}

		if kind == caseOneOff {
			// Anchor somewhere in the next two weeks.
			at := now.AddDate(0, 0, randomInt(14)).Truncate(time.Hour)
			rec.Scheduled = at.Format(time.RFC3339)
		} else {
			rec.IsRecurring = true
			rec.Recurrence = ruleNames[kind]
			rec.Scheduled = fmt.Sprintf("%02d:%02d", 8+randomInt(14), 15*randomInt(4))
			if kind == caseSpecificDay {
				day := randomInt(7)
				rec.DayOfWeek = &day
			}
		}

		records = append(records, rec)
	}
	return records
}

// submit posts one record and returns the HTTP status, or 0 on transport error.
func submit(ctx context.Context, client *http.Client, baseURL string, rec types.WireEntity) int {
	body, err := json.Marshal(rec)
	if err != nil {
		return 0
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/entities", bytes.NewReader(body))
	if err != nil {
		return 0
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return 0
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	return res.StatusCode
}

// randomInt returns a uniform int in [0, n) using crypto/rand.
func randomInt(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}
