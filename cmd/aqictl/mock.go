package main

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/couchcryptid/aqi-warning-service/internal/domain"
	"github.com/spf13/cobra"
)

func newMockCmd() *cobra.Command {
	var (
		count    int
		seed     uint64
		stations int
		start    string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Generate deterministic mock readings as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 0 {
				return fmt.Errorf("--count must be non-negative, got %d", count)
			}
			if stations <= 0 {
				return fmt.Errorf("--stations must be positive, got %d", stations)
			}
			startAt, err := time.Parse(time.RFC3339, start)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, rec := range mockRecords(count, seed, stations, startAt.UTC(), interval) {
				if err := enc.Encode(rec); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 10, "number of readings to generate")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&stations, "stations", 3, "number of distinct station IDs")
	cmd.Flags().StringVar(&start, "start", "2026-01-01T00:00:00Z", "observation time of the first reading (RFC 3339)")
	cmd.Flags().DurationVar(&interval, "interval", time.Hour, "time between readings of the same station")

	return cmd
}

// mockRecords draws concentrations uniformly within each pollutant's
// plausible range, rounded to two decimals. The same arguments always yield
// the same records.
func mockRecords(count int, seed uint64, stations int, start time.Time, interval time.Duration) []domain.RawReadingRecord {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]domain.RawReadingRecord, 0, count)
	for i := range count {
		var values [domain.PollutantCount]*float64
		for _, p := range domain.AllPollutants {
			v := math.Round(rng.Float64()*p.PlausibleMax()*100) / 100
			values[p] = &v
		}
		out = append(out, domain.RawReadingRecord{
			StationID:  fmt.Sprintf("station-%03d", i%stations+1),
			ObservedAt: start.Add(time.Duration(i/stations) * interval),
			PM25:       values[domain.PM25],
			PM10:       values[domain.PM10],
			NO2:        values[domain.NO2],
			SO2:        values[domain.SO2],
			CO:         values[domain.CO],
			O3:         values[domain.O3],
		})
	}
	return out
}
