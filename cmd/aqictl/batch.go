package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/couchcryptid/aqi-warning-service/internal/domain"
	"github.com/spf13/cobra"
)

func newBatchCmd() *cobra.Command {
	var (
		inPath     string
		modelPath  string
		limitsPath string
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Assess JSON-lines readings and print one assessment event per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := cliLogger(cmd)
			if err != nil {
				return err
			}
			assessor, _, err := newAssessor(modelPath, limitsPath)
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if inPath != "" && inPath != "-" {
				f, err := os.Open(inPath)
				if err != nil {
					return fmt.Errorf("open input: %w", err)
				}
				defer f.Close()
				in = f
			}

			out := json.NewEncoder(cmd.OutOrStdout())
			var total, failed int
			err = scanLines(in, func(line int, data []byte) {
				total++
				var rec domain.RawReadingRecord
				if err := json.Unmarshal(data, &rec); err != nil {
					failed++
					logger.Error("invalid reading", "line", line, "error", err)
					return
				}
				sr, err := domain.ParseRecord(rec, time.Now())
				if err != nil {
					failed++
					logger.Error("invalid reading", "line", line, "error", err)
					return
				}
				result, err := assessor.Run(cmd.Context(), sr.Reading)
				if err != nil {
					failed++
					logger.Error("assessment failed", "line", line, "station_id", sr.StationID, "kind", domain.ErrorKind(err), "error", err)
					return
				}
				if err := out.Encode(domain.NewAssessmentEvent(sr, result)); err != nil {
					failed++
					logger.Error("write assessment", "line", line, "error", err)
				}
			})
			if err != nil {
				return err
			}

			logger.Info("batch complete", "total", total, "failed", failed)
			if failed > 0 {
				return fmt.Errorf("%d of %d readings failed", failed, total)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inPath, "in", "-", "JSON-lines input file, or - for stdin")
	cmd.Flags().StringVar(&modelPath, "model", "", "path to the model artifact (JSON)")
	cmd.Flags().StringVar(&limitsPath, "limits", "", "optional YAML file overriding safe limits")
	_ = cmd.MarkFlagRequired("model")

	return cmd
}

// scanLines calls fn for every non-blank line with its 1-based line number.
func scanLines(r io.Reader, fn func(line int, data []byte)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(bytes.TrimSpace(data)) == 0 {
			continue
		}
		fn(line, data)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}
