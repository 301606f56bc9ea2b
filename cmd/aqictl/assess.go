package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/couchcryptid/aqi-warning-service/internal/domain"
	"github.com/spf13/cobra"
)

// pollutantFlags maps each pollutant to its --flag name.
var pollutantFlags = [domain.PollutantCount]string{"pm25", "pm10", "no2", "so2", "co", "o3"}

func newAssessCmd() *cobra.Command {
	var (
		modelPath  string
		limitsPath string
		asJSON     bool
		values     [domain.PollutantCount]float64
	)

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Assess a single pollutant reading",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := cliLogger(cmd)
			if err != nil {
				return err
			}
			reading := domain.ReadingFromFeatures(values)
			if err := reading.Validate(); err != nil {
				return err
			}

			assessor, forest, err := newAssessor(modelPath, limitsPath)
			if err != nil {
				return err
			}
			logger.Debug("model loaded", "model", forest.Name())

			result, err := assessor.Run(cmd.Context(), reading)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			return writeReport(cmd.OutOrStdout(), result)
		},
	}

	for _, p := range domain.AllPollutants {
		cmd.Flags().Float64Var(&values[p], pollutantFlags[p], 0, fmt.Sprintf("%s concentration (0-%g)", p, p.PlausibleMax()))
		_ = cmd.MarkFlagRequired(pollutantFlags[p])
	}
	cmd.Flags().StringVar(&modelPath, "model", "", "path to the model artifact (JSON)")
	cmd.Flags().StringVar(&limitsPath, "limits", "", "optional YAML file overriding safe limits")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the assessment as JSON")
	_ = cmd.MarkFlagRequired("model")

	return cmd
}

func writeReport(w io.Writer, r domain.AssessmentResult) error {
	action := r.Recommendation.Action
	if !r.Recommendation.Defined {
		action = fmt.Sprintf("no action defined for %s", r.Recommendation.Pollutant)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Predicted AQI:\t%.2f\n", r.AQI)
	fmt.Fprintf(tw, "Warning:\t%s (%s)\n", r.TierLabel, r.Tier.Color())
	fmt.Fprintf(tw, "Advisory:\t%s\n", r.Advisory)
	fmt.Fprintf(tw, "Model-dominant:\t%s\n", r.ModelDominant)
	fmt.Fprintf(tw, "Current critical:\t%s\n", r.CurrentCritical)
	fmt.Fprintf(tw, "Recommendation:\t%s\n", action)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "POLLUTANT\tVALUE\tLIMIT\tRATIO\t")
	for _, e := range r.Exceedance {
		mark := ""
		if e.Exceeds() {
			mark = "!"
		}
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%s\n", e.Pollutant, e.Value, e.Limit, e.Ratio, mark)
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "POLLUTANT\tIMPORTANCE\t")
	for _, e := range r.Importance {
		fmt.Fprintf(tw, "%s\t%.3f\t\n", e.Pollutant, e.Weight)
	}
	return tw.Flush()
}
