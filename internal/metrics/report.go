package metrics

import (
	"context"
	"time"

	"github.com/teampulse/teampulse/internal/clock"
	"github.com/teampulse/teampulse/internal/types"
)

// Report bundles the four MVP metrics and the composite score for one
// project and window. This is the dashboard payload.
type Report struct {
	ProjectID int64     `json:"project_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`

	Metrics map[types.MetricType]Result `json:"metrics"`
	Overall Overall                     `json:"overall_score"`
}

// Report computes all four metrics over the trailing daysBack window ending
// today and combines them into the composite score. Individual metric
// failures abort the report; empty data does not.
func (c *Calculator) Report(ctx context.Context, clk clock.Clock, projectID int64, daysBack int) (*Report, error) {
	end := types.Day(clk.Now())
	start := end.AddDate(0, 0, -daysBack)

	results := make(map[types.MetricType]Result, len(types.MetricTypes))
	for _, metric := range types.MetricTypes {
		r, err := c.Calculate(ctx, metric, projectID, start, end)
		if err != nil {
			return nil, err
		}
		results[metric] = r
	}

	return &Report{
		ProjectID: projectID,
		Start:     start,
		End:       end,
		Metrics:   results,
		Overall:   CompositeScore(results),
	}, nil
}
