package engine

import (
	"context"
	"sort"

	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/core"
	pubdomain "github.com/RealZimboGuy/approvalflow/pkg/approvalflow/domain"
	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/models"
)

// Stats summarises the workflows visible to actor.
func (s *WorkflowService) Stats(ctx context.Context, actor core.Identity) (*models.DashboardStats, error) {
	workflows, err := s.List(ctx, actor)
	if err != nil {
		return nil, err
	}
	return summarize(workflows), nil
}

func summarize(workflows []pubdomain.Workflow) *models.DashboardStats {
	stats := &models.DashboardStats{
		TotalWorkflows:     len(workflows),
		StatusDistribution: make(map[string]int, len(pubdomain.AllStatuses)),
		MonthlyGrowth:      make([]models.MonthCount, 0),
	}
	for _, st := range pubdomain.AllStatuses {
		stats.StatusDistribution[string(st)] = 0
	}

	type month struct{ year, month int }
	perMonth := map[month]int{}
	for _, wf := range workflows {
		stats.StatusDistribution[string(wf.Status)]++
		switch wf.Status {
		case pubdomain.StatusInReview:
			stats.PendingReviews++
			stats.ActiveWorkflows++
		case pubdomain.StatusSubmitted, pubdomain.StatusReopened:
			stats.ActiveWorkflows++
		}
		created := wf.CreatedAt.UTC()
		perMonth[month{created.Year(), int(created.Month())}]++
	}

	keys := make([]month, 0, len(perMonth))
	for k := range perMonth {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})
	for _, k := range keys {
		label := monthLabels[k.month-1]
		stats.MonthlyGrowth = append(stats.MonthlyGrowth, models.MonthCount{Year: k.year, Month: label, Count: perMonth[k]})
	}
	return stats
}

var monthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
