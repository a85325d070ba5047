package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/insightlab/insightpilot-go/internal/models"
	"github.com/insightlab/insightpilot-go/internal/utils"
)

// InsightProvider is the optional external text-generation collaborator.
// The engine works fully without one; its absence or failure always falls
// back to the deterministic local parser.
type InsightProvider interface {
	Query(ctx context.Context, question string, summary *models.DataSummary) (string, error)
}

// InsightService answers natural-language questions about the dataset.
type InsightService struct {
	provider InsightProvider
	summary  *SummaryService
	kpis     *KPIService
	logger   *logrus.Logger
}

// NewInsightService creates a new insight service. provider may be nil.
func NewInsightService(provider InsightProvider, summary *SummaryService, kpis *KPIService, logger *logrus.Logger) *InsightService {
	return &InsightService{provider: provider, summary: summary, kpis: kpis, logger: logger}
}

// Ask answers a question, preferring the external provider when one is
// configured and falling back to the local parser when it fails.
func (s *InsightService) Ask(ctx context.Context, snap *models.DatasetSnapshot, question string) (*models.InsightAnswer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, utils.NewValidationError("question must not be empty")
	}

	if s.provider != nil {
		summary, err := s.summary.Summarize(snap)
		if err == nil {
			answer, providerErr := s.provider.Query(ctx, question, summary)
			if providerErr == nil {
				return &models.InsightAnswer{
					Question:    question,
					Answer:      answer,
					Source:      models.InsightSourceProvider,
					GeneratedAt: time.Now(),
				}, nil
			}
			if s.logger != nil {
				s.logger.WithError(providerErr).Warn("insight provider failed, falling back to local answer")
			}
		}
	}

	answer, err := s.localAnswer(snap, question)
	if err != nil {
		return nil, err
	}
	return &models.InsightAnswer{
		Question:    question,
		Answer:      answer,
		Source:      models.InsightSourceLocal,
		GeneratedAt: time.Now(),
	}, nil
}

// localAnswer resolves a small fixed set of question patterns against the
// snapshot deterministically.
func (s *InsightService) localAnswer(snap *models.DatasetSnapshot, question string) (string, error) {
	if !snap.HasSales() {
		return "", utils.NewMissingDataError("no sales data available")
	}
	q := strings.ToLower(question)

	switch {
	case strings.Contains(q, "highest") && strings.Contains(q, "month"):
		return s.highestMonth(snap), nil
	case strings.Contains(q, "top") && strings.Contains(q, "product"):
		return s.topProducts(snap)
	case strings.Contains(q, "total revenue") || strings.Contains(q, "total sales"):
		summary, err := s.summary.Summarize(snap)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Total revenue: %s", summary.TotalRevenue.StringFixed(2)), nil
	case strings.Contains(q, "average order") || strings.Contains(q, "aov"):
		summary, err := s.summary.Summarize(snap)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Average order value: %s", summary.AverageOrderValue.StringFixed(2)), nil
	}

	return `Sorry - I could not parse the question. Try phrases like "highest month", "top product", "total revenue".`, nil
}

func (s *InsightService) highestMonth(snap *models.DatasetSnapshot) string {
	type monthRevenue struct {
		month   string
		revenue float64
	}
	buckets := make(map[string]float64)
	for _, sale := range snap.Sales {
		amount, _ := sale.TotalAmount.Float64()
		buckets[sale.Date.Format("2006-01")] += amount
	}

	best := monthRevenue{}
	for month, revenue := range buckets {
		if best.month == "" || revenue > best.revenue || (revenue == best.revenue && month < best.month) {
			best = monthRevenue{month: month, revenue: revenue}
		}
	}
	return fmt.Sprintf("Highest month was %s with revenue %.2f", best.month, best.revenue)
}

func (s *InsightService) topProducts(snap *models.DatasetSnapshot) (string, error) {
	report, err := s.kpis.CalculateKPIs(snap)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Top products (by revenue):")
	for _, product := range report.TopProducts {
		fmt.Fprintf(&b, "\n%s: %s", product.ProductID, product.Revenue.StringFixed(2))
	}
	return b.String(), nil
}

// Recommend derives a deterministic suggestion from recent monthly growth.
func (s *InsightService) Recommend(snap *models.DatasetSnapshot) (*models.Recommendation, error) {
	growth, err := s.summary.MonthlyGrowth(snap)
	if err != nil {
		return nil, err
	}
	if growth == nil {
		return nil, utils.NewInsufficientDataError("not enough data to recommend: need two months of sales")
	}

	message := "Good growth - scale up high-performing channels."
	if *growth < 0 {
		message = "Revenue down - recommend marketing push and promotions."
	} else if *growth < 5 {
		message = "Modest growth - optimise pricing and retention."
	}

	return &models.Recommendation{
		MonthlyGrowthPct: *growth,
		Message:          message,
		GeneratedAt:      time.Now(),
	}, nil
}
