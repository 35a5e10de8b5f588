package handlers

import (
	"github.com/karthikeyanvijay/snowflake-cortex-document-validation-app/gateway"
)

// chartData is the server-side shape behind the results page charts: one
// bar per evaluated category plus a score histogram. Both are omitted
// unless at least two categories carry evaluation scores.
type chartData struct {
	Scores       []categoryScore `json:"scores"`
	Histogram    []histogramBin  `json:"histogram"`
	AverageScore float64         `json:"average_score"`
}

type categoryScore struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

type histogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

func buildCharts(result *gateway.ComparisonResult) *chartData {
	scores := make([]categoryScore, 0, len(result.Results))
	var total float64
	for _, category := range sortedCategories(result) {
		data := result.Results[category]
		if data.Evaluation == nil {
			continue
		}
		scores = append(scores, categoryScore{
			Category: displayCategory(category),
			Score:    data.Evaluation.EvaluationScore,
		})
		total += data.Evaluation.EvaluationScore
	}
	if len(scores) < 2 {
		return nil
	}

	bins := make([]histogramBin, 10)
	for i := range bins {
		bins[i].Lower = float64(i) / 10
		bins[i].Upper = float64(i+1) / 10
	}
	for _, s := range scores {
		i := int(s.Score * 10)
		if i >= len(bins) {
			i = len(bins) - 1
		}
		if i < 0 {
			i = 0
		}
		bins[i].Count++
	}

	return &chartData{
		Scores:       scores,
		Histogram:    bins,
		AverageScore: total / float64(len(scores)),
	}
}
