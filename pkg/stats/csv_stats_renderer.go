package stats

import (
	"bytes"
	"encoding/csv"
	"strconv"

	log "github.com/sirupsen/logrus"
)

type StatsRenderer interface {
	RenderSummary(summary Summary) (string, error)
}

type CsvStatsRendererImpl struct {
}

func NewCsvStatsRenderer() *CsvStatsRendererImpl {
	return &CsvStatsRendererImpl{}
}

// RenderSummary writes the category breakdown followed by the budget totals.
func (t *CsvStatsRendererImpl) RenderSummary(summary Summary) (string, error) {
	data := make([][]string, 0, len(summary.Breakdown)+4)
	data = append(data, []string{"Category", "Amount", "Percentage"})
	for _, row := range summary.Breakdown {
		data = append(data, []string{
			string(row.Category),
			row.Amount.StringFixed(2),
			percentageToString(row.Percentage),
		})
	}
	data = append(data,
		[]string{"Total", summary.Total.StringFixed(2), percentageToString(summary.Progress.Percentage)},
		[]string{"Budget", summary.Progress.Budget.StringFixed(2), ""},
		[]string{"Remaining", summary.Progress.Remaining.StringFixed(2), ""},
	)

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		err := writer.Write(row)
		if err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}

func percentageToString(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64)
}
