package adapter

import (
	"context"

	"github.com/mward/statingest/internal/refdata"
	"github.com/mward/statingest/internal/schema"
	"github.com/mward/statingest/internal/store"
	"github.com/mward/statingest/internal/tabular"
)

// SourceNationalSummary is the national-aggregates HTML page.
const SourceNationalSummary = "NATIONAL_SUMMARY"

// NationalSummaryAdapter scrapes the summary table from the statistics
// landing page: one row per snapshot, no entity resolution. The page
// carries navigation tables around the data table, so the transform picks
// the first table whose header maps both date and total.
type NationalSummaryAdapter struct{}

func (a *NationalSummaryAdapter) Code() string { return SourceNationalSummary }

func (a *NationalSummaryAdapter) rules() []schema.Rule {
	return []schema.Rule{
		{Field: fieldDate, Keywords: []string{"date", "period", "quarter", "as at"}},
		{Field: fieldDispersed, Keywords: []string{"dispersed"}},
		{Field: fieldHotel, Keywords: []string{"hotel", "contingency"}},
		{Field: fieldTotal, Keywords: []string{"total", "supported"}},
	}
}

func (a *NationalSummaryAdapter) Transform(ctx context.Context, tables []tabular.Table, _ *refdata.Resolver) (*Batch, error) {
	batch := &Batch{}
	var facts []store.NationalSummaryFact

	for _, table := range tables {
		m := schema.Map(a.rules(), table.Columns)
		dateCol, haveDate := m.Column(fieldDate)
		totalCol, haveTotal := m.Column(fieldTotal)
		if !haveDate || !haveTotal {
			continue
		}

		for _, row := range table.Rows {
			date, err := schema.ParseDate(row[dateCol])
			if err != nil {
				batch.Skipped = append(batch.Skipped, err.Error())
				continue
			}
			facts = append(facts, store.NationalSummaryFact{
				SnapshotDate:   date,
				TotalSupported: schema.ParseCount(row[totalCol]).Value,
				TotalDispersed: countField(row, m, fieldDispersed),
				TotalHotel:     countField(row, m, fieldHotel),
			})
		}
		// First mapping table wins; anything after it is page furniture.
		break
	}

	if facts == nil && len(batch.Skipped) == 0 {
		return nil, &tabular.DecodeError{Kind: tabular.KindHTML,
			Message: "no table maps the date/total columns"}
	}

	batch.Processed = len(facts)
	batch.Load = func(ctx context.Context, st *store.Store, runID string) (store.LoadStats, error) {
		return st.UpsertNationalSummaryFacts(ctx, runID, facts)
	}
	return batch, nil
}
