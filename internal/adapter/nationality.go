package adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/mward/statingest/internal/refdata"
	"github.com/mward/statingest/internal/schema"
	"github.com/mward/statingest/internal/store"
	"github.com/mward/statingest/internal/tabular"
)

// SourceNationality is the per-nationality support CSV feed.
const SourceNationality = "NATIONALITY"

// NationalityAdapter ingests the nationality breakdown feed. Unlike the
// workbook sources the feed always carries an explicit date column.
type NationalityAdapter struct{}

func (a *NationalityAdapter) Code() string { return SourceNationality }

func (a *NationalityAdapter) rules() []schema.Rule {
	return []schema.Rule{
		{Field: fieldDate, Keywords: []string{"date", "period", "quarter"}},
		{Field: fieldNationality, Keywords: []string{"nationality", "country of nationality", "citizenship"}},
		{Field: fieldPersons, Keywords: []string{"people", "persons", "supported", "total"}},
	}
}

func (a *NationalityAdapter) Transform(ctx context.Context, tables []tabular.Table, resolver *refdata.Resolver) (*Batch, error) {
	batch := &Batch{}
	var facts []store.NationalityFact

	mapped := 0
	for _, table := range tables {
		m := schema.Map(a.rules(), table.Columns)
		dateCol, haveDate := m.Column(fieldDate)
		natCol, haveNat := m.Column(fieldNationality)
		personsCol, havePersons := m.Column(fieldPersons)
		if !haveDate || !haveNat || !havePersons {
			continue
		}
		mapped++

		for _, row := range table.Rows {
			date, err := schema.ParseDate(row[dateCol])
			if err != nil {
				batch.Skipped = append(batch.Skipped, err.Error())
				continue
			}

			res, err := resolver.ResolveNationality(ctx, row[natCol])
			if errors.Is(err, refdata.ErrReservedLabel) {
				batch.Skipped = append(batch.Skipped, fmt.Sprintf("aggregate row %q excluded", row[natCol]))
				continue
			}
			if err != nil {
				return nil, err
			}
			if res.Created {
				batch.StubsMinted++
			}

			facts = append(facts, store.NationalityFact{
				SnapshotDate:  date,
				NationalityID: res.ID,
				Persons:       schema.ParseCount(row[personsCol]).Value,
			})
		}
	}

	if mapped == 0 {
		return nil, &tabular.DecodeError{Kind: tabular.KindCSV,
			Message: "feed does not map the date/nationality/persons columns"}
	}

	batch.Processed = len(facts)
	batch.Load = func(ctx context.Context, st *store.Store, runID string) (store.LoadStats, error) {
		return st.UpsertNationalityFacts(ctx, runID, facts)
	}
	return batch, nil
}
