package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mward/statingest/internal/refdata"
	"github.com/mward/statingest/internal/schema"
	"github.com/mward/statingest/internal/store"
	"github.com/mward/statingest/internal/tabular"
)

// SourceAreaSupport is the per-local-authority support workbook.
const SourceAreaSupport = "AREA_SUPPORT"

// Canonical fields shared by the support-shaped sources.
const (
	fieldDate        schema.Field = "snapshot_date"
	fieldArea        schema.Field = "area"
	fieldNationality schema.Field = "nationality"
	fieldTotal       schema.Field = "total"
	fieldDispersed   schema.Field = "dispersed"
	fieldHotel       schema.Field = "hotel"
	fieldSubsistence schema.Field = "subsistence"
	fieldPersons     schema.Field = "persons"
)

// AreaSupportAdapter ingests the quarterly per-authority support workbook.
//
// The rule order is load-bearing: "dispersed" must claim "Total dispersed"
// before the total rule sees it, and hotel headers have flipped between
// "hotel" and "contingency accommodation" across releases.
type AreaSupportAdapter struct{}

func (a *AreaSupportAdapter) Code() string { return SourceAreaSupport }

func (a *AreaSupportAdapter) rules() []schema.Rule {
	return []schema.Rule{
		{Field: fieldDate, Keywords: []string{"date", "as at", "period"}},
		{Field: fieldArea, Keywords: []string{"local authority", "area", "region"}},
		{Field: fieldDispersed, Keywords: []string{"dispersed"}},
		{Field: fieldHotel, Keywords: []string{"hotel", "contingency"}},
		{Field: fieldSubsistence, Keywords: []string{"subsistence"}},
		{Field: fieldTotal, Keywords: []string{"total", "supported"}},
	}
}

func (a *AreaSupportAdapter) Transform(ctx context.Context, tables []tabular.Table, resolver *refdata.Resolver) (*Batch, error) {
	batch := &Batch{}
	var facts []store.AreaSupportFact

	mapped := 0
	for _, table := range tables {
		m := schema.Map(a.rules(), table.Columns)
		areaCol, haveArea := m.Column(fieldArea)
		totalCol, haveTotal := m.Column(fieldTotal)
		if !haveArea || !haveTotal {
			// Notes/metadata sheets simply don't map; only fail when no
			// sheet in the workbook does.
			continue
		}
		mapped++

		for _, row := range table.Rows {
			date, reason, ok := rowSnapshot(row, m, table.Name)
			if !ok {
				batch.Skipped = append(batch.Skipped, reason)
				continue
			}

			res, err := resolver.ResolveAuthority(ctx, row[areaCol])
			if errors.Is(err, refdata.ErrReservedLabel) {
				batch.Skipped = append(batch.Skipped, fmt.Sprintf("aggregate row %q excluded", row[areaCol]))
				continue
			}
			if err != nil {
				return nil, err
			}
			if res.Created {
				batch.StubsMinted++
			}

			facts = append(facts, store.AreaSupportFact{
				SnapshotDate:     date,
				LocalAuthorityID: res.ID,
				TotalSupported:   schema.ParseCount(row[totalCol]).Value,
				Dispersed:        countField(row, m, fieldDispersed),
				Hotel:            countField(row, m, fieldHotel),
				SubsistenceOnly:  countField(row, m, fieldSubsistence),
			})
		}
	}

	if mapped == 0 {
		return nil, &tabular.DecodeError{Kind: tabular.KindXLSX,
			Message: "no sheet maps the area/total columns"}
	}

	batch.Processed = len(facts)
	batch.Load = func(ctx context.Context, st *store.Store, runID string) (store.LoadStats, error) {
		return st.UpsertAreaSupportFacts(ctx, runID, facts)
	}
	return batch, nil
}

// rowSnapshot pulls the snapshot date from the row's date column, falling
// back to the sheet name: publishers often put the period in the tab name
// ("Mar 2023") instead of a column.
func rowSnapshot(row tabular.Row, m schema.Mapping, tableName string) (time.Time, string, bool) {
	if col, ok := m.Column(fieldDate); ok {
		date, err := schema.ParseDate(row[col])
		if err != nil {
			return time.Time{}, err.Error(), false
		}
		return date, "", true
	}
	date, err := schema.ParseDate(tableName)
	if err != nil {
		return time.Time{}, fmt.Sprintf("no date column and sheet name %q is not a period", tableName), false
	}
	return date, "", true
}

func countField(row tabular.Row, m schema.Mapping, f schema.Field) int64 {
	col, ok := m.Column(f)
	if !ok {
		return 0
	}
	return schema.ParseCount(row[col]).Value
}
