package refdata

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"

	"github.com/mward/statingest/internal/store"
)

// Seed file names looked for inside the seed directory. A missing file is
// skipped; the seeding process owns which reference sets it ships.
const (
	authoritiesSeedFile   = "local_authorities.csv"
	nationalitiesSeedFile = "nationalities.csv"
	sourcesSeedFile       = "sources.csv"
)

type authoritySeed struct {
	Code       string `csv:"code"`
	Name       string `csv:"name"`
	Population int64  `csv:"population"`
	Country    string `csv:"country"`
}

type nationalitySeed struct {
	ISOCode string `csv:"iso_code"`
	Name    string `csv:"name"`
}

type sourceSeed struct {
	Code    string `csv:"code"`
	Name    string `csv:"name"`
	URL     string `csv:"url"`
	Kind    string `csv:"kind"`
	Cadence string `csv:"cadence"`
	Tier    int    `csv:"tier"`
}

// SeedResult counts what a seeding pass loaded.
type SeedResult struct {
	Authorities   int `json:"authorities"`
	Nationalities int `json:"nationalities"`
	Sources       int `json:"sources"`
}

// Seed loads reference CSVs from dir into the store. Upsert semantics:
// existing entities get their attributes refreshed, nothing is deleted.
// These files have a fixed schema, so csvutil binds them straight onto
// structs; the heuristic mapper is only for the unstable upstream releases.
func Seed(ctx context.Context, st *store.Store, dir string) (*SeedResult, error) {
	result := &SeedResult{}

	var authorities []authoritySeed
	if err := readSeedFile(filepath.Join(dir, authoritiesSeedFile), &authorities); err != nil {
		return nil, err
	}
	for _, a := range authorities {
		la := store.LocalAuthority{
			Code:           a.Code,
			Name:           a.Name,
			NormalizedName: Normalize(a.Name),
			Country:        a.Country,
		}
		if a.Population > 0 {
			la.Population = &a.Population
		}
		if err := st.UpsertLocalAuthority(ctx, la); err != nil {
			return nil, err
		}
		result.Authorities++
	}

	var nationalities []nationalitySeed
	if err := readSeedFile(filepath.Join(dir, nationalitiesSeedFile), &nationalities); err != nil {
		return nil, err
	}
	for _, n := range nationalities {
		err := st.UpsertNationality(ctx, store.Nationality{
			ISOCode:        n.ISOCode,
			Name:           n.Name,
			NormalizedName: Normalize(n.Name),
		})
		if err != nil {
			return nil, err
		}
		result.Nationalities++
	}

	var sources []sourceSeed
	if err := readSeedFile(filepath.Join(dir, sourcesSeedFile), &sources); err != nil {
		return nil, err
	}
	for _, src := range sources {
		err := st.UpsertSource(ctx, store.Source{
			Code:    src.Code,
			Name:    src.Name,
			URL:     src.URL,
			Kind:    src.Kind,
			Cadence: src.Cadence,
			Tier:    src.Tier,
		})
		if err != nil {
			return nil, err
		}
		result.Sources++
	}

	return result, nil
}

// readSeedFile unmarshals one seed CSV into out. Absent files are fine.
func readSeedFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read seed file %s: %w", path, err)
	}
	if err := csvutil.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return nil
}
