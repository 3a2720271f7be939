package hzcloud

import (
	"context"
	"errors"
	"fmt"
	"io"
)

const (
	citiesMapName = "cities"
	// CREATE OR REPLACE keeps the statement idempotent, the mapping never touches stored entries.
	createCitiesMapping = "CREATE OR REPLACE MAPPING cities TYPE IMap OPTIONS (" +
		"'keyFormat' = 'varchar', " +
		"'valueFormat' = 'varchar')"
	selectAllCities     = "SELECT * FROM cities"
	selectCityByCountry = "SELECT __key, this FROM cities WHERE __key = ?"
	lookupCountry       = "United States"
	separator           = "--------------------"
)

var demoCities = []KeyValue{
	{"Australia", "Canberra"},
	{"Croatia", "Zagreb"},
	{"Czech Republic", "Prague"},
	{"England", "London"},
	{"Turkey", "Ankara"},
	{"United States", "Washington, DC"},
}

// RunSQLDemo seeds the "cities" map, maps it for SQL and prints the results of two queries to out.
// Every step depends on the previous one, so the first error is returned.
func RunSQLDemo(ctx context.Context, grid Grid, out io.Writer, opts ...WorkloadOption) error {
	wo := newWorkloadOptions(opts)
	err := runSQLDemo(ctx, grid, out)
	if err != nil {
		wo.log.Errorf("sql demo failed: %w", err)
	}
	return err
}

func runSQLDemo(ctx context.Context, grid Grid, out io.Writer) error {
	cities, err := grid.Map(ctx, citiesMapName)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, "Putting some data...")
	if err = seedCities(ctx, cities); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, "Creating a mapping...")
	if err = createMapping(ctx, grid); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, "The mapping has been created successfully.")

	_, _ = fmt.Fprintln(out, separator)
	_, _ = fmt.Fprintln(out, "Retrieving all the data via SQL...")
	err = forEachRow(ctx, grid, selectAllCities, nil, func(rows RowSet) error {
		country, err := stringValue(rows.Value(0))
		if err != nil {
			return err
		}
		city, err := stringValue(rows.Value(1))
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "%s - %s\n", country, city)
		return nil
	})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, separator)
	_, _ = fmt.Fprintln(out, "Retrieving a city name via SQL...")
	found := 0
	err = forEachRow(ctx, grid, selectCityByCountry, []interface{}{lookupCountry}, func(rows RowSet) error {
		country, err := stringValue(rows.ValueByName("__key"))
		if err != nil {
			return err
		}
		city, err := stringValue(rows.ValueByName("this"))
		if err != nil {
			return err
		}
		if found++; found > 1 {
			return createQueryError(fmt.Sprintf("more than one city for %q", lookupCountry), selectCityByCountry, nil)
		}
		_, _ = fmt.Fprintf(out, "Country name: %s; City name: %s\n", country, city)
		return nil
	})
	if err != nil {
		return err
	}
	if found == 0 {
		return createQueryError(fmt.Sprintf("no city for %q", lookupCountry), selectCityByCountry, nil)
	}
	_, _ = fmt.Fprintln(out, separator)
	return nil
}

func seedCities(ctx context.Context, cities KeyValueStore) error {
	for _, city := range demoCities {
		if err := cities.Put(ctx, city.Key, city.Value); err != nil {
			return err
		}
	}
	return nil
}

func createMapping(ctx context.Context, grid Grid) error {
	return forEachRow(ctx, grid, createCitiesMapping, nil, nil)
}

// forEachRow runs statement and calls fn for every row. The result is closed on every path.
func forEachRow(ctx context.Context, grid Grid, statement string, params []interface{}, fn func(rows RowSet) error) (err error) {
	rows, err := grid.Query(ctx, statement, params...)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	for rows.Next() {
		if fn == nil {
			continue
		}
		if err = fn(rows); err != nil {
			var queryErr *QueryError
			if !errors.As(err, &queryErr) {
				err = createQueryError("failed to process row", statement, err)
			}
			return err
		}
	}
	return rows.Err()
}
