//go:build testing

package hzcloud

import (
	"bytes"
	"context"
	"strings"

	"github.com/stretchr/testify/require"
)

func (suite *BasicTestSuite) queryCities(cli *Client, statement string, params ...interface{}) []KeyValue {
	ctx := context.Background()
	rows, err := cli.Query(ctx, statement, params...)
	require.NoError(suite.T(), err)
	defer func() {
		require.NoError(suite.T(), rows.Close())
	}()
	var res []KeyValue
	for rows.Next() {
		country, err := stringValue(rows.ValueByName("__key"))
		require.NoError(suite.T(), err)
		city, err := stringValue(rows.ValueByName("this"))
		require.NoError(suite.T(), err)
		res = append(res, KeyValue{country, city})
	}
	require.NoError(suite.T(), rows.Err())
	return res
}

func (suite *BasicTestSuite) TestSQLDemo() {
	cli := suite.client()
	out := bytes.Buffer{}
	require.NoError(suite.T(), RunSQLDemo(context.Background(), cli, &out))

	text := out.String()
	require.True(suite.T(), strings.HasPrefix(text, "Putting some data...\n"))
	for _, city := range demoCities {
		require.Contains(suite.T(), text, city.Key+" - "+city.Value+"\n")
	}
	require.Contains(suite.T(), text, "Country name: United States; City name: Washington, DC\n")

	require.ElementsMatch(suite.T(), demoCities, suite.queryCities(cli, selectAllCities))
	require.Equal(suite.T(), []KeyValue{{"United States", "Washington, DC"}},
		suite.queryCities(cli, selectCityByCountry, lookupCountry))
	require.Empty(suite.T(), suite.queryCities(cli, selectCityByCountry, "Atlantis"))
}

func (suite *BasicTestSuite) TestMappingIsIdempotent() {
	cli := suite.client()
	ctx := context.Background()
	require.NoError(suite.T(), RunSQLDemo(ctx, cli, &bytes.Buffer{}))
	require.NoError(suite.T(), createMapping(ctx, cli))
	require.NoError(suite.T(), createMapping(ctx, cli))
	require.ElementsMatch(suite.T(), demoCities, suite.queryCities(cli, selectAllCities))
}

func (suite *BasicTestSuite) TestInvalidStatement() {
	cli := suite.client()
	_, err := cli.Query(context.Background(), "SELECT * FROM no_such_mapping")
	var queryErr *QueryError
	require.ErrorAs(suite.T(), err, &queryErr)
	require.Equal(suite.T(), "SELECT * FROM no_such_mapping", queryErr.Statement)
}
