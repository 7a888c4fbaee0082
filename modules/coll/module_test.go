package coll_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/graphproc/internal/app"
	"github.com/vk/graphproc/modules/coll"
	"github.com/zclconf/go-cty/cty"
)

func TestAggregations(t *testing.T) {
	a, _ := app.SetupAppTest(t, app.Config{}, &coll.Module{})

	tests := []struct {
		name string
		rows []string
		want cty.Value
	}{
		{name: "coll.countDistinct", rows: []string{"1", "2", "1", "'1'", "null"}, want: cty.NumberIntVal(3)},
		{name: "coll.countDistinct", rows: nil, want: cty.NumberIntVal(0)},
		{name: "coll.longest", rows: []string{"'ab'", "'abcd'", "'wxyz'", "null"}, want: cty.StringVal("abcd")},
		{name: "coll.longest", rows: nil, want: cty.StringVal("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := a.Call(context.Background(), tt.name, tt.rows)
			require.NoError(t, err)
			require.True(t, tt.want.Equals(res.Rows[0][0]).True(), "got %#v", res.Rows[0][0])
		})
	}
}

func TestCollect(t *testing.T) {
	a, _ := app.SetupAppTest(t, app.Config{}, &coll.Module{})

	res, err := a.Aggregate(context.Background(), "coll.collect", [][]cty.Value{
		{cty.StringVal("a")},
		{cty.NullVal(cty.String)},
		{cty.StringVal("b")},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"coll.collect"}, res.Columns)
	require.Equal(t, 2, res.Rows[0][0].LengthInt())
}

func TestSize(t *testing.T) {
	a, _ := app.SetupAppTest(t, app.Config{}, &coll.Module{})

	res, err := a.Call(context.Background(), "coll.size", []string{"[1, 'two', null]"})
	require.NoError(t, err)
	require.True(t, res.Rows[0][0].Equals(cty.NumberIntVal(3)).True())
}
