package mdp_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeStranger-Fred/trainplot/mdp"
)

const qtableCSV = `state,up,down,left
s0,1.0,2.0,3.0
s1,4.0,oops,6.0
s2,7.0,8.0,9.0
s3,10.0,11.0,12.0
s4,13.0,14.0,15.0
`

func TestLoadQTable(t *testing.T) {
	q, err := mdp.LoadQTable(strings.NewReader(qtableCSV))
	require.NoError(t, err)

	assert.Equal(t, []mdp.Action{"up", "down", "left"}, q.Actions)
	assert.Equal(t, 5, q.NumStates())
	assert.Equal(t, mdp.State("s1"), q.Rows[1].State)
	assert.Len(t, q.Rows[1].Values, 2)

	v, ok := q.Rows[1].Value("left")
	assert.True(t, ok)
	assert.Equal(t, 6.0, v)
	_, ok = q.Rows[1].Value("down")
	assert.False(t, ok)

	values := q.Values()
	assert.Len(t, values, 14)
	assert.NotContains(t, values, 5.0)
}

func TestLoadQTable_SkipsBadCells(t *testing.T) {
	csv := "left,state,right\n1,a,\nnan,b,inf\n2,c,3,99\n"
	q, err := mdp.LoadQTable(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, []mdp.Action{"left", "right"}, q.Actions)
	assert.Equal(t, 3, q.NumStates())
	assert.Equal(t, mdp.State("b"), q.Rows[1].State)
	assert.Equal(t, []float64{1, 2, 3}, q.Values())
}

func TestLoadQTable_Empty(t *testing.T) {
	_, err := mdp.LoadQTable(strings.NewReader(""))
	assert.Error(t, err)
}
