package gencode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ids(fs []*Feature) []string {
	var out []string
	for _, f := range fs {
		out = append(out, f.ID)
	}
	return out
}

func TestBuildIntervalTree_Empty(t *testing.T) {
	tree := BuildIntervalTree(nil)
	assert.Empty(t, tree.FindOverlaps(100, 100))
	assert.Equal(t, 0, tree.Len())
}

func TestIntervalTree_SingleFeature(t *testing.T) {
	tree := BuildIntervalTree([]*Feature{{ID: "ENSG001", Start: 100, End: 200}})

	assert.Len(t, tree.FindOverlaps(150, 150), 1)
	assert.Len(t, tree.FindOverlaps(100, 100), 1, "start boundary inclusive")
	assert.Len(t, tree.FindOverlaps(200, 200), 1, "end boundary inclusive")
	assert.Empty(t, tree.FindOverlaps(99, 99), "before start")
	assert.Empty(t, tree.FindOverlaps(201, 300), "after end")
	assert.Len(t, tree.FindOverlaps(1, 1000), 1, "range spans feature")
	assert.Empty(t, tree.FindOverlaps(300, 200), "inverted range")
}

func TestIntervalTree_Overlapping(t *testing.T) {
	tree := BuildIntervalTree([]*Feature{
		{ID: "C", Start: 200, End: 400},
		{ID: "A", Start: 100, End: 300},
		{ID: "B", Start: 150, End: 250},
	})

	assert.Equal(t, []string{"A", "B"}, ids(tree.FindOverlaps(175, 175)))
	assert.Equal(t, []string{"A", "B", "C"}, ids(tree.FindOverlaps(250, 250)))
	assert.Equal(t, []string{"C"}, ids(tree.FindOverlaps(350, 500)))
	assert.Equal(t, []string{"A", "B", "C"}, ids(tree.FindOverlaps(50, 210)))
}

func TestIntervalTree_LongFeatureBehindShortOnes(t *testing.T) {
	tree := BuildIntervalTree([]*Feature{
		{ID: "long", Start: 10, End: 10000},
		{ID: "a", Start: 20, End: 30},
		{ID: "b", Start: 40, End: 50},
	})
	assert.Equal(t, []string{"long"}, ids(tree.FindOverlaps(5000, 6000)))
	assert.Equal(t, []string{"long", "b"}, ids(tree.FindOverlaps(45, 45)))
}
