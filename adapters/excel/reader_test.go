package excel

import (
	"os"
	"path/filepath"
	"testing"

	"divnest/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadAbundanceTable_CSV(t *testing.T) {
	path := writeCSV(t, "abundance.csv",
		"site,sp1,sp2,sp3\n"+
			"s1,1,2,3\n"+
			"s2,0,4.5,0\n")
	tab, err := NewDataReader(path).ReadAbundanceTable()
	require.NoError(t, err)

	assert.Equal(t, []core.SiteID{"s1", "s2"}, tab.Sites)
	assert.Equal(t, []core.SpeciesID{"sp1", "sp2", "sp3"}, tab.Species)
	assert.Equal(t, [][]float64{{1, 2, 3}, {0, 4.5, 0}}, tab.Counts)
}

func TestReadAbundanceTable_NonNumericCell(t *testing.T) {
	path := writeCSV(t, "abundance.csv",
		"site,sp1\n"+
			"s1,many\n")
	_, err := NewDataReader(path).ReadAbundanceTable()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sp1")
}

func TestReadStructureTable_CSV(t *testing.T) {
	path := writeCSV(t, "structure.csv",
		"site,plot,region\n"+
			"s1,A,X\n"+
			"s2,A,X\n"+
			"s3,B,Y\n")
	str, err := NewDataReader(path).ReadStructureTable()
	require.NoError(t, err)

	assert.Equal(t, []string{"plot", "region"}, str.Levels)
	assert.Equal(t, []core.SiteID{"s1", "s2", "s3"}, str.Sites)
	assert.Equal(t, []core.GroupID{"A", "X"}, str.Assignments[0])
	assert.Equal(t, []core.GroupID{"B", "Y"}, str.Assignments[2])
}

func TestReadDissimilarity_CSV(t *testing.T) {
	path := writeCSV(t, "dist.csv",
		"sp,sp1,sp2\n"+
			"sp1,0,0.5\n"+
			"sp2,0.5,0\n")
	dis, err := NewDataReader(path).ReadDissimilarity()
	require.NoError(t, err)

	assert.Equal(t, 0.5, dis.At(0, 1))
	assert.Equal(t, 0.5, dis.At(1, 0))
	assert.Equal(t, 0.0, dis.At(0, 0))
}

func TestReadDissimilarity_RejectsNonSquare(t *testing.T) {
	path := writeCSV(t, "dist.csv",
		"sp,sp1,sp2\n"+
			"sp1,0,0.5\n")
	_, err := NewDataReader(path).ReadDissimilarity()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "square")
}

func TestReadGrid_RaggedRow(t *testing.T) {
	path := writeCSV(t, "bad.csv",
		"site,sp1,sp2\n"+
			"s1,1\n")
	_, err := NewDataReader(path).ReadAbundanceTable()
	assert.Error(t, err)
}
