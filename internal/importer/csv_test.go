package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	input := "\ufeffProject, Client,Developer,Hours,Date,Description\n" +
		"Portal,Acme,Ann,2.5,2024-01-10,setup\n" +
		"\n" +
		"Portal,Acme,Bob,1,2024-01-11\n"

	rows, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{Project: "Portal", ClientName: "Acme", DeveloperName: "Ann", Hours: 2.5, Date: "2024-01-10", Description: "setup"}, rows[0])
	assert.Equal(t, "Bob", rows[1].DeveloperName)
	assert.Empty(t, rows[1].Description)
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "csv is empty"},
		{"missing column", "project,client,developer,date\n", `missing required column "hours"`},
		{"bad hours", "project,client,developer,hours,date\nP,C,D,two,2024-01-01\n", `line 2: invalid hours "two"`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tc.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
