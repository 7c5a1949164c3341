package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rodrigoinhaia/DiinPonto/core/models"
)

func TestExportRecords(t *testing.T) {
	records := []models.TimeRecord{
		{
			Type:      models.RecordEntry,
			Timestamp: time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC),
			Device:    "kiosk-01",
			User: models.User{
				Name:       "Maria Silva",
				EmployeeID: "EMP042",
			},
		},
	}

	file, err := ExportRecords(records)
	require.NoError(t, err)

	buf, err := file.WriteToBuffer()
	require.NoError(t, err)

	reopened, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer reopened.Close()

	rows, err := reopened.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Funcionario", rows[0][0])
	assert.Equal(t, "Maria Silva", rows[1][0])
	assert.Equal(t, "EMP042", rows[1][1])
	assert.Equal(t, "Sem departamento", rows[1][2])
	assert.Equal(t, "ENTRY", rows[1][3])
	assert.Equal(t, "04/03/2024", rows[1][4])
	assert.Equal(t, "08:00:00", rows[1][5])
	assert.Equal(t, "kiosk-01", rows[1][6])
}
