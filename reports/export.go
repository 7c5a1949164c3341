package reports

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/rodrigoinhaia/DiinPonto/core/models"
)

const exportSheet = "Registros"

// ExportRecords renders the detailed punch listing as a spreadsheet.
func ExportRecords(records []models.TimeRecord) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	header := []interface{}{"Funcionario", "Matricula", "Departamento", "Tipo", "Data", "Hora", "Dispositivo"}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, r := range records {
		row := []interface{}{
			r.User.Name,
			r.User.EmployeeID,
			departmentName(&r.User),
			string(r.Type),
			r.Timestamp.Format("02/01/2006"),
			r.Timestamp.Format("15:04:05"),
			r.Device,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// ExportLateEntries renders the lateness report as a spreadsheet.
func ExportLateEntries(entries []LateEntry) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet("Atrasos")
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	header := []interface{}{"Data", "Funcionario", "Departamento", "Horario", "Atraso (min)"}
	if err := f.SetSheetRow("Atrasos", "A1", &header); err != nil {
		return nil, err
	}

	for i, e := range entries {
		row := []interface{}{
			e.Date,
			e.UserName,
			e.DepartmentName,
			e.Timestamp.Format("15:04:05"),
			e.DelayMinutes,
		}
		if err := f.SetSheetRow("Atrasos", fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, err
		}
	}

	return f, nil
}
