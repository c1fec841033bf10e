// Package export serializes filtered encounter records into downloadable
// reports: a multi-sheet XLSX workbook and a flat CSV.
package export

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/vivesalud/productiva/internal/analytics"
	"github.com/vivesalud/productiva/internal/domain/encounter"
)

var detailHeader = []string{
	"fecha", "programa", "convenio", "institucion", "profesional",
	"departamento", "municipio", "localidad",
	"numero_paciente", "nombre_paciente", "actividad", "tipo_contacto",
	"atendido", "registrado_panacea", "duracion_minutos",
	"pacientes_programados", "pacientes_atendidos", "no_asistieron", "tasa_atencion",
	"observaciones", "creado_por",
}

// Workbook renders the records and their aggregates into an XLSX file with
// the sheets the reporting page offers: Detalle plus one sheet per grouping.
func Workbook(records []*encounter.Encounter) ([]byte, error) {
	f := excelize.NewFile()
	// WriteTo needs the file open; close only on the error paths.

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	if err := writeDetailSheet(f, "Detalle", headerStyle, records); err != nil {
		f.Close()
		return nil, err
	}

	summary := analytics.Summarize(records)
	if err := writeSummarySheet(f, "Resumen", headerStyle, summary); err != nil {
		f.Close()
		return nil, err
	}

	ranking := analytics.RankProfessionals(records)
	rankRows := make([][]any, 0, len(ranking))
	for _, s := range ranking {
		rankRows = append(rankRows, []any{s.Name, s.Records, s.ScheduledPatients, s.AttendedPatients})
	}
	if err := writeSheet(f, "Por_profesional", headerStyle,
		[]string{"profesional", "registros", "pacientes_programados", "pacientes_atendidos"}, rankRows); err != nil {
		f.Close()
		return nil, err
	}

	if err := writeGroupSheet(f, "Por_institucion", headerStyle, "institucion", analytics.DistributionByInstitution(records)); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeGroupSheet(f, "Por_actividad", headerStyle, "actividad", analytics.DistributionByActivity(records)); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeGroupSheet(f, "Por_geo", headerStyle, "departamento", analytics.DistributionByDepartment(records)); err != nil {
		f.Close()
		return nil, err
	}

	f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("closing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeDetailSheet(f *excelize.File, name string, headerStyle int, records []*encounter.Encounter) error {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, detailRow(r))
	}
	return writeSheet(f, name, headerStyle, detailHeader, rows)
}

func detailRow(r *encounter.Encounter) []any {
	duration := ""
	if r.DurationMins != nil {
		duration = strconv.Itoa(*r.DurationMins)
	}
	return []any{
		r.Date.Format("2006-01-02"),
		r.ProgramName, r.AgreementName, r.InstitutionName, r.ProfessionalName,
		r.Department, r.Municipality, r.Locality,
		r.PatientNumber, r.PatientName, string(r.Activity), string(r.ContactType),
		siNo(r.Attended), siNo(r.RegisteredExternal), duration,
		r.ScheduledPatients, r.AttendedPatients, r.NoShows(), r.AttendanceRate(),
		r.Observations, r.CreatedBy,
	}
}

func writeSummarySheet(f *excelize.File, name string, headerStyle int, s analytics.Summary) error {
	rows := [][]any{
		{"registros", s.Records},
		{"pacientes_programados", s.ScheduledPatients},
		{"pacientes_atendidos", s.AttendedPatients},
		{"no_asistieron", s.NoShows},
		{"tasa_atencion", s.AttendanceRate},
		{"duracion_total_minutos", s.TotalDurationMins},
		{"duracion_promedio_minutos", s.AverageDurationMins},
		{"atenciones_por_hora_efectiva", s.EncountersPerEffectiveHour},
		{"brecha_panacea", s.PanaceaGap},
	}
	return writeSheet(f, name, headerStyle, []string{"indicador", "valor"}, rows)
}

func writeGroupSheet(f *excelize.File, name string, headerStyle int, keyName string, groups []analytics.GroupCount) error {
	rows := make([][]any, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []any{g.Key, g.Records, g.ScheduledPatients, g.AttendedPatients})
	}
	return writeSheet(f, name, headerStyle,
		[]string{keyName, "registros", "pacientes_programados", "pacientes_atendidos"}, rows)
}

func writeSheet(f *excelize.File, name string, headerStyle int, header []string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("creating sheet %s: %w", name, err)
	}

	for col, h := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("converting coordinates: %w", err)
		}
		if err := f.SetCellValue(name, cell, h); err != nil {
			return fmt.Errorf("setting header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(name, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("setting header style: %w", err)
		}
	}

	for i, row := range rows {
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("converting coordinates: %w", err)
			}
			if err := f.SetCellValue(name, cell, v); err != nil {
				return fmt.Errorf("setting cell %s: %w", cell, err)
			}
		}
	}
	return nil
}

func siNo(b bool) string {
	if b {
		return "SI"
	}
	return "NO"
}
