package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vivesalud/productiva/internal/config"
	"github.com/vivesalud/productiva/internal/domain/catalog"
	"github.com/vivesalud/productiva/internal/domain/encounter"
	"github.com/vivesalud/productiva/internal/domain/patient"
	"github.com/vivesalud/productiva/pkg/metrics"
)

// ImportKind selects which entity a bulk file carries.
type ImportKind string

const (
	ImportProfessionals ImportKind = "profesionales"
	ImportPatients      ImportKind = "pacientes"
	ImportEncounters    ImportKind = "registros"
)

func (k ImportKind) IsValid() bool {
	switch k {
	case ImportProfessionals, ImportPatients, ImportEncounters:
		return true
	}
	return false
}

// RowError pins a failure to a 0-indexed data row and, when known, the
// offending column.
type RowError struct {
	Row    int
	Column string
	Err    error
}

func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column %q: %v", e.Row, e.Column, e.Err)
	}
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// Result is the batch outcome. Succeeded + len(Failed) always equals the
// number of data rows; a failing row never aborts the batch.
type Result struct {
	Succeeded int
	Failed    []RowError
	Warnings  []RowError
}

func (r *Result) Total() int {
	return r.Succeeded + len(r.Failed)
}

// Required and optional columns per kind. Names are case-sensitive and match
// the upload templates.
var requiredColumns = map[ImportKind][]string{
	ImportProfessionals: {"nombre"},
	ImportPatients:      {"documento", "nombre"},
	ImportEncounters: {
		"fecha", "programa", "convenio", "institucion", "profesional",
		"numero_paciente", "nombre_paciente", "actividad", "atendido", "registrado_panacea",
	},
}

var ErrTooManyRows = fmt.Errorf("import exceeds the configured row limit")

// ImportService validates tabular uploads row by row against the catalogs
// and writes the surviving rows. Loose string maps from the CSV are turned
// into typed commands here; nothing raw crosses into storage.
type ImportService struct {
	catalogRepo   catalog.Repository
	patientRepo   patient.Repository
	encounterRepo encounter.Repository
	cfg           config.ImportConfig
	auditSvc      *AuditService
	collector     *metrics.Collector
	log           *zap.Logger
}

func NewImportService(
	catalogRepo catalog.Repository,
	patientRepo patient.Repository,
	encounterRepo encounter.Repository,
	cfg config.ImportConfig,
	auditSvc *AuditService,
	collector *metrics.Collector,
	log *zap.Logger,
) *ImportService {
	return &ImportService{
		catalogRepo:   catalogRepo,
		patientRepo:   patientRepo,
		encounterRepo: encounterRepo,
		cfg:           cfg,
		auditSvc:      auditSvc,
		collector:     collector,
		log:           log,
	}
}

// Import parses the CSV and processes every data row. Only unreadable input
// or an unknown kind fail the call as a whole; per-row problems land in the
// result and the remaining rows still run.
func (s *ImportService) Import(ctx context.Context, kind ImportKind, r io.Reader, caller Caller) (*Result, error) {
	if !kind.IsValid() {
		return nil, &ValidationError{Fields: []string{fmt.Sprintf("unknown import kind %q", kind)}}
	}

	rows, err := readCSV(r, s.cfg.MaxRows)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for i, row := range rows {
		warn, err := s.importRow(ctx, kind, i, row, caller)
		if err != nil {
			re := asRowError(i, err)
			result.Failed = append(result.Failed, re)
			s.collector.ImportRowsTotal.WithLabelValues(string(kind), "error").Inc()
			continue
		}
		if warn != nil {
			result.Warnings = append(result.Warnings, *warn)
		}
		result.Succeeded++
		s.collector.ImportRowsTotal.WithLabelValues(string(kind), "ok").Inc()
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserEmail: caller.Email, UserRole: string(caller.Role),
		Action: "import", ResourceType: string(kind), IPAddress: caller.IP,
		Detail: fmt.Sprintf("succeeded=%d failed=%d", result.Succeeded, len(result.Failed)),
	})
	s.log.Info("bulk import finished",
		zap.String("kind", string(kind)),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", len(result.Failed)),
	)

	return result, nil
}

func (s *ImportService) importRow(ctx context.Context, kind ImportKind, idx int, row map[string]string, caller Caller) (*RowError, error) {
	if err := checkRequired(kind, row); err != nil {
		return nil, err
	}

	switch kind {
	case ImportProfessionals:
		return nil, s.importProfessional(ctx, row)
	case ImportPatients:
		return nil, s.importPatient(ctx, row)
	default:
		return s.importEncounter(ctx, idx, row, caller)
	}
}

func (s *ImportService) importProfessional(ctx context.Context, row map[string]string) error {
	cmd := &catalog.UpsertProfessionalCommand{
		Name:     row["nombre"],
		Document: row["documento"],
		Email:    row["email"],
	}

	if name := strings.TrimSpace(row["programa"]); name != "" {
		program, err := s.resolveProgram(ctx, name)
		if err != nil {
			return RowError{Column: "programa", Err: err}
		}
		cmd.ProgramID = &program.ID

		if agName := strings.TrimSpace(row["convenio"]); agName != "" {
			agreement, err := s.resolveAgreement(ctx, agName, program.ID)
			if err != nil {
				return RowError{Column: "convenio", Err: err}
			}
			cmd.AgreementID = &agreement.ID
		}
	} else if strings.TrimSpace(row["convenio"]) != "" {
		return RowError{Column: "convenio", Err: fmt.Errorf("convenio given without programa: %w", catalog.ErrProgramNotFound)}
	}

	_, err := s.catalogRepo.UpsertProfessional(ctx, cmd)
	return err
}

func (s *ImportService) importPatient(ctx context.Context, row map[string]string) error {
	cmd := &patient.UpsertPatientCommand{
		Document:     row["documento"],
		Name:         row["nombre"],
		Sex:          strings.TrimSpace(row["sexo"]),
		Phone:        row["telefono"],
		Email:        row["email"],
		Address:      strings.TrimSpace(row["direccion"]),
		Locality:     strings.TrimSpace(row["localidad"]),
		Municipality: strings.TrimSpace(row["municipio"]),
		Department:   strings.TrimSpace(row["departamento"]),
	}

	if raw := strings.TrimSpace(row["fecha_nacimiento"]); raw != "" {
		d, err := parseDate(raw)
		if err != nil {
			return RowError{Column: "fecha_nacimiento", Err: err}
		}
		cmd.BirthDate = &d
	}

	_, err := s.patientRepo.Upsert(ctx, cmd)
	return err
}

func (s *ImportService) importEncounter(ctx context.Context, idx int, row map[string]string, caller Caller) (*RowError, error) {
	date, err := parseDate(row["fecha"])
	if err != nil {
		return nil, RowError{Column: "fecha", Err: err}
	}

	activity := encounter.ActivityType(strings.TrimSpace(row["actividad"]))
	if !activity.IsValid() {
		return nil, RowError{Column: "actividad", Err: encounter.ErrInvalidActivity}
	}

	attended, err := parseSiNo(row["atendido"])
	if err != nil {
		return nil, RowError{Column: "atendido", Err: err}
	}
	registered, err := parseSiNo(row["registrado_panacea"])
	if err != nil {
		return nil, RowError{Column: "registrado_panacea", Err: err}
	}

	// Blank contact type falls back to the in-person default.
	contact := encounter.ContactInPerson
	if raw := strings.TrimSpace(row["tipo_contacto"]); raw != "" {
		contact = encounter.ContactType(raw)
		if !contact.IsValid() {
			return nil, RowError{Column: "tipo_contacto", Err: encounter.ErrInvalidContactType}
		}
	}

	var duration *int
	if raw := strings.TrimSpace(row["duracion_minutos"]); raw != "" {
		mins, err := strconv.Atoi(raw)
		if err != nil || mins <= 0 {
			return nil, RowError{Column: "duracion_minutos", Err: encounter.ErrInvalidDuration}
		}
		duration = &mins
	}

	program, err := s.resolveProgram(ctx, row["programa"])
	if err != nil {
		return nil, RowError{Column: "programa", Err: err}
	}
	agreement, err := s.resolveAgreement(ctx, row["convenio"], program.ID)
	if err != nil {
		return nil, RowError{Column: "convenio", Err: err}
	}
	// Institutions and professionals are never auto-created from encounter
	// rows: the file carries no geography or document to key them by.
	institution, err := s.catalogRepo.FindInstitutionByName(ctx, row["institucion"])
	if err != nil {
		return nil, RowError{Column: "institucion", Err: err}
	}
	professional, err := s.catalogRepo.FindProfessionalByName(ctx, row["profesional"])
	if err != nil {
		return nil, RowError{Column: "profesional", Err: err}
	}

	// One imported row is one patient's encounter unless the file carries
	// explicit counts, as group session and workshop exports do.
	scheduledCount := 1
	attendedCount := 0
	if attended {
		attendedCount = 1
	}
	if raw := strings.TrimSpace(row["pacientes_programados"]); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, RowError{Column: "pacientes_programados", Err: encounter.ErrInvalidPatientCount}
		}
		scheduledCount = n
	}
	if raw := strings.TrimSpace(row["pacientes_atendidos"]); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, RowError{Column: "pacientes_atendidos", Err: encounter.ErrInvalidPatientCount}
		}
		attendedCount = n
	}

	e := &encounter.Encounter{
		Date:               date,
		ProgramID:          program.ID,
		AgreementID:        agreement.ID,
		InstitutionID:      institution.ID,
		ProfessionalID:     professional.ID,
		Locality:           institution.Locality,
		Municipality:       institution.Municipality,
		Department:         institution.Department,
		PatientNumber:      strings.TrimSpace(row["numero_paciente"]),
		PatientName:        strings.TrimSpace(row["nombre_paciente"]),
		Activity:           activity,
		Attended:           attended,
		RegisteredExternal: registered,
		DurationMins:       duration,
		ContactType:        contact,
		ScheduledPatients:  scheduledCount,
		AttendedPatients:   attendedCount,
		CreatedBy:          caller.Email,
	}

	// A known patient number links the record to the patient catalog.
	if e.PatientNumber != "" {
		if p, err := s.patientRepo.FindByDocument(ctx, e.PatientNumber); err == nil {
			e.PatientID = &p.ID
		}
	}

	if err := s.encounterRepo.Create(ctx, e); err != nil {
		return nil, err
	}

	if e.AttendedPatients > e.ScheduledPatients {
		w := RowError{Row: idx, Column: "pacientes_atendidos", Err: fmt.Errorf("%s", WarnAttendedOverScheduled)}
		return &w, nil
	}
	return nil, nil
}

func (s *ImportService) resolveProgram(ctx context.Context, name string) (*catalog.Program, error) {
	if s.cfg.AutoCreateCatalog {
		return s.catalogRepo.UpsertProgram(ctx, name)
	}
	return s.catalogRepo.FindProgramByName(ctx, name)
}

func (s *ImportService) resolveAgreement(ctx context.Context, name string, programID uuid.UUID) (*catalog.Agreement, error) {
	if s.cfg.AutoCreateCatalog {
		return s.catalogRepo.UpsertAgreement(ctx, name, programID)
	}
	return s.catalogRepo.FindAgreementByName(ctx, name, programID)
}

// readCSV reads the header and data rows into ordered column maps. Column
// names are case-sensitive.
func readCSV(r io.Reader, maxRows int) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &ValidationError{Fields: []string{"file is empty"}}
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []map[string]string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row %d: %w", len(rows), err)
		}
		if maxRows > 0 && len(rows) >= maxRows {
			return nil, fmt.Errorf("%w (%d)", ErrTooManyRows, maxRows)
		}

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func checkRequired(kind ImportKind, row map[string]string) error {
	for _, col := range requiredColumns[kind] {
		v, ok := row[col]
		if !ok || strings.TrimSpace(v) == "" {
			return RowError{
				Column: col,
				Err:    &ValidationError{Fields: []string{fmt.Sprintf("required column %q is missing or empty", col)}},
			}
		}
	}
	return nil
}

func parseDate(raw string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", raw)
	}
	return d.UTC(), nil
}

// parseSiNo maps SI/NO (case-insensitive, accent tolerated) to a bool.
func parseSiNo(raw string) (bool, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "SI", "SÍ":
		return true, nil
	case "NO":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q (want SI or NO)", raw)
	}
}

// asRowError stamps the row index onto err, nesting RowErrors raised deeper
// in the pipeline so the column survives.
func asRowError(idx int, err error) RowError {
	if re, ok := err.(RowError); ok {
		re.Row = idx
		return re
	}
	return RowError{Row: idx, Err: err}
}
