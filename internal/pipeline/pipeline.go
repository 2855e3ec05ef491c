// Package pipeline orchestrates sheet reading, validation, fix application,
// and revalidation into the two public operations: Validate and Process.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sheetcurator/internal/fix"
	"sheetcurator/internal/metrics"
	"sheetcurator/internal/sheet"
	"sheetcurator/internal/validate"
	"sheetcurator/pkg/domain"
)

// Logger is the narrow structured-logging surface the pipeline needs.
// *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Request selects what to validate.
type Request struct {
	// EntityTypes defaults to dataset, donor, and sample when empty.
	EntityTypes []domain.EntityType
	// Bionetwork selects network-specific schema classes; empty uses each
	// entity type's default class.
	Bionetwork string
}

// Pipeline wires the collaborators of one validation deployment.
type Pipeline struct {
	reader  domain.SheetReader
	schema  domain.SchemaProvider
	engine  *validate.Engine
	fixes   fix.Table
	logger  Logger
	metrics metrics.Recorder
}

// Option configures optional pipeline collaborators.
type Option func(*Pipeline)

// WithFixTable overrides the built-in fix table.
func WithFixTable(table fix.Table) Option {
	return func(p *Pipeline) { p.fixes = table }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r metrics.Recorder) Option {
	return func(p *Pipeline) { p.metrics = r }
}

// New builds a pipeline over a sheet reader and schema provider.
func New(reader domain.SheetReader, schema domain.SchemaProvider, logger Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		reader:  reader,
		schema:  schema,
		engine:  validate.NewEngine(schema),
		fixes:   fix.DefaultTable(),
		logger:  logger,
		metrics: metrics.NopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Validate reads the sheet and runs one validation pass. Read failures
// degrade to a single whole-sheet result; invalid arguments fail fast with
// an error.
func (p *Pipeline) Validate(ctx context.Context, sheetID string, req Request) (*domain.ValidationResult, error) {
	start := time.Now()
	result, _, err := p.runValidation(ctx, sheetID, req)
	p.metrics.RecordDuration("validate", time.Since(start))
	p.metrics.RecordResult("validate", statusOf(result, err))
	return result, err
}

// Process validates the sheet, applies available fixes when it is editable,
// and revalidates exactly once after any write. Fixes still available after
// revalidation are logged as a repair anomaly; no further write is
// attempted.
func (p *Pipeline) Process(ctx context.Context, sheetID string, req Request) (*domain.ValidationResult, error) {
	start := time.Now()
	result, err := p.process(ctx, sheetID, req)
	p.metrics.RecordDuration("process", time.Since(start))
	p.metrics.RecordResult("process", statusOf(result, err))
	return result, err
}

func (p *Pipeline) process(ctx context.Context, sheetID string, req Request) (*domain.ValidationResult, error) {
	if err := normalizeRequest(&req); err != nil {
		return nil, err
	}
	result, info, err := p.runValidation(ctx, sheetID, req)
	if err != nil || info == nil {
		return result, err
	}
	if len(result.Errors) == 0 || !info.Metadata.CanEdit {
		return result, nil
	}

	resolver := fix.NewResolver(p.schema, p.fixes, req.Bionetwork)
	result.Errors = resolver.Resolve(result.Errors)

	applyStart := time.Now()
	wrote, writeErr := fix.Apply(ctx, result.Errors, info.Writers)
	p.metrics.RecordDuration("apply_fixes", time.Since(applyStart))
	if writeErr != nil {
		p.metrics.RecordResult("apply_fixes", "failure")
		p.logger.Error("applying fixes failed", "sheet_id", sheetID, "error", writeErr)
		return p.wholeSheetFailure(req, domain.CodeAPIError, writeErr.Error(), &info.Metadata, "", nil), nil
	}
	p.metrics.RecordResult("apply_fixes", "success")
	if !wrote {
		return result, nil
	}
	p.logger.Info("fixes applied, revalidating", "sheet_id", sheetID)

	// One revalidation over a fresh read. The second resolver pass only
	// detects non-convergence: its annotations are discarded and nothing
	// is written a second time.
	revalidated, _, err := p.runValidation(ctx, sheetID, req)
	if err != nil {
		return nil, err
	}
	for _, e := range resolver.Resolve(revalidated.Errors) {
		if e.InputFix != "" {
			p.logger.Error("fix available after revalidation, repair did not converge",
				"sheet_id", sheetID,
				"entity_type", e.EntityType,
				"column", e.Column,
				"cell", e.Cell,
			)
		}
	}
	return revalidated, nil
}

// runValidation performs argument validation, the read, and one validation
// pass. A read failure produces a whole-sheet result and nil info.
func (p *Pipeline) runValidation(ctx context.Context, sheetID string, req Request) (*domain.ValidationResult, *domain.SpreadsheetInfo, error) {
	if err := normalizeRequest(&req); err != nil {
		return nil, nil, err
	}

	info, err := p.reader.Read(ctx, sheetID, req.EntityTypes)
	if err != nil {
		var readErr *domain.ReadError
		if errors.As(err, &readErr) {
			p.logger.Warn("sheet read failed",
				"sheet_id", sheetID, "code", readErr.Code, "error", readErr.Message)
			return p.wholeSheetFailure(req, readErr.Code, readErr.Error(), readErr.Metadata, "", readErr.WorksheetID), nil, nil
		}
		p.logger.Warn("sheet read failed", "sheet_id", sheetID, "error", err)
		return p.wholeSheetFailure(req, domain.CodeAPIError, err.Error(), nil, "", nil), nil, nil
	}

	view := &validate.View{
		EntityTypes: req.EntityTypes,
		Worksheets:  info.Worksheets,
		Rows:        map[domain.EntityType][]domain.NormalizedRow{},
		Classes:     map[domain.EntityType]domain.SchemaClassID{},
	}
	for _, entityType := range req.EntityTypes {
		ws := info.Worksheets[entityType]
		if ws == nil {
			return p.wholeSheetFailure(req, domain.CodeWorksheetNotFound,
				fmt.Sprintf("no worksheet for entity type %s", entityType), &info.Metadata, entityType, nil), nil, nil
		}
		class, err := p.schema.ClassFor(entityType, req.Bionetwork)
		if err != nil {
			return nil, nil, err
		}
		view.Classes[entityType] = class
		raw, err := sheet.Extract(ws)
		if err != nil {
			if errors.Is(err, sheet.ErrNoData) {
				id := ws.WorksheetID
				return p.wholeSheetFailure(req, domain.CodeNoData,
					fmt.Sprintf("%s worksheet contains no data rows", entityType), &info.Metadata, entityType, &id), nil, nil
			}
			return nil, nil, err
		}
		fields, err := p.schema.InducedFields(class)
		if err != nil {
			return nil, nil, err
		}
		view.Rows[entityType] = sheet.Normalize(raw, ws.SourceColumns, fields)
	}

	errs, err := p.engine.Run(ctx, view)
	if err != nil {
		return nil, nil, err
	}
	result := &domain.ValidationResult{
		Successful: len(errs) == 0,
		Metadata:   &info.Metadata,
		Summary:    validate.BuildSummary(view, errs),
		Errors:     errs,
	}
	if len(errs) > 0 {
		result.ErrorCode = domain.CodeValidationError
	}
	p.logger.Debug("validation pass complete",
		"sheet_id", sheetID, "error_count", len(errs))
	return result, info, nil
}

// wholeSheetFailure builds the degraded result used when no per-row
// validation could run: every entity count is null and a single error
// carries the failure.
func (p *Pipeline) wholeSheetFailure(req Request, code domain.ErrorCode, message string, metadata *domain.SpreadsheetMetadata, entityType domain.EntityType, worksheetID *int) *domain.ValidationResult {
	return &domain.ValidationResult{
		Successful: false,
		Metadata:   metadata,
		ErrorCode:  code,
		Summary:    domain.SummaryWithoutEntities(req.EntityTypes, 1),
		Errors: []domain.SheetError{{
			EntityType:  entityType,
			Message:     message,
			WorksheetID: worksheetID,
		}},
	}
}

func normalizeRequest(req *Request) error {
	if !domain.ValidBionetwork(req.Bionetwork) {
		return fmt.Errorf("unknown bionetwork %q", req.Bionetwork)
	}
	if len(req.EntityTypes) == 0 {
		req.EntityTypes = append([]domain.EntityType(nil), domain.DefaultEntityTypes...)
		return nil
	}
	for _, entityType := range req.EntityTypes {
		if _, ok := domain.SheetStructures[entityType]; !ok {
			return fmt.Errorf("entity type %q has no worksheet representation", entityType)
		}
	}
	return nil
}

func statusOf(result *domain.ValidationResult, err error) string {
	switch {
	case err != nil:
		return "error"
	case result != nil && result.Successful:
		return "success"
	default:
		return "failure"
	}
}
