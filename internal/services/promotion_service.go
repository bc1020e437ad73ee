package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/school-system/promotion/internal/metrics"
	"github.com/school-system/promotion/internal/models"
	"github.com/school-system/promotion/internal/promotion"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrExamNotFound      = errors.New("exam not found")
	ErrExamClassMismatch = errors.New("exam belongs to another class")
	ErrClassNotFound     = errors.New("class not found")
	ErrNoTargetClass     = errors.New("no target class given and class has no next class")
	ErrDuplicateStudent  = errors.New("duplicate student ids in roster")
	ErrNothingToPromote  = errors.New("no promotable students")
)

// ExamLookupError turns a missing exam into ErrExamNotFound and passes any
// other lookup failure through.
func ExamLookupError(examID uuid.UUID, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrExamNotFound, examID)
	}
	return err
}

// RosterSource supplies the class roster and exam marks.
type RosterSource interface {
	FindExam(ctx context.Context, id uuid.UUID) (*models.Exam, error)
	LoadRoster(ctx context.Context, className string) ([]promotion.StudentRecord, error)
	LoadMarks(ctx context.Context, className string, examID uuid.UUID) ([]promotion.MarkEntry, error)
}

type PromotionStore interface {
	RosterSource
	FindClass(ctx context.Context, name string) (*models.Class, error)
	SavePromotion(ctx context.Context, log *models.PromotionLog, moves []models.StudentMove) error
	ListPromotionLogs(ctx context.Context, className string, limit int) ([]models.PromotionLog, error)
}

type PreviewRequest struct {
	ClassName string    `json:"class_name" validate:"required"`
	ExamID    uuid.UUID `json:"exam_id" validate:"required"`
	PassMarks *int      `json:"pass_marks" validate:"omitempty,min=1,max=100"`
}

type CommitRequest struct {
	PreviewRequest
	ToClass     string               `json:"to_class"`
	PerformedBy string               `json:"performed_by" validate:"required"`
	Notes       string               `json:"notes"`
	Overrides   []promotion.Override `json:"overrides" validate:"dive"`
	ClientIP    string               `json:"-"`
}

type PreviewRow struct {
	promotion.PromotionResult
	DisplayStatus string `json:"display_status"`
}

type PreviewSummary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Manual  int `json:"manual_passed"`
	Pending int `json:"pending"`
}

type Preview struct {
	ClassName string         `json:"class_name"`
	ExamID    uuid.UUID      `json:"exam_id"`
	PassMarks int            `json:"pass_marks"`
	Summary   PreviewSummary `json:"summary"`
	Results   []PreviewRow   `json:"results"`
}

type PromotionService struct {
	store            PromotionStore
	audit            *AuditService
	log              *zap.Logger
	validate         *validator.Validate
	defaultPassMarks int
}

func NewPromotionService(store PromotionStore, audit *AuditService, log *zap.Logger, defaultPassMarks int) *PromotionService {
	return &PromotionService{
		store:            store,
		audit:            audit,
		log:              log,
		validate:         validator.New(),
		defaultPassMarks: defaultPassMarks,
	}
}

func (s *PromotionService) passMarks(req PreviewRequest) int {
	if req.PassMarks != nil {
		return *req.PassMarks
	}
	if s.defaultPassMarks > 0 {
		return s.defaultPassMarks
	}
	return promotion.DefaultPassMarks
}

// rank loads the class and runs the engine.
func (s *PromotionService) rank(ctx context.Context, req PreviewRequest) ([]promotion.PromotionResult, error) {
	exam, err := s.store.FindExam(ctx, req.ExamID)
	if err != nil {
		return nil, ExamLookupError(req.ExamID, err)
	}
	if exam.ClassName != req.ClassName {
		return nil, fmt.Errorf("%w: %s is for %s", ErrExamClassMismatch, exam.Name, exam.ClassName)
	}

	students, err := s.store.LoadRoster(ctx, req.ClassName)
	if err != nil {
		return nil, err
	}
	if dups := promotion.DuplicateStudentIDs(students); len(dups) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateStudent, strings.Join(dups, ", "))
	}

	marks, err := s.store.LoadMarks(ctx, req.ClassName, req.ExamID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results := promotion.ComputePromotions(students, marks, promotion.Options{PassMarks: s.passMarks(req)})
	metrics.PromotionDuration.Observe(time.Since(start).Seconds())

	s.log.Debug("class ranked",
		zap.String("class", req.ClassName),
		zap.Stringer("exam_id", req.ExamID),
		zap.Int("students", len(students)),
		zap.Int("marks", len(marks)),
		zap.Duration("took", time.Since(start)))

	return results, nil
}

func (s *PromotionService) Preview(ctx context.Context, req PreviewRequest) (*Preview, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	results, err := s.rank(ctx, req)
	if err != nil {
		return nil, err
	}
	metrics.PromotionRuns.WithLabelValues("preview").Inc()

	return buildPreview(req, s.passMarks(req), results), nil
}

func buildPreview(req PreviewRequest, passMarks int, results []promotion.PromotionResult) *Preview {
	p := &Preview{
		ClassName: req.ClassName,
		ExamID:    req.ExamID,
		PassMarks: passMarks,
		Results:   make([]PreviewRow, len(results)),
	}
	for i, r := range results {
		display := promotion.DisplayStatus(r)
		p.Results[i] = PreviewRow{PromotionResult: r, DisplayStatus: display}
		p.Summary.Total++
		switch {
		case display == "Pending":
			p.Summary.Pending++
		case r.Status == promotion.StatusFailed:
			p.Summary.Failed++
		case r.Status == promotion.StatusManualPassed:
			p.Summary.Manual++
		default:
			p.Summary.Passed++
		}
	}
	return p
}

// Commit re-ranks the class, applies the operator's manual passes and moves
// every promotable student to the target class. Students without any
// recorded mark are held back, and the moved students are numbered 1..k in
// rank order.
func (s *PromotionService) Commit(ctx context.Context, req CommitRequest) (*models.PromotionLog, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	toClass := req.ToClass
	if toClass == "" {
		class, err := s.store.FindClass(ctx, req.ClassName)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrClassNotFound, req.ClassName)
			}
			return nil, err
		}
		toClass = class.NextClass
	}
	if toClass == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoTargetClass, req.ClassName)
	}

	ranked, err := s.rank(ctx, req.PreviewRequest)
	if err != nil {
		return nil, err
	}

	results, err := promotion.ApplyOverrides(ranked, req.Overrides)
	if err != nil {
		return nil, err
	}

	promoted, pending := splitPending(promotion.Promotable(results))
	if len(promoted) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNothingToPromote, req.ClassName)
	}
	if len(pending) > 0 {
		s.log.Warn("students without marks held back",
			zap.String("class", req.ClassName),
			zap.Strings("student_ids", pending))
	}

	entries := make([]models.PromotionLogEntry, len(promoted))
	moves := make([]models.StudentMove, len(promoted))
	manual := 0
	for i, r := range promoted {
		if r.Status == promotion.StatusManualPassed {
			manual++
		}
		entries[i] = models.PromotionLogEntry{
			StudentID:      r.StudentID,
			Name:           r.Name,
			OldRoll:        r.Roll,
			NewRoll:        *r.NewRoll,
			Status:         string(r.Status),
			TotalMarks:     r.TotalMarks,
			GPA:            r.GPA,
			FailedSubjects: r.FailedSubjects,
			OverrideReason: r.OverrideReason,
		}
		moves[i] = models.StudentMove{
			StudentCode: r.StudentID,
			ToClass:     toClass,
			NewRoll:     strconv.Itoa(*r.NewRoll),
		}
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode promotion entries: %w", err)
	}

	entry := &models.PromotionLog{
		FromClass:     req.ClassName,
		ToClass:       toClass,
		ExamID:        req.ExamID,
		PassMarks:     s.passMarks(req.PreviewRequest),
		PromotedCount: len(promoted),
		ManualCount:   manual,
		PerformedBy:   req.PerformedBy,
		Notes:         req.Notes,
		Entries:       datatypes.JSON(payload),
	}
	if err := s.store.SavePromotion(ctx, entry, moves); err != nil {
		return nil, err
	}

	metrics.PromotionRuns.WithLabelValues("commit").Inc()
	metrics.PromotionsCommitted.Add(float64(len(promoted)))
	for _, r := range results {
		metrics.PromotionStudents.WithLabelValues(string(r.Status)).Inc()
	}

	s.log.Info("promotion committed",
		zap.String("from_class", req.ClassName),
		zap.String("to_class", toClass),
		zap.Int("promoted", len(promoted)),
		zap.Int("manual", manual),
		zap.Int("held_back", len(results)-len(promoted)),
		zap.Int("pending", len(pending)),
		zap.String("performed_by", req.PerformedBy))

	// audit failures are logged by AuditService and do not undo the commit
	_ = s.audit.Log(ctx, req.PerformedBy, "PROMOTE", "promotion_log", entry.ID,
		models.JSONB{"class_name": req.ClassName},
		models.JSONB{"class_name": toClass, "promoted_count": len(promoted), "manual_count": manual, "pending": pending},
		req.ClientIP)

	return entry, nil
}

// splitPending separates students with no recorded marks from the promotable
// list and renumbers the rest 1..k in their current order.
func splitPending(promotable []promotion.PromotionResult) ([]promotion.PromotionResult, []string) {
	var promoted []promotion.PromotionResult
	var pending []string
	for _, r := range promotable {
		if r.SubjectCount == 0 {
			pending = append(pending, r.StudentID)
			continue
		}
		roll := len(promoted) + 1
		r.NewRoll = &roll
		promoted = append(promoted, r)
	}
	return promoted, pending
}

func (s *PromotionService) Logs(ctx context.Context, className string, limit int) ([]models.PromotionLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.store.ListPromotionLogs(ctx, className, limit)
}
