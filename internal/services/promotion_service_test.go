package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/school-system/promotion/internal/models"
	"github.com/school-system/promotion/internal/promotion"
	"go.uber.org/zap"
)

func newTestPromotionService(store *memStore) *PromotionService {
	log := zap.NewNop()
	return NewPromotionService(store, NewAuditService(store, log), log, 33)
}

func TestPromotionService_Preview(t *testing.T) {
	store := newMemStore()
	examID := seedClass6(store)
	svc := newTestPromotionService(store)

	preview, err := svc.Preview(context.Background(), PreviewRequest{ClassName: "Class 6", ExamID: examID})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := []string{"S003", "S001", "S004", "S002"}
	for i, id := range expected {
		if preview.Results[i].StudentID != id {
			t.Fatalf("Position %d: expected %s, got %s", i, id, preview.Results[i].StudentID)
		}
	}

	if preview.Summary != (PreviewSummary{Total: 4, Passed: 2, Failed: 1, Pending: 1}) {
		t.Errorf("Unexpected summary %+v", preview.Summary)
	}
	if preview.Results[2].DisplayStatus != "Pending" || preview.Results[2].Status != promotion.StatusPassed {
		t.Errorf("Expected raw passed with Pending display for S004, got %s/%s", preview.Results[2].Status, preview.Results[2].DisplayStatus)
	}
	if preview.PassMarks != 33 {
		t.Errorf("Expected pass marks 33, got %d", preview.PassMarks)
	}
	if len(store.logs) != 0 || len(store.moves) != 0 {
		t.Errorf("Preview must not persist anything")
	}
}

func TestPromotionService_PreviewPassMarks(t *testing.T) {
	store := newMemStore()
	examID := seedClass6(store)
	svc := newTestPromotionService(store)

	preview, err := svc.Preview(context.Background(), PreviewRequest{ClassName: "Class 6", ExamID: examID, PassMarks: intp(75)})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if preview.Summary.Failed != 2 {
		t.Errorf("Expected S001 and S002 to fail at 75, got %+v", preview.Summary)
	}
}

func TestPromotionService_Commit(t *testing.T) {
	store := newMemStore()
	examID := seedClass6(store)
	svc := newTestPromotionService(store)

	entry, err := svc.Commit(context.Background(), CommitRequest{
		PreviewRequest: PreviewRequest{ClassName: "Class 6", ExamID: examID},
		PerformedBy:    "headmaster@school.test",
		Overrides:      []promotion.Override{{StudentID: "S002", Reason: "re-sit passed"}},
		ClientIP:       "10.0.0.1",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if entry.ToClass != "Class 7" || entry.PromotedCount != 3 || entry.ManualCount != 1 {
		t.Errorf("Unexpected log %+v", entry)
	}

	// S004 has no marks: held back, and S002 takes roll 3 instead of 4
	expected := []models.StudentMove{
		{StudentCode: "S003", ToClass: "Class 7", NewRoll: "1"},
		{StudentCode: "S001", ToClass: "Class 7", NewRoll: "2"},
		{StudentCode: "S002", ToClass: "Class 7", NewRoll: "3"},
	}
	if len(store.moves) != len(expected) {
		t.Fatalf("Expected %d moves, got %d", len(expected), len(store.moves))
	}
	for i := range expected {
		if store.moves[i] != expected[i] {
			t.Errorf("Move %d: expected %+v, got %+v", i, expected[i], store.moves[i])
		}
	}

	var entries []models.PromotionLogEntry
	if err := json.Unmarshal(store.logs[0].Entries, &entries); err != nil {
		t.Fatalf("Entries not valid JSON: %v", err)
	}
	if entries[2].Status != "manual_passed" || entries[2].OverrideReason != "re-sit passed" || entries[2].OldRoll != "2" || entries[2].NewRoll != 3 {
		t.Errorf("Unexpected manual entry %+v", entries[2])
	}
	for _, e := range entries {
		if e.StudentID == "S004" {
			t.Errorf("Student without marks must not be promoted")
		}
	}

	if len(store.audits) != 1 {
		t.Fatalf("Expected one audit row, got %d", len(store.audits))
	}
	audit := store.audits[0]
	if audit.Actor != "headmaster@school.test" || audit.Action != "PROMOTE" || audit.ResourceID != entry.ID || audit.IP != "10.0.0.1" {
		t.Errorf("Unexpected audit row %+v", audit)
	}
	if pending, ok := audit.After["pending"].([]string); !ok || len(pending) != 1 || pending[0] != "S004" {
		t.Errorf("Expected S004 recorded as pending, got %v", audit.After["pending"])
	}
}

func TestPromotionService_CommitHoldsBackPending(t *testing.T) {
	store := newMemStore()
	examID := seedClass6(store)
	svc := newTestPromotionService(store)

	entry, err := svc.Commit(context.Background(), CommitRequest{
		PreviewRequest: PreviewRequest{ClassName: "Class 6", ExamID: examID},
		PerformedBy:    "office",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if entry.PromotedCount != 2 {
		t.Errorf("Expected 2 promoted, got %d", entry.PromotedCount)
	}

	expected := []models.StudentMove{
		{StudentCode: "S003", ToClass: "Class 7", NewRoll: "1"},
		{StudentCode: "S001", ToClass: "Class 7", NewRoll: "2"},
	}
	if len(store.moves) != len(expected) {
		t.Fatalf("Expected %d moves, got %+v", len(expected), store.moves)
	}
	for i := range expected {
		if store.moves[i] != expected[i] {
			t.Errorf("Move %d: expected %+v, got %+v", i, expected[i], store.moves[i])
		}
	}
}

func TestPromotionService_CommitRenumbersAroundPending(t *testing.T) {
	store := newMemStore()
	examID := seedClass6(store)
	// Emon scores 0 in a subject with pass mark 0: passed, tied with S004 on
	// total and ranked after it by roster order
	store.rosters["Class 6"] = append(store.rosters["Class 6"], rec("S005", "Emon", "5", "Class 6"))
	store.marks[examID] = append(store.marks[examID],
		promotion.MarkEntry{StudentID: "S005", Subject: "Drawing", MarksObtained: intp(0), PassMarks: intp(0)})
	svc := newTestPromotionService(store)

	preview, err := svc.Preview(context.Background(), PreviewRequest{ClassName: "Class 6", ExamID: examID})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if preview.Results[2].StudentID != "S004" || preview.Results[3].StudentID != "S005" || *preview.Results[3].NewRoll != 4 {
		t.Fatalf("Unexpected preview order %+v", preview.Results)
	}

	if _, err := svc.Commit(context.Background(), CommitRequest{
		PreviewRequest: PreviewRequest{ClassName: "Class 6", ExamID: examID},
		PerformedBy:    "office",
	}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	rolls := map[string]string{}
	for _, m := range store.moves {
		rolls[m.StudentCode] = m.NewRoll
	}
	if len(rolls) != 3 || rolls["S003"] != "1" || rolls["S001"] != "2" || rolls["S005"] != "3" {
		t.Errorf("Expected contiguous rolls 1..3, got %v", rolls)
	}
}

func TestPromotionService_CommitExplicitTarget(t *testing.T) {
	store := newMemStore()
	examID := seedClass6(store)
	store.rosters["Class 6"] = store.rosters["Class 6"][:3]
	store.classes["Class 6"].NextClass = ""
	svc := newTestPromotionService(store)

	entry, err := svc.Commit(context.Background(), CommitRequest{
		PreviewRequest: PreviewRequest{ClassName: "Class 6", ExamID: examID},
		ToClass:        "Class 7 (Morning)",
		PerformedBy:    "office",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if entry.ToClass != "Class 7 (Morning)" || entry.PromotedCount != 2 {
		t.Errorf("Unexpected log %+v", entry)
	}
}

func TestPromotionService_CommitErrors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(m *memStore, examID uuid.UUID) CommitRequest
		expected error
	}{
		{
			name: "Only pending and failed students",
			setup: func(m *memStore, examID uuid.UUID) CommitRequest {
				m.rosters["Class 6"] = []promotion.StudentRecord{
					rec("S002", "Bina", "2", "Class 6"),
					rec("S004", "Dipu", "4", "Class 6"),
				}
				return CommitRequest{PreviewRequest: PreviewRequest{ClassName: "Class 6", ExamID: examID}, PerformedBy: "x"}
			},
			expected: ErrNothingToPromote,
		},
		{
			name: "Unknown exam",
			setup: func(m *memStore, examID uuid.UUID) CommitRequest {
				return CommitRequest{PreviewRequest: PreviewRequest{ClassName: "Class 6", ExamID: uuid.New()}, PerformedBy: "x"}
			},
			expected: ErrExamNotFound,
		},
		{
			name: "Exam of another class",
			setup: func(m *memStore, examID uuid.UUID) CommitRequest {
				other := m.addExam("Class 8")
				return CommitRequest{PreviewRequest: PreviewRequest{ClassName: "Class 6", ExamID: other}, PerformedBy: "x"}
			},
			expected: ErrExamClassMismatch,
		},
		{
			name: "Duplicate roster ids",
			setup: func(m *memStore, examID uuid.UUID) CommitRequest {
				m.rosters["Class 6"] = append(m.rosters["Class 6"], rec("S001", "Arif Again", "9", "Class 6"))
				return CommitRequest{PreviewRequest: PreviewRequest{ClassName: "Class 6", ExamID: examID}, PerformedBy: "x"}
			},
			expected: ErrDuplicateStudent,
		},
		{
			name: "Override of passed student",
			setup: func(m *memStore, examID uuid.UUID) CommitRequest {
				m.rosters["Class 6"] = m.rosters["Class 6"][:3]
				return CommitRequest{
					PreviewRequest: PreviewRequest{ClassName: "Class 6", ExamID: examID},
					PerformedBy:    "x",
					Overrides:      []promotion.Override{{StudentID: "S001", Reason: "x"}},
				}
			},
			expected: promotion.ErrNotFailed,
		},
		{
			name: "Override of unknown student",
			setup: func(m *memStore, examID uuid.UUID) CommitRequest {
				m.rosters["Class 6"] = m.rosters["Class 6"][:3]
				return CommitRequest{
					PreviewRequest: PreviewRequest{ClassName: "Class 6", ExamID: examID},
					PerformedBy:    "x",
					Overrides:      []promotion.Override{{StudentID: "S999", Reason: "x"}},
				}
			},
			expected: promotion.ErrUnknownStudent,
		},
		{
			name: "No target class",
			setup: func(m *memStore, examID uuid.UUID) CommitRequest {
				m.classes["Class 6"].NextClass = ""
				return CommitRequest{PreviewRequest: PreviewRequest{ClassName: "Class 6", ExamID: examID}, PerformedBy: "x"}
			},
			expected: ErrNoTargetClass,
		},
		{
			name: "Unknown class",
			setup: func(m *memStore, examID uuid.UUID) CommitRequest {
				delete(m.classes, "Class 6")
				return CommitRequest{PreviewRequest: PreviewRequest{ClassName: "Class 6", ExamID: examID}, PerformedBy: "x"}
			},
			expected: ErrClassNotFound,
		},
		{
			name: "Nothing to promote",
			setup: func(m *memStore, examID uuid.UUID) CommitRequest {
				m.rosters["Class 6"] = []promotion.StudentRecord{rec("S002", "Bina", "2", "Class 6")}
				return CommitRequest{PreviewRequest: PreviewRequest{ClassName: "Class 6", ExamID: examID}, PerformedBy: "x"}
			},
			expected: ErrNothingToPromote,
		},
		{
			name: "Store failure",
			setup: func(m *memStore, examID uuid.UUID) CommitRequest {
				m.rosters["Class 6"] = m.rosters["Class 6"][:3]
				m.saveErr = errBoom
				return CommitRequest{PreviewRequest: PreviewRequest{ClassName: "Class 6", ExamID: examID}, PerformedBy: "x"}
			},
			expected: errBoom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			examID := seedClass6(store)
			req := tt.setup(store, examID)
			svc := newTestPromotionService(store)

			_, err := svc.Commit(context.Background(), req)
			if !errors.Is(err, tt.expected) {
				t.Fatalf("Expected %v, got %v", tt.expected, err)
			}
			if len(store.moves) != 0 || len(store.audits) != 0 {
				t.Errorf("Failed commit must not move students or write audit rows")
			}
		})
	}
}

func TestPromotionService_Validation(t *testing.T) {
	store := newMemStore()
	examID := seedClass6(store)
	svc := newTestPromotionService(store)

	tests := []struct {
		name string
		req  CommitRequest
	}{
		{"Missing performer", CommitRequest{PreviewRequest: PreviewRequest{ClassName: "Class 6", ExamID: examID}}},
		{"Missing class", CommitRequest{PreviewRequest: PreviewRequest{ExamID: examID}, PerformedBy: "x"}},
		{"Missing exam", CommitRequest{PreviewRequest: PreviewRequest{ClassName: "Class 6"}, PerformedBy: "x"}},
		{"Pass marks out of range", CommitRequest{PreviewRequest: PreviewRequest{ClassName: "Class 6", ExamID: examID, PassMarks: intp(0)}, PerformedBy: "x"}},
		{"Override without reason", CommitRequest{
			PreviewRequest: PreviewRequest{ClassName: "Class 6", ExamID: examID},
			PerformedBy:    "x",
			Overrides:      []promotion.Override{{StudentID: "S002"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Commit(context.Background(), tt.req)
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("Expected validation errors, got %v", err)
			}
		})
	}
}

func TestPromotionService_Logs(t *testing.T) {
	store := newMemStore()
	store.logs = []models.PromotionLog{
		{FromClass: "Class 6", ToClass: "Class 7"},
		{FromClass: "Class 7", ToClass: "Class 8"},
		{FromClass: "Class 6", ToClass: "Class 7"},
	}
	svc := newTestPromotionService(store)

	logs, err := svc.Logs(context.Background(), "Class 6", 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(logs) != 2 {
		t.Errorf("Expected 2 logs for Class 6, got %d", len(logs))
	}
}
