package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/mkamau/cybercase-backend/internal/domain"
)

func assignModels() []any {
	return []any{&domain.Officer{}, &domain.Complaint{}, &domain.CaseAssignment{}}
}

func TestCreateAndGetComplaint(t *testing.T) {
	db := newTestDB(t, assignModels()...)

	c, err := CreateComplaint(context.Background(), db, &domain.Complaint{
		ComplaintNumber: "CC-100", Title: "Phishing report",
	})
	if err != nil {
		t.Fatalf("CreateComplaint: %v", err)
	}
	if c.ID == "" || c.Status != domain.ComplaintStatusOpen {
		t.Fatalf("unexpected complaint: %+v", c)
	}

	got, err := GetComplaint(context.Background(), db, c.ID)
	if err != nil {
		t.Fatalf("GetComplaint: %v", err)
	}
	if got.ComplaintNumber != "CC-100" {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestUpdateComplaintStatus_ReturnsPrevious(t *testing.T) {
	db := newTestDB(t, assignModels()...)
	c, _ := CreateComplaint(context.Background(), db, &domain.Complaint{
		ComplaintNumber: "CC-100", Title: "t",
	})

	prev, err := UpdateComplaintStatus(context.Background(), db, c.ID, domain.ComplaintStatusResolved)
	if err != nil {
		t.Fatalf("UpdateComplaintStatus: %v", err)
	}
	if prev != domain.ComplaintStatusOpen {
		t.Fatalf("previous = %q, want open", prev)
	}

	got, _ := GetComplaint(context.Background(), db, c.ID)
	if got.Status != domain.ComplaintStatusResolved {
		t.Fatalf("status = %q", got.Status)
	}

	if _, err := UpdateComplaintStatus(context.Background(), db, "missing", domain.ComplaintStatusClosed); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAssignComplaint_Success(t *testing.T) {
	db := newTestDB(t, assignModels()...)
	off := seedOfficer(t, db, domain.Officer{Name: "Jane Wanjiku"})
	c, _ := CreateComplaint(context.Background(), db, &domain.Complaint{
		ComplaintNumber: "CC-100", Title: "t",
	})

	out, err := AssignComplaint(context.Background(), db, c.ID, off.ID, "adm-1", "note")
	if err != nil {
		t.Fatalf("AssignComplaint: %v", err)
	}
	if !out.Success {
		t.Fatalf("rejected: %q", out.Reason)
	}
	if out.AssignmentID == "" || out.OfficerName != "Jane Wanjiku" || out.ComplaintNumber != "CC-100" {
		t.Fatalf("outcome = %+v", out)
	}

	// Complaint flipped and linked.
	gc, _ := GetComplaint(context.Background(), db, c.ID)
	if gc.Status != domain.ComplaintStatusAssigned {
		t.Fatalf("complaint status = %q", gc.Status)
	}
	if gc.AssignedOfficerID == nil || *gc.AssignedOfficerID != off.ID {
		t.Fatalf("assigned officer = %v", gc.AssignedOfficerID)
	}

	// Case counter bumped.
	go2, _ := GetOfficer(context.Background(), db, off.ID)
	if go2.ActiveCases != 1 {
		t.Fatalf("active cases = %d", go2.ActiveCases)
	}

	// Audit row is readable for replays.
	rep, err := GetAssignment(context.Background(), db, out.AssignmentID)
	if err != nil {
		t.Fatalf("GetAssignment: %v", err)
	}
	if rep.OfficerName != "Jane Wanjiku" || rep.ComplaintNumber != "CC-100" {
		t.Fatalf("replay outcome = %+v", rep)
	}
}

func TestAssignComplaint_Rejections(t *testing.T) {
	db := newTestDB(t, assignModels()...)
	available := seedOfficer(t, db, domain.Officer{Name: "Avail"})
	busy := seedOfficer(t, db, domain.Officer{Name: "Busy"})
	if err := db.Model(&domain.Officer{}).Where("id = ?", busy.ID).Update("available", false).Error; err != nil {
		t.Fatalf("mark unavailable: %v", err)
	}

	open, _ := CreateComplaint(context.Background(), db, &domain.Complaint{
		ComplaintNumber: "CC-1", Title: "t",
	})
	closed, _ := CreateComplaint(context.Background(), db, &domain.Complaint{
		ComplaintNumber: "CC-2", Title: "t", Status: domain.ComplaintStatusClosed,
	})

	cases := map[string]struct {
		complaintID string
		officerID   string
		wantReason  string
	}{
		"missing complaint":   {"nope", available.ID, "Complaint not found"},
		"missing officer":     {open.ID, "nope", "Officer not found"},
		"closed case":         {closed.ID, available.ID, "Case already closed"},
		"officer unavailable": {open.ID, busy.ID, "Officer unavailable"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			out, err := AssignComplaint(context.Background(), db, tc.complaintID, tc.officerID, "adm-1", "n")
			if err != nil {
				t.Fatalf("rejection must not be an error: %v", err)
			}
			if out.Success || out.Reason != tc.wantReason {
				t.Fatalf("outcome = %+v, want reason %q", out, tc.wantReason)
			}
		})
	}

	// No partial writes: the open complaint is untouched and counters are zero.
	gc, _ := GetComplaint(context.Background(), db, open.ID)
	if gc.Status != domain.ComplaintStatusOpen || gc.AssignedOfficerID != nil {
		t.Fatalf("complaint mutated by rejected assignment: %+v", gc)
	}
	for _, id := range []string{available.ID, busy.ID} {
		o, _ := GetOfficer(context.Background(), db, id)
		if o.ActiveCases != 0 {
			t.Fatalf("active cases = %d for %s", o.ActiveCases, o.Name)
		}
	}
	var audits int64
	db.Model(&domain.CaseAssignment{}).Count(&audits)
	if audits != 0 {
		t.Fatalf("audit rows = %d after rejections", audits)
	}
}
