package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carebridge/clinic-backend/internal/schedule"
)

// SlotRecord is a raw availability row as stored, with every field the write
// path is supposed to guarantee left nullable so the scan can report what is
// actually missing.
type SlotRecord struct {
	ID        uuid.UUID
	DoctorID  *uuid.UUID
	Date      *string
	StartTime *string
	EndTime   *string
	Status    *string
	IsBooked  bool
	BookedBy  *uuid.UUID
}

// ProfilePair joins a role-specific profile row with its identity record.
// Identity fields are nil when the profile is orphaned.
type ProfilePair struct {
	UID                uuid.UUID
	Role               string
	UserDisplayName    *string
	UserEmail          *string
	ProfileDisplayName string
	ProfileEmail       string
	UserExists         bool
}

// Source provides the raw reads and repair writes the auditor needs.
type Source interface {
	ListSlotRecords(ctx context.Context) ([]SlotRecord, error)
	SetSlotStatus(ctx context.Context, id uuid.UUID, status string, isBooked bool) error
	ListProfilePairs(ctx context.Context) ([]ProfilePair, error)
}

type SlotIssue struct {
	SlotID uuid.UUID
	Reason string
}

type SlotReport struct {
	Valid   int
	Invalid int
	Errors  []SlotIssue
}

type DivergenceKind string

const (
	DivergenceDisplayName DivergenceKind = "display_name_mismatch"
	DivergenceEmail       DivergenceKind = "email_mismatch"
	DivergenceOrphan      DivergenceKind = "orphaned_profile"
)

type Divergence struct {
	UID           uuid.UUID
	Role          string
	Kind          DivergenceKind
	IdentityValue string
	ProfileValue  string
}

// Auditor is the advisory repair pass over the duplicated representations.
// Nothing here is enforced at write time; it exists because the mirrored
// fields can drift through out-of-band writes.
type Auditor struct {
	src Source
	log zerolog.Logger
}

func NewAuditor(src Source, log zerolog.Logger) *Auditor {
	return &Auditor{src: src, log: log}
}

// ScanSlots validates every stored slot: required fields present, status
// inside the closed set, and the is_booked mirror agreeing with status.
func (a *Auditor) ScanSlots(ctx context.Context) (*SlotReport, error) {
	records, err := a.src.ListSlotRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}

	report := &SlotReport{}
	for _, rec := range records {
		issues := slotIssues(rec)
		if len(issues) == 0 {
			report.Valid++
			continue
		}
		report.Invalid++
		report.Errors = append(report.Errors, issues...)
	}

	a.log.Info().Int("valid", report.Valid).Int("invalid", report.Invalid).Msg("slot scan complete")
	return report, nil
}

func slotIssues(rec SlotRecord) []SlotIssue {
	var issues []SlotIssue
	add := func(reason string) {
		issues = append(issues, SlotIssue{SlotID: rec.ID, Reason: reason})
	}

	if rec.DoctorID == nil {
		add("missing doctor_id")
	}
	if rec.Date == nil || *rec.Date == "" {
		add("missing date")
	}
	if rec.StartTime == nil || *rec.StartTime == "" {
		add("missing start_time")
	}
	if rec.EndTime == nil || *rec.EndTime == "" {
		add("missing end_time")
	}

	switch {
	case rec.Status == nil || *rec.Status == "":
		add("missing status")
	case !schedule.SlotStatus(*rec.Status).Valid():
		add(fmt.Sprintf("invalid status %q", *rec.Status))
	case *rec.Status == string(schedule.SlotBooked) && !rec.IsBooked:
		add("status is booked but is_booked is false")
	case *rec.Status != string(schedule.SlotBooked) && rec.IsBooked:
		add(fmt.Sprintf("status is %s but is_booked is true", *rec.Status))
	}

	return issues
}

// FixMissingStatusFields applies the derivation rule to every slot whose
// status is absent and persists the result. Returns the number of rows fixed.
func (a *Auditor) FixMissingStatusFields(ctx context.Context) (int, error) {
	records, err := a.src.ListSlotRecords(ctx)
	if err != nil {
		return 0, fmt.Errorf("list slots: %w", err)
	}

	fixed := 0
	for _, rec := range records {
		if rec.Status != nil && *rec.Status != "" {
			continue
		}

		derived := schedule.RepairStatus(schedule.Slot{
			ID:       rec.ID,
			IsBooked: rec.IsBooked,
			BookedBy: rec.BookedBy,
		})

		if err := a.src.SetSlotStatus(ctx, rec.ID, string(derived.Status), derived.IsBooked); err != nil {
			return fixed, fmt.Errorf("fix slot %s: %w", rec.ID, err)
		}
		a.log.Info().Str("slot_id", rec.ID.String()).Str("status", string(derived.Status)).Msg("repaired missing status")
		fixed++
	}

	return fixed, nil
}

// AuditProfileDivergence compares the mirrored display-name and email fields
// between the identity collection and the role-specific profile rows.
func (a *Auditor) AuditProfileDivergence(ctx context.Context) ([]Divergence, error) {
	pairs, err := a.src.ListProfilePairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profile pairs: %w", err)
	}

	var reports []Divergence
	for _, p := range pairs {
		if !p.UserExists {
			reports = append(reports, Divergence{
				UID:          p.UID,
				Role:         p.Role,
				Kind:         DivergenceOrphan,
				ProfileValue: p.ProfileDisplayName,
			})
			continue
		}

		userName := ""
		if p.UserDisplayName != nil {
			userName = *p.UserDisplayName
		}
		if userName != p.ProfileDisplayName {
			reports = append(reports, Divergence{
				UID:           p.UID,
				Role:          p.Role,
				Kind:          DivergenceDisplayName,
				IdentityValue: userName,
				ProfileValue:  p.ProfileDisplayName,
			})
		}

		userEmail := ""
		if p.UserEmail != nil {
			userEmail = *p.UserEmail
		}
		if userEmail != p.ProfileEmail {
			reports = append(reports, Divergence{
				UID:           p.UID,
				Role:          p.Role,
				Kind:          DivergenceEmail,
				IdentityValue: userEmail,
				ProfileValue:  p.ProfileEmail,
			})
		}
	}

	a.log.Info().Int("divergences", len(reports)).Msg("profile divergence audit complete")
	return reports, nil
}
