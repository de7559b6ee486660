package adapters

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/de-tools/daily-report/pkg/models/api"
	"github.com/de-tools/daily-report/pkg/models/domain"
	"github.com/de-tools/daily-report/pkg/services/tracking"
)

var ErrInvalidSignature = errors.New("invalid signature encoding")

// MapExportRequestToSnapshot builds the report snapshot from an export request.
// Non-empty fields of identity take precedence over the ones in the request.
// Legacy tracking fields are migrated before the project views are resolved.
func MapExportRequestToSnapshot(req api.ExportRequest, identity domain.Identity) (domain.ReportSnapshot, error) {
	signature, err := DecodeSignature(req.Signature)
	if err != nil {
		return domain.ReportSnapshot{}, err
	}

	id := domain.Identity{
		Owner: firstNonEmpty(identity.Owner, req.Owner),
		Role:  firstNonEmpty(identity.Role, req.Role),
		Name:  firstNonEmpty(identity.Name, req.Name),
		Depot: firstNonEmpty(identity.Depot, req.Depot),
	}

	state := MapApiTrackingToDomain(req.Tracking)
	tracking.Migrate(&state)

	return domain.ReportSnapshot{
		Identity:   id,
		Date:       strings.TrimSpace(req.Date),
		Checklist:  mapChecklist(req.Checklist),
		Evaluation: mapEvaluation(req.Evaluation),
		Target:     req.Target,
		Projects:   tracking.View(state, id.Role),
		Schedule:   mapSchedule(req.Schedule),
		Signature:  signature,
	}, nil
}

// DecodeSignature accepts a data URL or bare standard base64. An empty input
// yields no signature.
func DecodeSignature(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, "data:") {
		header, payload, ok := strings.Cut(s, ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return nil, fmt.Errorf("%w: data URL must be base64", ErrInvalidSignature)
		}
		s = payload
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		if b, rawErr := base64.RawStdEncoding.DecodeString(s); rawErr == nil {
			return b, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return b, nil
}

func MapApiTrackingToDomain(t api.Tracking) domain.TrackingState {
	state := domain.TrackingState{
		Catalog:          make([]domain.CatalogProject, 0, len(t.Catalog)),
		Progress:         make(map[string]domain.ProjectProgress, len(t.Progress)),
		LegacyProgress:   t.LegacyProgress,
		LegacyNextAction: t.LegacyNextAction,
		LegacyBlocker:    t.LegacyBlocker,
		LegacyStepsDone:  t.LegacyStepsDone,
	}
	for _, p := range t.Catalog {
		state.Catalog = append(state.Catalog, domain.CatalogProject{
			ID:       p.ID,
			Name:     p.Name,
			Roles:    p.Roles,
			Steps:    p.Steps,
			Deadline: p.Deadline,
		})
	}
	for id, p := range t.Progress {
		state.Progress[id] = domain.ProjectProgress{
			StepsDone:  p.StepsDone,
			Progress:   p.Progress,
			NextAction: p.NextAction,
			Blocker:    p.Blocker,
			UpdatedAt:  p.UpdatedAt,
		}
	}
	return state
}

func MapDomainArchiveEntryToApi(e domain.ArchiveEntry) api.ArchiveEntry {
	return api.ArchiveEntry{
		ID:          e.ID,
		Filename:    e.Filename,
		Date:        e.DateISO,
		SubmittedAt: e.SubmittedAt,
		Storage:     string(e.StorageKind),
		Ref:         e.LocationRef,
	}
}

func MapDomainArchiveEntriesToApi(entries []domain.ArchiveEntry) []api.ArchiveEntry {
	res := make([]api.ArchiveEntry, 0, len(entries))
	for _, e := range entries {
		res = append(res, MapDomainArchiveEntryToApi(e))
	}
	return res
}

func mapChecklist(in map[string]map[string]api.ChecklistEntry) map[string]map[string]domain.ChecklistEntry {
	out := make(map[string]map[string]domain.ChecklistEntry, len(in))
	for section, rows := range in {
		mapped := make(map[string]domain.ChecklistEntry, len(rows))
		for key, e := range rows {
			mapped[key] = domain.ChecklistEntry{Value: e.Value, Note: e.Note, Fields: e.Fields}
		}
		out[section] = mapped
	}
	return out
}

func mapEvaluation(e api.Evaluation) domain.Evaluation {
	theme := domain.Theme(strings.ToLower(strings.TrimSpace(e.Theme)))
	if theme == "" {
		theme = domain.ThemeNone
	}
	return domain.Evaluation{
		Theme:  theme,
		People: e.People,
		Scores: e.Scores,
		Note:   e.Note,
	}
}

func mapSchedule(in []api.ScheduleEntry) []domain.ScheduleEntry {
	out := make([]domain.ScheduleEntry, 0, len(in))
	for _, e := range in {
		out = append(out, domain.ScheduleEntry{
			ID:                e.ID,
			Date:              e.Date,
			UpdatedAt:         e.UpdatedAt,
			Plan:              e.Plan,
			Realization:       e.Realization,
			PlanLocked:        e.PlanLocked,
			RealizationLocked: e.RealizationLocked,
		})
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
