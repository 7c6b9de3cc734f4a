// Package workflow drives one admin's review session: browse the queue,
// pick a report and an action, confirm with a reason, and submit.
package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/xyz-asif/partsflip/internal/features/moderation"
	"github.com/xyz-asif/partsflip/internal/pkg/pagination"
	"github.com/xyz-asif/partsflip/internal/pkg/validator"
	apperrors "github.com/xyz-asif/partsflip/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// State of a review session
type State int

const (
	Browsing State = iota
	ActionSelected
	Submitting
)

func (s State) String() string {
	switch s {
	case Browsing:
		return "browsing"
	case ActionSelected:
		return "action_selected"
	case Submitting:
		return "submitting"
	}
	return "unknown"
}

var (
	ErrInvalidTransition = errors.New("operation not allowed in the current state")
	ErrBusy              = errors.New("a request is already in flight")
	ErrUnknownReport     = errors.New("report is not on the current page")
)

// Query selects the page a session displays
type Query struct {
	Scope       moderation.Scope
	Status      moderation.Status
	ContentType moderation.ItemType
	Tag         string
	Sort        moderation.ReportSort
	Page        int
	Limit       int
}

// Action is what the session submits on confirm
type Action struct {
	ReportID         primitive.ObjectID
	Type             moderation.ActionType
	TargetStatus     moderation.Status
	Reason           string
	MuteDurationDays int
}

// Backend is the moderation API as seen by a session
type Backend interface {
	ListReports(ctx context.Context, q Query) (*moderation.ReportPage, error)
	Apply(ctx context.Context, a Action) (*moderation.Report, error)
}

// Selection is the report and action an admin is about to submit. Reason and
// MuteDurationDays survive a failed submission.
type Selection struct {
	Report           moderation.ReportView
	Action           moderation.ActionType
	TargetStatus     moderation.Status
	Reason           string
	MuteDurationDays int
}

// Session is safe for concurrent use; at most one selection or submission
// exists at a time.
type Session struct {
	backend     Backend
	minMuteDays int
	maxMuteDays int

	mu         sync.Mutex
	state      State
	loading    bool
	query      Query
	reports    []moderation.ReportView
	pagination pagination.Pagination
	selected   *Selection
	err        error
}

func NewSession(backend Backend, minMuteDays, maxMuteDays int) *Session {
	return &Session{
		backend:     backend,
		minMuteDays: minMuteDays,
		maxMuteDays: maxMuteDays,
		state:       Browsing,
	}
}

// Load fetches a page and replaces the displayed reports
func (s *Session) Load(ctx context.Context, q Query) error {
	s.mu.Lock()
	if s.loading || s.state == Submitting {
		s.mu.Unlock()
		return ErrBusy
	}
	if s.state != Browsing {
		s.mu.Unlock()
		return ErrInvalidTransition
	}
	if q.Scope == "" {
		q.Scope = moderation.ScopeOpen
	}
	s.loading = true
	s.mu.Unlock()

	page, err := s.backend.ListReports(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = err
		return err
	}
	s.query = q
	s.reports = page.Items
	s.pagination = page.Pagination
	s.err = nil
	return nil
}

// Select opens the action dialog for a report on the current page
func (s *Session) Select(reportID primitive.ObjectID, action moderation.ActionType, target moderation.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loading || s.state == Submitting {
		return ErrBusy
	}
	if s.state != Browsing {
		return ErrInvalidTransition
	}
	if !action.Valid() {
		return apperrors.Validation("unknown action %q", action)
	}

	for _, r := range s.reports {
		if r.ID == reportID {
			s.selected = &Selection{Report: r, Action: action, TargetStatus: target}
			s.state = ActionSelected
			s.err = nil
			return nil
		}
	}
	return ErrUnknownReport
}

// Cancel closes the dialog without contacting the backend
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case Submitting:
		return ErrBusy
	case Browsing:
		return ErrInvalidTransition
	}
	s.selected = nil
	s.err = nil
	s.state = Browsing
	return nil
}

// Confirm submits the selected action. On success the report leaves the
// displayed open queue; on failure the dialog stays open with the error and
// the typed reason.
func (s *Session) Confirm(ctx context.Context, reason string, muteDurationDays int) (*moderation.Report, error) {
	s.mu.Lock()
	switch s.state {
	case Submitting:
		s.mu.Unlock()
		return nil, ErrBusy
	case Browsing:
		s.mu.Unlock()
		return nil, ErrInvalidTransition
	}

	sel := s.selected
	sel.Reason = reason
	sel.MuteDurationDays = muteDurationDays

	if err := s.validate(sel); err != nil {
		s.err = err
		s.mu.Unlock()
		return nil, err
	}

	s.state = Submitting
	s.err = nil
	action := Action{
		ReportID:         sel.Report.ID,
		Type:             sel.Action,
		TargetStatus:     sel.TargetStatus,
		Reason:           strings.TrimSpace(reason),
		MuteDurationDays: muteDurationDays,
	}
	s.mu.Unlock()

	report, err := s.backend.Apply(ctx, action)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = ActionSelected
		s.err = err
		return nil, err
	}

	s.settle(report)
	s.selected = nil
	s.state = Browsing
	return report, nil
}

func (s *Session) validate(sel *Selection) error {
	if validator.IsBlank(sel.Reason) {
		return apperrors.Validation("reason is required")
	}
	if sel.Action == moderation.ActionDeleteItemMuteUser &&
		(sel.MuteDurationDays < s.minMuteDays || sel.MuteDurationDays > s.maxMuteDays) {
		return apperrors.Validation("muteDurationDays must be between %d and %d", s.minMuteDays, s.maxMuteDays)
	}
	return nil
}

// settle reflects a successful action in the displayed page
func (s *Session) settle(report *moderation.Report) {
	for i, r := range s.reports {
		if r.ID != report.ID {
			continue
		}
		if s.query.Scope == moderation.ScopeOpen && report.Status.IsTerminal() {
			s.reports = append(s.reports[:i:i], s.reports[i+1:]...)
			if s.pagination.Total > 0 {
				s.pagination.Total--
			}
			return
		}
		updated := *report
		s.reports[i].Report = updated
		s.reports[i].StatusLabel = updated.Label()
		return
	}
}

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reports returns a copy of the displayed reports
func (s *Session) Reports() []moderation.ReportView {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]moderation.ReportView, len(s.reports))
	copy(out, s.reports)
	return out
}

// Pagination returns the metadata of the displayed page
func (s *Session) Pagination() pagination.Pagination {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pagination
}

// Query returns the query of the displayed page
func (s *Session) Query() Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Selected returns the open selection, if any
func (s *Session) Selected() (Selection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return Selection{}, false
	}
	return *s.selected, true
}

// Err returns the error of the last failed operation
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
