package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"sheetcli/internal/config"
	"sheetcli/internal/dataprocessing"
	apperrors "sheetcli/internal/errors"
	"sheetcli/internal/exporter"
	"sheetcli/internal/infrastructure"
	"sheetcli/internal/mailer"
	"sheetcli/pkg/contracts/domain"
)

// TableOpener loads a table from a file path or another source string.
type TableOpener interface {
	Open(ctx context.Context, source string) (*domain.Table, error)
}

// EmailRequest is the mail form: where to send the visible table.
type EmailRequest struct {
	Host    string `json:"smtp_server"`
	Port    int    `json:"port,omitempty"`
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject,omitempty"`
}

// SessionService is the controller for one loaded table. It is safe for
// concurrent use.
type SessionService struct {
	opener    TableOpener
	processor *dataprocessing.Processor
	sender    mailer.Sender
	mailCfg   config.MailConfig
	metrics   *infrastructure.PipelineMetrics
	logger    *slog.Logger

	mu          sync.RWMutex
	table       *domain.Table
	summary     domain.LoadSummary
	baseRows    [][]string
	view        domain.TableView
	sortReverse bool
	draft       EmailRequest
}

// NewSessionService creates a session with no table loaded. metrics may be nil.
func NewSessionService(opener TableOpener, processor *dataprocessing.Processor, sender mailer.Sender,
	mailCfg config.MailConfig, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &SessionService{
		opener:    opener,
		processor: processor,
		sender:    sender,
		mailCfg:   mailCfg,
		metrics:   metrics,
		logger:    infrastructure.WithComponent(logger, "session"),
	}
	s.draft = s.defaultDraft()
	return s
}

// Load reads source and replaces the current table with its filtered form.
// If the source fails to open or no column survives the filter, the
// previously loaded table stays in place and the error is returned.
func (s *SessionService) Load(ctx context.Context, source string) (*domain.LoadSummary, error) {
	return s.LoadAs(ctx, source, source)
}

// LoadAs is Load for a source that should be shown under another name, such
// as an upload saved to a temporary path. label becomes the Source of the
// summary and the view.
func (s *SessionService) LoadAs(ctx context.Context, source, label string) (*domain.LoadSummary, error) {
	if label == "" {
		label = source
	}
	ctx = infrastructure.EnsureTraceID(ctx)
	ctx, span := infrastructure.Tracer().Start(ctx, "session.Load")
	defer span.End()
	span.SetAttributes(attribute.String("source", label))

	start := time.Now()
	result, err := s.loadAndProcess(ctx, source, label)
	if err != nil {
		s.metrics.RecordLoad(ctx, time.Since(start), 0, string(errorTypeOf(err)))
		span.SetStatus(codes.Error, err.Error())
		if apperrors.SeverityOf(err) == apperrors.SeverityWarning {
			s.logger.WarnContext(ctx, "Load produced nothing to show",
				slog.String("source", label),
				slog.String("reason", apperrors.UserMessage(err)))
		} else {
			s.logger.ErrorContext(ctx, "Load failed",
				slog.String("source", label),
				slog.String("error", err.Error()))
		}
		return nil, err
	}
	s.metrics.RecordLoad(ctx, time.Since(start), len(result.Summary.DroppedColumns), "")

	s.mu.Lock()
	s.table = result.Table
	s.summary = result.Summary
	s.baseRows = result.View.Rows
	s.view = result.View
	s.view.Rows = cloneRows(result.View.Rows)
	s.sortReverse = false
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Table loaded",
		slog.String("source", label),
		slog.Int("rows", result.Summary.Rows),
		slog.Int("kept_columns", len(result.Summary.KeptColumns)),
		slog.Int("dropped_columns", len(result.Summary.DroppedColumns)))

	summary := result.Summary
	return &summary, nil
}

func (s *SessionService) loadAndProcess(ctx context.Context, source, label string) (*dataprocessing.Result, error) {
	if strings.TrimSpace(source) == "" {
		return nil, apperrors.NewFileOpenError("no file selected", nil)
	}
	table, err := s.opener.Open(ctx, source)
	if err != nil {
		if apperrors.TypeOf(err) == "" {
			err = apperrors.NewFileOpenError("failed to load "+label, err)
		}
		return nil, err
	}
	return s.processor.Process(table, label)
}

// Clear drops the loaded table and resets the mail form to its defaults.
func (s *SessionService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.table = nil
	s.summary = domain.LoadSummary{}
	s.baseRows = nil
	s.view = domain.TableView{}
	s.sortReverse = false
	s.draft = s.defaultDraft()

	s.logger.Info("Session cleared")
}

// Loaded reports whether a table is loaded.
func (s *SessionService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table != nil
}

// Summary returns the outcome of the last successful load.
func (s *SessionService) Summary() (domain.LoadSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.table == nil {
		return domain.LoadSummary{}, ErrNoTable
	}
	return s.summary, nil
}

// View returns a copy of the visible table.
func (s *SessionService) View() (domain.TableView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.table == nil {
		return domain.TableView{}, ErrNoTable
	}
	return s.snapshot(), nil
}

// ToggleSort sorts the visible rows by column. The direction alternates on
// every call regardless of which column is chosen: ascending first, then
// descending.
func (s *SessionService) ToggleSort(column string) (domain.TableView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := domain.SortAsc
	if s.sortReverse {
		order = domain.SortDesc
	}
	if err := s.sortLocked(column, order); err != nil {
		return domain.TableView{}, err
	}
	s.sortReverse = !s.sortReverse
	return s.snapshot(), nil
}

// Sort sorts the visible rows by column in the given order without touching
// the toggle. SortNone restores the loaded row order.
func (s *SessionService) Sort(column string, order domain.SortOrder) (domain.TableView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order == domain.SortNone {
		if s.table == nil {
			return domain.TableView{}, ErrNoTable
		}
		s.view.Rows = cloneRows(dataprocessing.FilterRows(s.baseRows, s.view.Query))
		s.view.SortColumn = ""
		s.view.SortOrder = domain.SortNone
		return s.snapshot(), nil
	}
	if err := s.sortLocked(column, order); err != nil {
		return domain.TableView{}, err
	}
	return s.snapshot(), nil
}

func (s *SessionService) sortLocked(column string, order domain.SortOrder) error {
	if s.table == nil {
		return ErrNoTable
	}
	idx := s.view.ColumnIndex(column)
	if idx < 0 {
		return errUnknownColumn(column)
	}
	if order != domain.SortAsc && order != domain.SortDesc {
		return apperrors.NewAppValidationError("sort order must be asc or desc").WithContext("order", string(order))
	}

	dataprocessing.SortRows(s.view.Rows, idx, order == domain.SortDesc)
	s.view.SortColumn = column
	s.view.SortOrder = order

	s.logger.Debug("Sorted view",
		slog.String("column", column),
		slog.String("order", string(order)))
	return nil
}

// Search narrows the visible rows to those with a cell containing term,
// case-insensitively. When nothing matches it returns an EMPTY_RESULT error
// and the visible rows are left as they were.
func (s *SessionService) Search(term string) (domain.TableView, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.ResetSearch()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table == nil {
		return domain.TableView{}, ErrNoTable
	}

	matched := dataprocessing.FilterRows(s.baseRows, term)
	if len(matched) == 0 {
		s.logger.Info("Search found no rows", slog.String("query", term))
		return domain.TableView{}, errNoMatches(term)
	}

	s.view.Rows = cloneRows(matched)
	s.view.Query = term
	s.reapplySortLocked()
	return s.snapshot(), nil
}

// ResetSearch shows every loaded row again, keeping the current sort.
func (s *SessionService) ResetSearch() (domain.TableView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table == nil {
		return domain.TableView{}, ErrNoTable
	}

	s.view.Rows = cloneRows(s.baseRows)
	s.view.Query = ""
	s.reapplySortLocked()
	return s.snapshot(), nil
}

func (s *SessionService) reapplySortLocked() {
	if s.view.SortColumn == "" {
		return
	}
	if idx := s.view.ColumnIndex(s.view.SortColumn); idx >= 0 {
		dataprocessing.SortRows(s.view.Rows, idx, s.view.SortOrder == domain.SortDesc)
	}
}

// EmailDraft returns the mail form as last used, or its defaults.
func (s *SessionService) EmailDraft() EmailRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

// SendEmail mails the visible table as aligned plain text. The password is
// used for this send only.
func (s *SessionService) SendEmail(ctx context.Context, req EmailRequest, password string) error {
	ctx = infrastructure.EnsureTraceID(ctx)
	ctx, span := infrastructure.Tracer().Start(ctx, "session.SendEmail")
	defer span.End()

	s.mu.RLock()
	loaded := s.table != nil
	view := s.snapshot()
	s.mu.RUnlock()

	if !loaded {
		return ErrNoTable
	}

	req.Host = strings.TrimSpace(req.Host)
	req.From = strings.TrimSpace(req.From)
	req.To = strings.TrimSpace(req.To)
	if req.Host == "" || req.From == "" || req.To == "" {
		return apperrors.NewAppValidationError("please fill in all email fields")
	}
	if req.Port == 0 {
		req.Port = s.mailCfg.Port
	}
	if req.Subject == "" {
		req.Subject = s.mailCfg.Subject
	}

	s.mu.Lock()
	s.draft = req
	s.mu.Unlock()

	msg := mailer.Message{
		Host:    req.Host,
		Port:    req.Port,
		From:    req.From,
		To:      mailer.ParseRecipients(req.To),
		Subject: req.Subject,
		Body:    exporter.RenderText(&view),
	}

	err := s.sender.Send(ctx, msg, password)
	s.metrics.RecordEmail(ctx, err == nil)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if apperrors.TypeOf(err) == "" {
			err = apperrors.NewEmailError("failed to send email", err)
		}
		return err
	}

	s.logger.InfoContext(ctx, "Table emailed",
		slog.Int("rows", len(view.Rows)),
		slog.Int("recipients", len(msg.To)))
	return nil
}

func (s *SessionService) defaultDraft() EmailRequest {
	host := s.mailCfg.Host
	if host == "" {
		host = config.DefaultSMTPHost
	}
	return EmailRequest{
		Host:    host,
		Port:    s.mailCfg.Port,
		From:    s.mailCfg.From,
		To:      s.mailCfg.To,
		Subject: s.mailCfg.Subject,
	}
}

// snapshot copies the view so callers never share its row slice.
func (s *SessionService) snapshot() domain.TableView {
	v := s.view
	v.Rows = cloneRows(s.view.Rows)
	v.Columns = append([]string(nil), s.view.Columns...)
	v.DateColumns = append([]string(nil), s.view.DateColumns...)
	return v
}

func cloneRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	copy(out, rows)
	return out
}

func errorTypeOf(err error) apperrors.ErrorType {
	if t := apperrors.TypeOf(err); t != "" {
		return t
	}
	return "UNKNOWN"
}
