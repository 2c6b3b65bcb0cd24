package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetcli/internal/config"
	"sheetcli/internal/dataprocessing"
	apperrors "sheetcli/internal/errors"
	"sheetcli/internal/mailer"
	"sheetcli/pkg/contracts/domain"
)

// fakeOpener serves prebuilt tables by source name.
type fakeOpener struct {
	tables map[string]*domain.Table
	err    error
}

func (f *fakeOpener) Open(_ context.Context, source string) (*domain.Table, error) {
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.tables[source]
	if !ok {
		return nil, apperrors.NewFileOpenError("failed to load "+source, errors.New("no such file"))
	}
	return t, nil
}

// fakeSender records sent messages.
type fakeSender struct {
	sent      []mailer.Message
	passwords []string
	err       error
}

func (f *fakeSender) Send(_ context.Context, msg mailer.Message, password string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	f.passwords = append(f.passwords, password)
	return nil
}

func mustTable(t *testing.T, header []string, rows [][]domain.Cell) *domain.Table {
	t.Helper()
	table, err := domain.NewTable(header, rows)
	require.NoError(t, err)
	return table
}

// fruitTable has three dense columns and one sparse one.
func fruitTable(t *testing.T) *domain.Table {
	return mustTable(t, []string{"Fruit", "Qty", "Picked", "Notes"}, [][]domain.Cell{
		{domain.TextCell("pear"), domain.NumberCell(3), domain.TextCell("2024-02-10"), domain.MissingCell()},
		{domain.TextCell("Apple"), domain.NumberCell(10), domain.TextCell("2024-01-05"), domain.MissingCell()},
		{domain.TextCell("banana"), domain.NumberCell(2), domain.TextCell("2024-03-01"), domain.TextCell("ripe")},
	})
}

func sparseTable(t *testing.T) *domain.Table {
	return mustTable(t, []string{"Empty"}, [][]domain.Cell{
		{domain.MissingCell()},
		{domain.TextCell("")},
		{domain.MissingCell()},
	})
}

func newTestSession(t *testing.T, sender mailer.Sender) *SessionService {
	t.Helper()
	opener := &fakeOpener{tables: map[string]*domain.Table{
		"fruit.xlsx":  fruitTable(t),
		"sparse.xlsx": sparseTable(t),
	}}
	if sender == nil {
		sender = &fakeSender{}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSessionService(opener, dataprocessing.NewProcessor(2, 180), sender, config.Default().Mail, nil, logger)
}

func column(view domain.TableView, name string) []string {
	idx := view.ColumnIndex(name)
	out := make([]string, len(view.Rows))
	for i, row := range view.Rows {
		out[i] = row[idx]
	}
	return out
}

func TestSessionService_Load(t *testing.T) {
	s := newTestSession(t, nil)
	assert.False(t, s.Loaded())

	summary, err := s.Load(context.Background(), "fruit.xlsx")
	require.NoError(t, err)

	assert.Equal(t, []string{"Fruit", "Qty", "Picked"}, summary.KeptColumns)
	assert.Equal(t, []string{"Notes"}, summary.DroppedColumns)
	assert.Equal(t, []string{"Picked"}, summary.DateColumns)
	assert.Equal(t, 3, summary.Rows)
	assert.True(t, s.Loaded())

	view, err := s.View()
	require.NoError(t, err)
	assert.Equal(t, []string{"Feb-10", "Jan-05", "Mar-01"}, column(view, "Picked"))
	assert.Equal(t, []string{"3", "10", "2"}, column(view, "Qty"))
}

func TestSessionService_LoadAsLabelsTheView(t *testing.T) {
	s := newTestSession(t, nil)

	summary, err := s.LoadAs(context.Background(), "fruit.xlsx", "upload.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "upload.xlsx", summary.Source)

	stored, err := s.Summary()
	require.NoError(t, err)
	assert.Equal(t, "upload.xlsx", stored.Source)

	view, err := s.View()
	require.NoError(t, err)
	assert.Equal(t, "upload.xlsx", view.Source)
}

func TestSessionService_LoadFailureKeepsPriorTable(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		errType  apperrors.ErrorType
		severity apperrors.Severity
	}{
		{"no qualifying columns", "sparse.xlsx", apperrors.ErrTypeEmptyResult, apperrors.SeverityWarning},
		{"unreadable file", "missing.xlsx", apperrors.ErrTypeFileOpen, apperrors.SeverityError},
		{"no file selected", "", apperrors.ErrTypeFileOpen, apperrors.SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, nil)
			_, err := s.Load(context.Background(), "fruit.xlsx")
			require.NoError(t, err)
			before, err := s.View()
			require.NoError(t, err)

			summary, err := s.Load(context.Background(), tt.source)
			require.Error(t, err)
			assert.Nil(t, summary)
			assert.Equal(t, tt.errType, apperrors.TypeOf(err))
			assert.Equal(t, tt.severity, apperrors.SeverityOf(err))

			after, err := s.View()
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestSessionService_LoadWrapsUntypedErrors(t *testing.T) {
	s := newTestSession(t, nil)
	s.opener = &fakeOpener{err: errors.New("disk on fire")}

	_, err := s.Load(context.Background(), "x.xlsx")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeFileOpen))
}

func TestSessionService_NoTable(t *testing.T) {
	s := newTestSession(t, nil)

	_, err := s.View()
	assert.ErrorIs(t, err, ErrNoTable)
	_, err = s.ToggleSort("Fruit")
	assert.ErrorIs(t, err, ErrNoTable)
	_, err = s.Search("a")
	assert.ErrorIs(t, err, ErrNoTable)
	_, err = s.Summary()
	assert.ErrorIs(t, err, ErrNoTable)
	err = s.SendEmail(context.Background(), EmailRequest{Host: "h", From: "a@b.c", To: "d@e.f"}, "pw")
	assert.ErrorIs(t, err, ErrNoTable)
}

func TestSessionService_ToggleSort(t *testing.T) {
	s := newTestSession(t, nil)
	_, err := s.Load(context.Background(), "fruit.xlsx")
	require.NoError(t, err)

	view, err := s.ToggleSort("Fruit")
	require.NoError(t, err)
	assert.Equal(t, domain.SortAsc, view.SortOrder)
	assert.Equal(t, []string{"Apple", "banana", "pear"}, column(view, "Fruit"))

	view, err = s.ToggleSort("Fruit")
	require.NoError(t, err)
	assert.Equal(t, domain.SortDesc, view.SortOrder)
	assert.Equal(t, []string{"pear", "banana", "Apple"}, column(view, "Fruit"))

	// the toggle is shared across columns
	view, err = s.ToggleSort("Qty")
	require.NoError(t, err)
	assert.Equal(t, domain.SortAsc, view.SortOrder)
	assert.Equal(t, []string{"10", "2", "3"}, column(view, "Qty"), "display text sorts lexically")

	view, err = s.ToggleSort("Picked")
	require.NoError(t, err)
	assert.Equal(t, domain.SortDesc, view.SortOrder)
	assert.Equal(t, "Picked", view.SortColumn)
	assert.Equal(t, []string{"Mar-01", "Jan-05", "Feb-10"}, column(view, "Picked"))

	_, err = s.ToggleSort("Nope")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestSessionService_Sort(t *testing.T) {
	s := newTestSession(t, nil)
	_, err := s.Load(context.Background(), "fruit.xlsx")
	require.NoError(t, err)

	view, err := s.Sort("Fruit", domain.SortDesc)
	require.NoError(t, err)
	assert.Equal(t, []string{"pear", "banana", "Apple"}, column(view, "Fruit"))

	view, err = s.Sort("", domain.SortNone)
	require.NoError(t, err)
	assert.Equal(t, []string{"pear", "Apple", "banana"}, column(view, "Fruit"))
	assert.Empty(t, view.SortColumn)

	_, err = s.Sort("Fruit", domain.SortOrder("sideways"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

	// explicit sorts leave the toggle alone
	view, err = s.ToggleSort("Fruit")
	require.NoError(t, err)
	assert.Equal(t, domain.SortAsc, view.SortOrder)
}

func TestSessionService_Search(t *testing.T) {
	s := newTestSession(t, nil)
	_, err := s.Load(context.Background(), "fruit.xlsx")
	require.NoError(t, err)
	_, err = s.Sort("Fruit", domain.SortDesc)
	require.NoError(t, err)

	view, err := s.Search("NAN")
	require.NoError(t, err)
	assert.Equal(t, []string{"banana"}, column(view, "Fruit"))
	assert.Equal(t, "NAN", view.Query)

	view, err = s.Search("jan")
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple"}, column(view, "Fruit"), "matches formatted text")

	_, err = s.Search("kiwi")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeEmptyResult))
	assert.Equal(t, apperrors.SeverityWarning, apperrors.SeverityOf(err))

	view, err = s.View()
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple"}, column(view, "Fruit"), "prior view is kept")

	view, err = s.ResetSearch()
	require.NoError(t, err)
	assert.Equal(t, []string{"pear", "banana", "Apple"}, column(view, "Fruit"), "sort is reapplied")
	assert.Empty(t, view.Query)
	assert.Equal(t, 3, view.TotalRows)
}

func TestSessionService_ViewIsACopy(t *testing.T) {
	s := newTestSession(t, nil)
	_, err := s.Load(context.Background(), "fruit.xlsx")
	require.NoError(t, err)

	view, err := s.View()
	require.NoError(t, err)
	view.Rows[0], view.Rows[1] = view.Rows[1], view.Rows[0]

	again, err := s.View()
	require.NoError(t, err)
	assert.Equal(t, "pear", again.Rows[0][0])
}

func TestSessionService_Clear(t *testing.T) {
	sender := &fakeSender{}
	s := newTestSession(t, sender)
	_, err := s.Load(context.Background(), "fruit.xlsx")
	require.NoError(t, err)

	require.NoError(t, s.SendEmail(context.Background(), EmailRequest{
		Host: "smtp.example.com", From: "me@example.com", To: "you@example.com",
	}, "secret"))
	assert.Equal(t, "smtp.example.com", s.EmailDraft().Host)

	s.Clear()
	assert.False(t, s.Loaded())
	_, err = s.View()
	assert.ErrorIs(t, err, ErrNoTable)
	assert.Equal(t, config.DefaultSMTPHost, s.EmailDraft().Host)
	assert.Empty(t, s.EmailDraft().From)
}

func TestSessionService_SendEmail(t *testing.T) {
	sender := &fakeSender{}
	s := newTestSession(t, sender)
	_, err := s.Load(context.Background(), "fruit.xlsx")
	require.NoError(t, err)
	_, err = s.Search("pear")
	require.NoError(t, err)

	err = s.SendEmail(context.Background(), EmailRequest{
		Host: " smtp.gmail.com ",
		From: "me@example.com",
		To:   "a@example.com, b@example.com",
	}, "app-password")
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "smtp.gmail.com", msg.Host)
	assert.Equal(t, config.DefaultSMTPPort, msg.Port)
	assert.Equal(t, config.DefaultMailSubject, msg.Subject)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, msg.To)
	assert.Equal(t, "app-password", sender.passwords[0])

	lines := strings.Split(msg.Body, "\n")
	require.Len(t, lines, 2, "body holds the visible rows only")
	assert.Equal(t, []string{"Fruit", "Qty", "Picked"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"0", "pear", "3", "Feb-10"}, strings.Fields(lines[1]))

	assert.NotContains(t, fmt.Sprintf("%+v", s.EmailDraft()), "app-password")
}

func TestSessionService_SendEmailErrors(t *testing.T) {
	t.Run("missing fields", func(t *testing.T) {
		s := newTestSession(t, nil)
		_, err := s.Load(context.Background(), "fruit.xlsx")
		require.NoError(t, err)

		err = s.SendEmail(context.Background(), EmailRequest{Host: "smtp.gmail.com", From: "me@example.com"}, "pw")
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	})

	t.Run("delivery failure", func(t *testing.T) {
		s := newTestSession(t, &fakeSender{err: errors.New("535 bad credentials")})
		_, err := s.Load(context.Background(), "fruit.xlsx")
		require.NoError(t, err)

		err = s.SendEmail(context.Background(), EmailRequest{Host: "smtp.gmail.com", From: "me@example.com", To: "x@example.com"}, "pw")
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeEmail))
		assert.Contains(t, err.Error(), "535 bad credentials")
	})
}
