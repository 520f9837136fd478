package patient

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinic/clinic/internal/platform/action"
	"github.com/clinic/clinic/internal/platform/db"
)

// mockRepo is an in-memory Repository.
type mockRepo struct {
	patients map[uuid.UUID]*Patient
	invoices map[uuid.UUID][]*InvoiceHistoryItem
	count    int64
	err      error

	lastLimit, lastOffset int
	lastQuery             string
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		patients: make(map[uuid.UUID]*Patient),
		invoices: make(map[uuid.UUID][]*InvoiceHistoryItem),
	}
}

func (m *mockRepo) Filtered(_ context.Context, query string, limit, offset int) ([]*TableRow, error) {
	m.lastQuery, m.lastLimit, m.lastOffset = query, limit, offset
	if m.err != nil {
		return nil, m.err
	}
	var out []*TableRow
	for _, p := range m.patients {
		out = append(out, &TableRow{ID: p.ID, Name: p.Name, Phone: p.Phone})
	}
	return out, nil
}

func (m *mockRepo) Count(_ context.Context, query string) (int64, error) {
	m.lastQuery = query
	return m.count, m.err
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.patients[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) ListAll(context.Context) ([]*Option, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*Option
	for _, p := range m.patients {
		out = append(out, &Option{ID: p.ID, Name: p.Name})
	}
	return out, nil
}

func (m *mockRepo) Invoices(_ context.Context, id uuid.UUID) ([]*InvoiceHistoryItem, error) {
	return m.invoices[id], m.err
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	if m.err != nil {
		return m.err
	}
	p.ID = uuid.New()
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.patients[p.ID]; !ok {
		return db.ErrNotFound
	}
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.patients[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.patients, id)
	return nil
}

type recordingRevalidator struct{ paths []string }

func (r *recordingRevalidator) Revalidate(_ context.Context, paths ...string) {
	r.paths = append(r.paths, paths...)
}

func newTestService(repo Repository, phoneRequired bool) (*Service, *recordingRevalidator) {
	rv := &recordingRevalidator{}
	pipeline := action.NewPipeline(zerolog.Nop(), rv)
	return NewService(repo, pipeline, action.NewValidator(), zerolog.Nop(), phoneRequired), rv
}

func TestService_Create(t *testing.T) {
	repo := newMockRepo()
	svc, rv := newTestService(repo, false)

	out := svc.Create(context.Background(), Form{Name: "  Jane Doe ", Phone: "555-0100"})
	require.True(t, out.OK(), "state: %+v", out.State)
	assert.Equal(t, ListPath, out.Redirect)
	assert.Contains(t, rv.paths, ListPath)
	assert.Contains(t, rv.paths, "/dashboard/revenue")

	require.Len(t, repo.patients, 1)
	for _, p := range repo.patients {
		assert.Equal(t, "Jane Doe", p.Name)
		require.NotNil(t, p.Phone)
		assert.Equal(t, "555-0100", *p.Phone)
	}
}

func TestService_Create_ShortName(t *testing.T) {
	repo := newMockRepo()
	svc, rv := newTestService(repo, false)

	out := svc.Create(context.Background(), Form{Name: "Al"})
	assert.Equal(t, action.Invalid, out.Result)
	assert.Equal(t, ".Missing Fields. Failed to Create Patient", out.State.Message)
	assert.Equal(t, []string{".Please enter the patient name"}, out.State.Errors["name"])
	assert.Empty(t, repo.patients)
	assert.Empty(t, rv.paths)
}

func TestService_Create_PhonePolicy(t *testing.T) {
	t.Run("optional stores NULL", func(t *testing.T) {
		repo := newMockRepo()
		svc, _ := newTestService(repo, false)

		out := svc.Create(context.Background(), Form{Name: "Jane Doe", Phone: "   "})
		require.True(t, out.OK())
		for _, p := range repo.patients {
			assert.Nil(t, p.Phone)
		}
	})

	t.Run("required rejects empty", func(t *testing.T) {
		repo := newMockRepo()
		svc, _ := newTestService(repo, true)

		out := svc.Create(context.Background(), Form{Name: "Jane Doe"})
		assert.Equal(t, action.Invalid, out.Result)
		assert.Equal(t, []string{".Please enter the patient phone"}, out.State.Errors["phone"])
		assert.Empty(t, repo.patients)
	})
}

func TestService_Create_ReturnFlow(t *testing.T) {
	tests := []struct {
		typ  string
		want string
	}{
		{"appointments", "/dashboard/appointments/create"},
		{"invoices", "/dashboard/invoices/create"},
		{"", ListPath},
		{"../../admin", ListPath},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			svc, rv := newTestService(newMockRepo(), false)
			out := svc.Create(context.Background(), Form{Name: "Jane Doe", Type: tt.typ})
			require.True(t, out.OK())
			assert.Equal(t, tt.want, out.Redirect)
			// New patients appear in every appointment and invoice form.
			assert.Contains(t, rv.paths, ListPath)
			assert.Contains(t, rv.paths, action.Subtree("/dashboard/appointments"))
			assert.Contains(t, rv.paths, action.Subtree("/dashboard/invoices"))
		})
	}
}

func TestService_Create_DatabaseError(t *testing.T) {
	repo := newMockRepo()
	repo.err = errors.New("connection refused")
	svc, rv := newTestService(repo, false)

	out := svc.Create(context.Background(), Form{Name: "Jane Doe"})
	assert.Equal(t, action.Failed, out.Result)
	assert.Equal(t, ".Database Error: Failed to Create Patient", out.State.Message)
	assert.Empty(t, out.Redirect)
	assert.Empty(t, rv.paths)
}

func TestService_Update(t *testing.T) {
	repo := newMockRepo()
	id := uuid.New()
	repo.patients[id] = &Patient{ID: id, Name: "Jane Doe"}
	svc, rv := newTestService(repo, false)

	out := svc.Update(context.Background(), id, Form{Name: "Jane Smith"})
	require.True(t, out.OK())
	assert.Equal(t, ListPath, out.Redirect)
	assert.Equal(t, "Jane Smith", repo.patients[id].Name)
	assert.Contains(t, rv.paths, DetailPath(id))
	assert.Contains(t, rv.paths, action.Subtree(DetailPath(id)))
	assert.Contains(t, rv.paths, "/dashboard/appointments")
	assert.Contains(t, rv.paths, "/dashboard/invoices")
	assert.Contains(t, rv.paths, action.Subtree("/dashboard/appointments"))
	assert.Contains(t, rv.paths, action.Subtree("/dashboard/invoices"))
}

func TestService_Update_Messages(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(repo, false)

	out := svc.Update(context.Background(), uuid.New(), Form{Name: ""})
	assert.Equal(t, ".Missing Fields. Failed to Update Patient", out.State.Message)

	out = svc.Update(context.Background(), uuid.New(), Form{Name: "Jane Doe"})
	assert.Equal(t, action.Failed, out.Result)
	assert.Equal(t, ".Database Error: Failed to Update Patient", out.State.Message)
}

func TestService_Delete(t *testing.T) {
	repo := newMockRepo()
	id := uuid.New()
	repo.patients[id] = &Patient{ID: id, Name: "Jane Doe"}
	svc, rv := newTestService(repo, false)

	out := svc.Delete(context.Background(), id)
	require.True(t, out.OK())
	assert.Equal(t, "Deleted Patient.", out.State.Message)
	assert.Empty(t, out.Redirect)
	assert.Contains(t, rv.paths, ListPath)
	assert.Contains(t, rv.paths, DetailPath(id))
	assert.Contains(t, rv.paths, action.Subtree(DetailPath(id)))
	assert.Contains(t, rv.paths, action.Subtree("/dashboard/appointments"))
	assert.Contains(t, rv.paths, action.Subtree("/dashboard/invoices"))

	out = svc.Delete(context.Background(), id)
	assert.Equal(t, ".Database Error: Failed to Delete Patient", out.State.Message)
}

func TestService_Pagination(t *testing.T) {
	repo := newMockRepo()
	repo.count = 17
	svc, _ := newTestService(repo, false)

	pages, err := svc.PatientPages(context.Background(), "jo")
	require.NoError(t, err)
	assert.Equal(t, 3, pages)
	assert.Equal(t, "jo", repo.lastQuery)

	_, err = svc.FilteredPatients(context.Background(), "jo", 3)
	require.NoError(t, err)
	assert.Equal(t, 8, repo.lastLimit)
	assert.Equal(t, 16, repo.lastOffset)
}

func TestService_Reads_FetchError(t *testing.T) {
	repo := newMockRepo()
	repo.err = errors.New("timeout")
	svc, _ := newTestService(repo, false)
	ctx := context.Background()

	_, err := svc.FilteredPatients(ctx, "", 1)
	assert.EqualError(t, err, "Failed to fetch patient table.")
	_, err = svc.PatientPages(ctx, "")
	assert.EqualError(t, err, "Failed to fetch total number of patients.")
	_, err = svc.AllPatients(ctx)
	assert.EqualError(t, err, "Failed to fetch all patients.")
	_, err = svc.InvoiceHistory(ctx, uuid.New())
	assert.EqualError(t, err, "Failed to fetch patient invoices.")
	_, err = svc.PatientByID(ctx, uuid.New())
	assert.EqualError(t, err, "Failed to fetch patient.")
}

func TestService_PatientByID_NotFound(t *testing.T) {
	svc, _ := newTestService(newMockRepo(), false)

	_, err := svc.PatientByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, db.ErrNotFound)
}
