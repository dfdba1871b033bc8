package repo_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"dueline/internal/db"
	"dueline/internal/domain"
	"dueline/internal/events"
	"dueline/internal/migrate"
	"dueline/internal/repo"
	"dueline/internal/seed"
)

var now = time.Date(2025, 1, 24, 12, 0, 0, 0, time.UTC)

type RepoSuite struct {
	suite.Suite
	ctx  context.Context
	conn *sql.DB
	repo repo.Repo
}

func TestRepoSuite(t *testing.T) {
	suite.Run(t, new(RepoSuite))
}

func (s *RepoSuite) SetupTest() {
	s.ctx = context.Background()
	conn, err := db.Open(db.Config{})
	s.Require().NoError(err)
	_, err = migrate.Migrate(s.ctx, conn)
	s.Require().NoError(err)
	s.conn = conn
	s.repo = repo.Repo{DB: conn}

	tx, err := conn.BeginTx(s.ctx, nil)
	s.Require().NoError(err)
	seeded, err := seed.Apply(s.ctx, tx, events.Writer{Now: func() time.Time { return now }}, seed.Reference(now))
	s.Require().NoError(err)
	s.Require().True(seeded)
	s.Require().NoError(tx.Commit())
}

func (s *RepoSuite) TearDownTest() {
	s.conn.Close()
}

func (s *RepoSuite) TestSeedIsLoadedOnce() {
	tx, err := s.conn.BeginTx(s.ctx, nil)
	s.Require().NoError(err)
	defer tx.Rollback()
	seeded, err := seed.Apply(s.ctx, tx, events.Writer{}, seed.Reference(now))
	s.Require().NoError(err)
	s.False(seeded)
}

func (s *RepoSuite) TestListInstrumentsInCreationOrder() {
	list, err := s.repo.ListInstruments(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 4)
	s.Equal([]string{"1", "2", "3", "4"}, []string{list[0].ID, list[1].ID, list[2].ID, list[3].ID})

	first := list[0]
	s.Equal(domain.StatusSigned, first.Status)
	s.Require().NotNil(first.SignDate)
	s.Equal(150000.0, *first.Value)
	s.Equal([]string{"software", "erp", "tecnologia"}, first.Tags)
	s.Equal("TechCorp Ltda", first.Entities[0].Name)
	s.Equal(domain.SignatureSigned, first.Responsibles[0].SignatureStatus)
	s.Require().Len(first.Movements, 3)
	s.Equal([]int64{1, 2, 3}, []int64{first.Movements[0].ID, first.Movements[1].ID, first.Movements[2].ID})
	s.Equal(int64(7), list[3].Movements[0].ID)

	types, err := s.repo.ListTypes(s.ctx)
	s.Require().NoError(err)
	s.Len(types, 4)
	entities, err := s.repo.ListEntities(s.ctx)
	s.Require().NoError(err)
	s.Len(entities, 5)
	people, err := s.repo.ListResponsibles(s.ctx)
	s.Require().NoError(err)
	s.Len(people, 3)
	s.Empty(people[2].Email)
}

func (s *RepoSuite) TestListReturnsIndependentValues() {
	a, err := s.repo.ListInstruments(s.ctx)
	s.Require().NoError(err)
	a[0].Title = "changed"
	a[0].Tags[0] = "changed"
	b, err := s.repo.ListInstruments(s.ctx)
	s.Require().NoError(err)
	s.Equal("Instrumento de Fornecimento de Software", b[0].Title)
	s.Equal("software", b[0].Tags[0])
}

func (s *RepoSuite) TestRosterEditLeavesCopiesAlone() {
	s.Require().NoError(s.repo.UpdateResponsible(s.ctx, domain.RosterResponsible{ID: "1", Name: "Ana S."}))
	in, err := s.repo.GetInstrument(s.ctx, "4")
	s.Require().NoError(err)
	s.Equal("Ana Silva", in.Responsibles[0].Name)
	p, err := s.repo.GetResponsible(s.ctx, "1")
	s.Require().NoError(err)
	s.Equal("Ana S.", p.Name)
}

func (s *RepoSuite) TestUpdateAndDelete() {
	in, err := s.repo.GetInstrument(s.ctx, "3")
	s.Require().NoError(err)
	in.Status = domain.StatusInProgress
	in.Value = nil
	s.Require().NoError(s.repo.UpdateInstrument(s.ctx, in))
	got, err := s.repo.GetInstrument(s.ctx, "3")
	s.Require().NoError(err)
	s.Equal(domain.StatusInProgress, got.Status)
	s.Nil(got.Value)

	s.Require().NoError(s.repo.DeleteInstrument(s.ctx, "3"))
	_, err = s.repo.GetInstrument(s.ctx, "3")
	s.ErrorIs(err, repo.ErrNotFound)
	movements, err := s.repo.ListMovements(s.ctx, "3")
	s.Require().NoError(err)
	s.Empty(movements)

	s.ErrorIs(s.repo.DeleteInstrument(s.ctx, "3"), repo.ErrNotFound)
	s.ErrorIs(s.repo.UpdateInstrument(s.ctx, domain.Instrument{ID: "missing", Status: domain.StatusPending, Priority: domain.PriorityLow}), repo.ErrNotFound)
	s.ErrorIs(s.repo.DeleteEntity(s.ctx, "missing"), repo.ErrNotFound)
	_, err = s.repo.GetType(s.ctx, "missing")
	s.ErrorIs(err, repo.ErrNotFound)
}

func (s *RepoSuite) TestNotifications() {
	list, err := s.repo.ListNotifications(s.ctx, false)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal("1", list[0].ID)
	s.True(list[2].Read)

	unread, err := s.repo.CountUnreadNotifications(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, unread)

	n := domain.Notification{ID: "x1", Title: "Instrumento vencido", Kind: domain.NotificationError, Date: now, InstrumentID: "4"}
	inserted, err := s.repo.InsertNotification(s.ctx, n, "due:4:expired")
	s.Require().NoError(err)
	s.True(inserted)
	n.ID = "x2"
	inserted, err = s.repo.InsertNotification(s.ctx, n, "due:4:expired")
	s.Require().NoError(err)
	s.False(inserted)

	s.Require().NoError(s.repo.MarkNotificationRead(s.ctx, "1"))
	s.ErrorIs(s.repo.MarkNotificationRead(s.ctx, "missing"), repo.ErrNotFound)
	changed, err := s.repo.MarkAllNotificationsRead(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(2), changed)
	list, err = s.repo.ListNotifications(s.ctx, true)
	s.Require().NoError(err)
	s.Empty(list)
}
