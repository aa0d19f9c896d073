package connector_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wifor-platform/statstore/pkg/config"
	"github.com/wifor-platform/statstore/pkg/connector"
	"github.com/wifor-platform/statstore/pkg/schema"
	"github.com/wifor-platform/statstore/pkg/store"
	"github.com/wifor-platform/statstore/pkg/testhelpers"

	_ "github.com/wifor-platform/statstore/pkg/backend/postgres"
)

// TestPostgresVersioningCycle runs the full first-version / duplicate /
// revision cycle against a real PostgreSQL server, covering the RETURNING
// insert path and the FOR UPDATE locking read the embedded engine never takes.
func TestPostgresVersioningCycle(t *testing.T) {
	pg := testhelpers.GetPostgres(t)

	cfg := &config.Config{
		Env:     "test",
		Backend: config.BackendPostgres,
		Postgres: config.PostgresConfig{
			Host:     pg.Host,
			Port:     pg.Port,
			User:     pg.User,
			Password: pg.Password,
			Database: pg.Database,
			SSLMode:  "disable",
		},
	}

	ctx := context.Background()
	sink := &captureEvents{}
	conn, err := connector.New(ctx, cfg, zap.NewNop(), sink)
	require.NoError(t, err)
	defer conn.Close()

	et, err := conn.OpenEntityType(ctx, &schema.Descriptor{
		TableName:  "lfsa_ugad_it",
		Identifier: "nuts_id",
		Columns: []schema.DescriptorColumn{
			{Name: "nuts_id", Type: "String(10)"},
			{Name: "unemployed", Type: "Float"},
		},
	})
	require.NoError(t, err)

	apply := func(unemployed float64) error {
		rec := schema.NewRecord(et)
		require.NoError(t, rec.Set("nuts_id", "DE21"))
		require.NoError(t, rec.Set("unemployed", unemployed))
		return conn.Run(ctx, func(uow *connector.UnitOfWork) error {
			return uow.Apply(ctx, []*schema.Record{rec})
		})
	}

	require.NoError(t, apply(104.3)) // first version
	require.NoError(t, apply(104.3)) // exact duplicate
	require.NoError(t, apply(110.0)) // revision

	assert.Equal(t, []store.EventKind{
		store.EventFirstVersion,
		store.EventDuplicate,
		store.EventRevision,
	}, sink.kinds())
}

type captureEvents struct {
	events []store.Event
}

func (s *captureEvents) Publish(ev store.Event) {
	s.events = append(s.events, ev)
}

func (s *captureEvents) kinds() []store.EventKind {
	kinds := make([]store.EventKind, len(s.events))
	for i, ev := range s.events {
		kinds[i] = ev.Kind
	}
	return kinds
}
