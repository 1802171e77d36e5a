package server_test

import (
	"context"
	"testing"

	"gopkg.in/mgo.v2/bson"

	. "github.com/testn/mongogo/server"
	"github.com/stretchr/testify/require"
)

func TestServer_GetLastError_requires_an_active_session(t *testing.T) {
	t.Parallel()

	s, _, _ := newTestServer(0, nil)

	_, err := s.GetLastError(context.Background())
	require.True(t, IsUsageError(err))
}

func TestServer_GetLastError_delegates_to_the_pinned_connection(t *testing.T) {
	t.Parallel()

	s, connector, _ := newTestServer(0, nil)
	require.NoError(t, s.Connect(context.Background()))

	ctx, err := s.BeginSession(context.Background(), s.Database("app"))
	require.NoError(t, err)
	defer s.EndSession(ctx)

	primaryMock(connector).Replies = []bson.M{{"ok": 1, "n": 1}}

	reply, err := s.GetLastError(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, reply["n"])

	ran := primaryMock(connector).Ran()
	require.Len(t, ran, 1)
	require.Equal(t, "admin", ran[0].DB)
	cmd, ok := ran[0].Cmd.(bson.D)
	require.True(t, ok)
	require.Equal(t, "getLastError", cmd[0].Name)
}

func TestServer_DatabaseNames_parses_the_listDatabases_reply(t *testing.T) {
	t.Parallel()

	s, connector, _ := newTestServer(0, nil)
	require.NoError(t, s.Connect(context.Background()))
	primaryMock(connector).Replies = []bson.M{{
		"ok": 1,
		"databases": []bson.M{
			{"name": "admin"},
			{"name": "app"},
		},
	}}

	names, err := s.DatabaseNames(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"admin", "app"}, names)
}

func TestServer_DropDatabase_targets_the_named_database(t *testing.T) {
	t.Parallel()

	s, connector, _ := newTestServer(0, nil)
	require.NoError(t, s.Connect(context.Background()))

	require.NoError(t, s.DropDatabase(context.Background(), "app"))

	ran := primaryMock(connector).Ran()
	require.Len(t, ran, 1)
	require.Equal(t, "app", ran[0].DB)
	cmd, ok := ran[0].Cmd.(bson.D)
	require.True(t, ok)
	require.Equal(t, "dropDatabase", cmd[0].Name)
}

func TestServer_RunAdminCommand_targets_admin(t *testing.T) {
	t.Parallel()

	s, connector, _ := newTestServer(0, nil)
	require.NoError(t, s.Connect(context.Background()))

	_, err := s.RunAdminCommand(context.Background(), bson.D{{Name: "serverStatus", Value: 1}})
	require.NoError(t, err)
	require.Equal(t, "admin", primaryMock(connector).Ran()[0].DB)
}

func TestServer_FetchDBRef_resolves_the_referenced_document(t *testing.T) {
	t.Parallel()

	s, connector, _ := newTestServer(0, nil)
	require.NoError(t, s.Connect(context.Background()))
	primaryMock(connector).Replies = []bson.M{{
		"ok": 1,
		"cursor": bson.M{
			"firstBatch": []bson.M{{"_id": "doc-1", "value": 42}},
		},
	}}

	doc, err := s.FetchDBRef(context.Background(), DBRef{
		Collection: "things",
		ID:         "doc-1",
		Database:   "app",
	})
	require.NoError(t, err)
	require.Equal(t, "doc-1", doc["_id"])

	require.Equal(t, "app", primaryMock(connector).Ran()[0].DB)
}

func TestServer_FetchDBRef_requires_a_database(t *testing.T) {
	t.Parallel()

	s, _, _ := newTestServer(0, nil)

	_, err := s.FetchDBRef(context.Background(), DBRef{Collection: "things", ID: "doc-1"})
	require.True(t, IsUsageError(err))
}

func TestServer_CopyDatabase_is_unsupported(t *testing.T) {
	t.Parallel()

	s, _, _ := newTestServer(0, nil)
	require.Equal(t, ErrUnsupported, s.CopyDatabase(context.Background(), "a", "b"))
}
