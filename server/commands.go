package server

import (
	"context"

	"gopkg.in/mgo.v2/bson"
)

// DropDatabase drops the named database.
func (s *Server) DropDatabase(ctx context.Context, name string) error {
	_, err := s.Database(name).RunCommand(ctx, bson.D{{Name: "dropDatabase", Value: 1}})
	return err
}

// DatabaseNames lists the names of the databases on the server.
func (s *Server) DatabaseNames(ctx context.Context) ([]string, error) {
	reply, err := s.AdminDatabase().RunCommand(ctx, bson.D{
		{Name: "listDatabases", Value: 1},
		{Name: "nameOnly", Value: true},
	})
	if err != nil {
		return nil, err
	}

	entries, _ := reply["databases"].([]interface{})
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		doc, ok := e.(bson.M)
		if !ok {
			continue
		}
		if name, ok := doc["name"].(string); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// RunAdminCommand executes cmd against the admin database.
func (s *Server) RunAdminCommand(ctx context.Context, cmd interface{}) (bson.M, error) {
	return s.AdminDatabase().RunCommand(ctx, cmd)
}

// GetLastError gets the outcome of the last write on the connection
// reserved by the request session carried by ctx. Last-error state is
// connection-scoped on the server, so calling this outside a request
// session is a usage error.
func (s *Server) GetLastError(ctx context.Context) (bson.M, error) {
	if s.NestingLevel(ctx) == 0 {
		return nil, newUsageError("getLastError requires an active request session")
	}

	cmd := s.target.WriteConcern().getLastErrorCommand()
	return s.AdminDatabase().RunCommand(ctx, cmd)
}

// DBRef is a reference to a document in another collection or database.
type DBRef struct {
	Collection string      `bson:"$ref"`
	ID         interface{} `bson:"$id"`
	Database   string      `bson:"$db,omitempty"`
}

// FetchDBRef resolves ref to the document it points at, or nil when the
// document does not exist. The reference must name its database.
func (s *Server) FetchDBRef(ctx context.Context, ref DBRef) (bson.M, error) {
	if ref.Database == "" {
		return nil, newUsageError("dbRef does not name a database")
	}

	reply, err := s.Database(ref.Database).RunCommand(ctx, bson.D{
		{Name: "find", Value: ref.Collection},
		{Name: "filter", Value: bson.M{"_id": ref.ID}},
		{Name: "limit", Value: 1},
		{Name: "singleBatch", Value: true},
	})
	if err != nil {
		return nil, err
	}

	cursor, _ := reply["cursor"].(bson.M)
	batch, _ := cursor["firstBatch"].([]interface{})
	if len(batch) == 0 {
		return nil, nil
	}
	doc, _ := batch[0].(bson.M)
	return doc, nil
}

// CopyDatabase is intentionally not implemented by this core.
func (s *Server) CopyDatabase(ctx context.Context, from, to string) error {
	return ErrUnsupported
}
