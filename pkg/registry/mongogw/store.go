// Package mongogw stores package metadata in MongoDB and serves it as a
// registry.Gateway.
//
// Each published version is one document of the "libraries" collection.
// version_number holds the version's sort key so listing versions is a
// single indexed query sorted newest first.
package mongogw

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/cdnlock/pkg/registry"
	"github.com/matzehuels/cdnlock/pkg/version"
)

// DefaultCollection is the collection used when Config.Collection is empty.
const DefaultCollection = "libraries"

// Config configures a [Store].
type Config struct {
	URI        string
	Database   string
	Collection string
}

type dependencyDoc struct {
	Name string `bson:"name"`
	Spec string `bson:"spec"`
}

type libraryDoc struct {
	LibraryName    string          `bson:"library_name"`
	Version        string          `bson:"version"`
	VersionNumber  int64           `bson:"version_number"`
	Namespace      string          `bson:"namespace"`
	Type           string          `bson:"type"`
	Bundle         string          `bson:"bundle"`
	Fingerprint    string          `bson:"fingerprint"`
	APIKey         string          `bson:"api_key"`
	ExportedSymbol string          `bson:"exported_symbol"`
	Dependencies   []dependencyDoc `bson:"dependencies"`
}

// Store is a registry.Gateway backed by a MongoDB collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Open connects to MongoDB, verifies the connection and ensures the
// (library_name, version) unique index.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" || cfg.Database == "" {
		return nil, fmt.Errorf("mongogw: uri and database are required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongogw: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongogw: ping: %w", err)
	}

	name := cfg.Collection
	if name == "" {
		name = DefaultCollection
	}
	s := &Store{client: client, coll: client.Database(cfg.Database).Collection(name)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "library_name", Value: 1}, {Key: "version", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongogw: create index: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// ListVersions implements registry.Gateway.
func (s *Store) ListVersions(ctx context.Context, name string) (*registry.VersionList, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "version_number", Value: -1}}).
		SetProjection(bson.D{{Key: "version", Value: 1}, {Key: "fingerprint", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.D{{Key: "library_name", Value: name}}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongogw: list %s: %w", name, err)
	}
	var docs []libraryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongogw: list %s: %w", name, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: package %s", registry.ErrNotFound, name)
	}

	list := &registry.VersionList{Name: name, Fingerprints: make(map[string]string, len(docs))}
	for _, d := range docs {
		list.Versions = append(list.Versions, d.Version)
		if d.Fingerprint != "" {
			list.Fingerprints[d.Version] = d.Fingerprint
		}
	}
	return list, nil
}

// GetMetadata implements registry.Gateway.
func (s *Store) GetMetadata(ctx context.Context, name, ver string) (*registry.Metadata, error) {
	filter := bson.D{{Key: "library_name", Value: name}, {Key: "version", Value: ver}}
	var doc libraryDoc
	err := s.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s@%s", registry.ErrNotFound, name, ver)
	}
	if err != nil {
		return nil, fmt.Errorf("mongogw: get %s@%s: %w", name, ver, err)
	}
	m := fromDoc(doc)
	if err := m.Normalize(); err != nil {
		return nil, err
	}
	return m, nil
}

// Put inserts or replaces the document of m.
func (s *Store) Put(ctx context.Context, m *registry.Metadata) error {
	rec := *m
	if err := rec.Normalize(); err != nil {
		return err
	}
	doc, err := toDoc(&rec)
	if err != nil {
		return err
	}
	filter := bson.D{{Key: "library_name", Value: doc.LibraryName}, {Key: "version", Value: doc.Version}}
	_, err = s.coll.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongogw: put %s@%s: %w", m.Name, m.Version, err)
	}
	return nil
}

func toDoc(m *registry.Metadata) (libraryDoc, error) {
	key, err := version.SortKey(m.Version)
	if err != nil {
		return libraryDoc{}, fmt.Errorf("%s: %w", m.Name, err)
	}
	doc := libraryDoc{
		LibraryName:    m.Name,
		Version:        m.Version,
		VersionNumber:  key,
		Namespace:      m.Namespace,
		Type:           m.Type,
		Bundle:         m.Bundle,
		Fingerprint:    m.Fingerprint,
		APIKey:         m.APIKey,
		ExportedSymbol: m.ExportedSymbol,
		Dependencies:   make([]dependencyDoc, len(m.Dependencies)),
	}
	for i, d := range m.Dependencies {
		doc.Dependencies[i] = dependencyDoc{Name: d.Name, Spec: d.Spec}
	}
	return doc, nil
}

func fromDoc(doc libraryDoc) *registry.Metadata {
	m := &registry.Metadata{
		Name:           doc.LibraryName,
		Version:        doc.Version,
		Namespace:      doc.Namespace,
		Type:           doc.Type,
		Bundle:         doc.Bundle,
		Fingerprint:    doc.Fingerprint,
		APIKey:         doc.APIKey,
		ExportedSymbol: doc.ExportedSymbol,
	}
	for _, d := range doc.Dependencies {
		m.Dependencies = append(m.Dependencies, registry.Query{Name: d.Name, Spec: d.Spec})
	}
	return m
}

var _ registry.Gateway = (*Store)(nil)
