// Package mongo adapts session.Store to MongoDB via the v2 driver,
// grounded on features/session/mongo's client: the "thin Client
// interface wrapping the real driver, Store delegates to Client" seam,
// generalized from the driver's v1 API to v2.
package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/walterfan/agentcore/internal/session"
)

const (
	defaultSessionsCollection = "agent_sessions"
	defaultRunsCollection     = "agent_runs"
	defaultOpTimeout          = 5 * time.Second
)

// Options configures the Mongo-backed session store.
type Options struct {
	Client             *mongodriver.Client
	Database           string
	SessionsCollection string
	RunsCollection     string
	Timeout            time.Duration
}

// Store implements session.Store against MongoDB.
type Store struct {
	sessions *mongodriver.Collection
	runs     *mongodriver.Collection
	timeout  time.Duration
}

// New builds a Store, ensuring the unique indexes session/run lookups
// depend on.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Client == nil {
		return nil, errors.New("session/mongo: client is required")
	}
	if opts.Database == "" {
		return nil, errors.New("session/mongo: database name is required")
	}
	sessionsName := opts.SessionsCollection
	if sessionsName == "" {
		sessionsName = defaultSessionsCollection
	}
	runsName := opts.RunsCollection
	if runsName == "" {
		runsName = defaultRunsCollection
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}

	sessions := opts.Client.Database(opts.Database).Collection(sessionsName)
	runs := opts.Client.Database(opts.Database).Collection(runsName)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := ensureIndexes(ctx, sessions, runs); err != nil {
		return nil, err
	}
	return &Store{sessions: sessions, runs: runs, timeout: timeout}, nil
}

var _ session.Store = (*Store)(nil)

// Ping reports whether the underlying Mongo deployment is reachable.
func (s *Store) Ping(ctx context.Context, client *mongodriver.Client) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return client.Ping(ctx, readpref.Primary())
}

func (s *Store) CreateSession(ctx context.Context, sessionID string, createdAt time.Time) (session.Session, error) {
	if sessionID == "" {
		return session.Session{}, errors.New("session/mongo: session id is required")
	}
	existing, err := s.LoadSession(ctx, sessionID)
	if err == nil {
		if existing.Status == session.StatusEnded {
			return session.Session{}, session.ErrSessionEnded
		}
		return existing, nil
	}
	if !errors.Is(err, session.ErrSessionNotFound) {
		return session.Session{}, err
	}

	now := time.Now().UTC()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	filter := bson.M{"session_id": sessionID}
	update := bson.M{
		// Idempotent insert: CreateSession must never overwrite a
		// session that already exists.
		"$setOnInsert": bson.M{
			"session_id": sessionID,
			"status":     session.StatusActive,
			"created_at": createdAt.UTC(),
			"updated_at": now,
		},
	}
	if _, err := s.sessions.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true)); err != nil {
		return session.Session{}, err
	}
	out, err := s.LoadSession(ctx, sessionID)
	if err != nil {
		return session.Session{}, err
	}
	if out.Status == session.StatusEnded {
		return session.Session{}, session.ErrSessionEnded
	}
	return out, nil
}

func (s *Store) LoadSession(ctx context.Context, sessionID string) (session.Session, error) {
	if sessionID == "" {
		return session.Session{}, errors.New("session/mongo: session id is required")
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	var doc sessionDocument
	if err := s.sessions.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return session.Session{}, session.ErrSessionNotFound
		}
		return session.Session{}, err
	}
	return doc.toSession(), nil
}

func (s *Store) EndSession(ctx context.Context, sessionID string, endedAt time.Time) (session.Session, error) {
	existing, err := s.LoadSession(ctx, sessionID)
	if err != nil {
		return session.Session{}, err
	}
	if existing.Status == session.StatusEnded {
		return existing, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	update := bson.M{"$set": bson.M{
		"status":     session.StatusEnded,
		"ended_at":   endedAt.UTC(),
		"updated_at": time.Now().UTC(),
	}}
	if _, err := s.sessions.UpdateOne(ctx, bson.M{"session_id": sessionID}, update); err != nil {
		return session.Session{}, err
	}
	return s.LoadSession(ctx, sessionID)
}

func (s *Store) UpsertRun(ctx context.Context, run session.RunMeta) error {
	if run.RunID == "" || run.SessionID == "" {
		return errors.New("session/mongo: run id and session id are required")
	}
	now := time.Now().UTC()
	started := run.StartedAt
	if started.IsZero() {
		started = now
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	update := bson.M{
		"$set": bson.M{
			"run_id":     run.RunID,
			"agent_id":   run.AgentID,
			"session_id": run.SessionID,
			"status":     run.Status,
			"updated_at": now,
			"labels":     run.Labels,
			"metadata":   run.Metadata,
		},
		"$setOnInsert": bson.M{"started_at": started.UTC()},
	}
	_, err := s.runs.UpdateOne(ctx, bson.M{"run_id": run.RunID}, update, options.UpdateOne().SetUpsert(true))
	return err
}

func (s *Store) LoadRun(ctx context.Context, runID string) (session.RunMeta, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	var doc runDocument
	if err := s.runs.FindOne(ctx, bson.M{"run_id": runID}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return session.RunMeta{}, session.ErrRunNotFound
		}
		return session.RunMeta{}, err
	}
	return doc.toRunMeta(), nil
}

func (s *Store) ListRunsBySession(ctx context.Context, sessionID string, statuses []session.RunStatus) ([]session.RunMeta, error) {
	filter := bson.M{"session_id": sessionID}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	cur, err := s.runs.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "started_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()

	var out []session.RunMeta
	for cur.Next(ctx) {
		var doc runDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toRunMeta())
	}
	return out, cur.Err()
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, s.timeout)
}

func ensureIndexes(ctx context.Context, sessions, runs *mongodriver.Collection) error {
	if _, err := sessions.Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys: bson.D{{Key: "session_id", Value: 1}}, Options: options.Index().SetUnique(true),
	}); err != nil {
		return err
	}
	if _, err := runs.Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys: bson.D{{Key: "run_id", Value: 1}}, Options: options.Index().SetUnique(true),
	}); err != nil {
		return err
	}
	_, err := runs.Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "status", Value: 1}},
	})
	return err
}

type runDocument struct {
	RunID     string            `bson:"run_id"`
	AgentID   string            `bson:"agent_id"`
	SessionID string            `bson:"session_id,omitempty"`
	Status    session.RunStatus `bson:"status"`
	StartedAt time.Time         `bson:"started_at"`
	UpdatedAt time.Time         `bson:"updated_at"`
	Labels    map[string]string `bson:"labels,omitempty"`
	Metadata  map[string]any    `bson:"metadata,omitempty"`
}

func (doc runDocument) toRunMeta() session.RunMeta {
	return session.RunMeta{
		RunID: doc.RunID, AgentID: doc.AgentID, SessionID: doc.SessionID,
		Status: doc.Status, StartedAt: doc.StartedAt, UpdatedAt: doc.UpdatedAt,
		Labels: doc.Labels, Metadata: doc.Metadata,
	}
}

type sessionDocument struct {
	SessionID string         `bson:"session_id"`
	Status    session.Status `bson:"status"`
	CreatedAt time.Time      `bson:"created_at"`
	EndedAt   *time.Time     `bson:"ended_at,omitempty"`
	UpdatedAt time.Time      `bson:"updated_at"`
}

func (doc sessionDocument) toSession() session.Session {
	var endedAt *time.Time
	if doc.EndedAt != nil {
		at := doc.EndedAt.UTC()
		endedAt = &at
	}
	return session.Session{ID: doc.SessionID, Status: doc.Status, CreatedAt: doc.CreatedAt.UTC(), EndedAt: endedAt}
}
