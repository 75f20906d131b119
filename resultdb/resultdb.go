package resultdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lossanalysis/runsummary"
)

const (
	colruns        = "runs"
	connectTimeout = 10 * time.Second
)

// DBConfig is read from a JSON file. DB is the server address (host[:port]).
type DBConfig struct {
	Username string
	Password string
	AuthDB   string
	DB       string
}

func LoadConfig(path string) (*DBConfig, error) {
	cfile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mongo config: %w", err)
	}
	defer cfile.Close()
	c := &DBConfig{}
	if err := json.NewDecoder(cfile).Decode(c); err != nil {
		return nil, fmt.Errorf("decode mongo config: %w", err)
	}
	if c.DB == "" {
		return nil, errors.New("no database was selected")
	}
	return c, nil
}

func (c *DBConfig) URI() string {
	u := url.URL{Scheme: "mongodb", Host: c.DB, Path: "/"}
	if c.Username != "" && c.Password != "" {
		u.User = url.UserPassword(c.Username, c.Password)
		if c.AuthDB != "" {
			u.RawQuery = "authSource=" + url.QueryEscape(c.AuthDB)
		}
	}
	return u.String()
}

type ResultMongo struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func Connect(ctx context.Context, cfg *DBConfig, dbname string) (*ResultMongo, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI()))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	log.Println("Database connected")
	return &ResultMongo{Client: client, Database: client.Database(dbname)}, nil
}

func (rm *ResultMongo) Close(ctx context.Context) error {
	if rm.Client == nil {
		return nil
	}
	if err := rm.Client.Disconnect(ctx); err != nil {
		return err
	}
	log.Println("Database connection ends")
	return nil
}

// RunDocument is the stored form of one run record. Latency samples are
// kept out; they live in the parquet file.
type RunDocument struct {
	Run         string    `bson:"run"`
	Tag         string    `bson:"tag"`
	Mode        string    `bson:"mode"`
	Loss        float64   `bson:"loss"`
	CCA         string    `bson:"cca"`
	Chunk       string    `bson:"chunk"`
	DurationS   float64   `bson:"duration_s"`
	GoodputMbps float64   `bson:"goodput_mbps"`
	P50         *float64  `bson:"p50_ms,omitempty"`
	P90         *float64  `bson:"p90_ms,omitempty"`
	P95         *float64  `bson:"p95_ms,omitempty"`
	P99         *float64  `bson:"p99_ms,omitempty"`
	LossRate    *float64  `bson:"file_loss_rate,omitempty"`
	SentBytes   uint64    `bson:"sent_bytes"`
	RecvBytes   uint64    `bson:"recv_bytes"`
	Samples     int       `bson:"samples"`
	LastUpdated time.Time `bson:"lastupdated"`
}

func NewRunDocument(run string, rec runsummary.RunRecord, now time.Time) RunDocument {
	doc := RunDocument{
		Run:         run,
		Tag:         rec.Tag.Raw,
		Mode:        rec.Mode(),
		Loss:        rec.Tag.Loss.Float(),
		CCA:         rec.Tag.CCA,
		Chunk:       rec.Tag.Chunk,
		DurationS:   rec.DurationS(),
		GoodputMbps: rec.GoodputMbps(),
		LastUpdated: now,
	}
	if d := rec.Datagram; d != nil {
		doc.P50, doc.P90, doc.P95, doc.P99 = d.P50, d.P90, d.P95, d.P99
		doc.LossRate = d.LossRate
		doc.SentBytes = d.SentBytes
		doc.RecvBytes = d.MatchedBytes
		doc.Samples = len(d.LatenciesMs)
	}
	if s := rec.Stream; s != nil {
		doc.SentBytes = s.SendBytes
		doc.RecvBytes = s.RecvBytes
	}
	return doc
}

// UpsertRuns replaces the documents of run keyed by (run, tag, mode) and
// returns how many were newly inserted.
func (rm *ResultMongo) UpsertRuns(ctx context.Context, run string, recs []runsummary.RunRecord) (int, error) {
	if rm.Database == nil {
		return 0, errors.New("database is nil")
	}
	cruns := rm.Database.Collection(colruns)
	opt := options.Replace().SetUpsert(true)
	now := time.Now().UTC()
	inserted := 0
	for _, rec := range recs {
		doc := NewRunDocument(run, rec, now)
		filter := bson.D{
			{Key: "run", Value: doc.Run},
			{Key: "tag", Value: doc.Tag},
			{Key: "mode", Value: doc.Mode},
		}
		res, err := cruns.ReplaceOne(ctx, filter, doc, opt)
		if err != nil {
			return inserted, fmt.Errorf("upsert %s: %w", doc.Tag, err)
		}
		if res.UpsertedCount > 0 {
			inserted++
		}
	}
	return inserted, nil
}
