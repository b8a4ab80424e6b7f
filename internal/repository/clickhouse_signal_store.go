package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"TradeSignal/internal/domain/models"
	pkgch "TradeSignal/pkg/clickhouse"
	applogger "TradeSignal/pkg/logger"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 500
)

// SignalSchema is the DDL for the signals table.
var SignalSchema = []string{
	`CREATE TABLE IF NOT EXISTS signals (
        id              String,
        symbol          LowCardinality(String),
        kind            LowCardinality(String),
        reason          String,
        price           Float64,
        confidence      Nullable(Float64),
        timeframe       LowCardinality(String),
        provenance      LowCardinality(String),
        generated_at    DateTime64(3, 'UTC'),
        entry_price     Nullable(Float64),
        exit_price      Nullable(Float64),
        stop_loss       Nullable(Float64),
        stop_loss_value String
    ) ENGINE = MergeTree
    ORDER BY (symbol, generated_at)
    TTL toDateTime(generated_at) + INTERVAL 90 DAY`,
}

// CHSignalStore implements SignalStore backed by ClickHouse.
type CHSignalStore struct {
	ch *pkgch.Client
	db *sql.DB
	l  *applogger.Logger
}

// NewCHSignalStore creates the signals table if needed.
func NewCHSignalStore(ctx context.Context, ch *pkgch.Client, l *applogger.Logger) (*CHSignalStore, error) {
	if err := ch.InitSchema(ctx, SignalSchema); err != nil {
		return nil, err
	}
	if l == nil {
		l = applogger.NewNop()
	}
	return &CHSignalStore{ch: ch, db: ch.DB(), l: l}, nil
}

func (s *CHSignalStore) Save(ctx context.Context, sig *models.Signal) error {
	start := time.Now()
	const q = `
        INSERT INTO signals (id, symbol, kind, reason, price, confidence, timeframe,
            provenance, generated_at, entry_price, exit_price, stop_loss, stop_loss_value)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := s.db.ExecContext(ctx, q,
		sig.ID, sig.Symbol, string(sig.Kind), sig.Reason, sig.Price, nullFloat(sig.Confidence),
		sig.Timeframe, string(sig.Provenance), sig.GeneratedAt.UTC(),
		nullFloat(sig.EntryPrice), nullFloat(sig.ExitPrice), nullFloat(sig.StopLoss), sig.StopLossValue,
	)
	if err != nil {
		s.l.Error("clickhouse save_signal error",
			applogger.String("symbol", sig.Symbol),
			applogger.String("id", sig.ID),
			applogger.Error(err),
		)
		return fmt.Errorf("save signal: %w", err)
	}
	s.l.Debug("clickhouse save_signal",
		applogger.String("symbol", sig.Symbol),
		applogger.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}

// Recent returns the latest signals, newest first. An empty symbol matches all.
func (s *CHSignalStore) Recent(ctx context.Context, symbol string, limit int) ([]models.Signal, error) {
	start := time.Now()
	limit = ClampLimit(limit)
	const q = `
        SELECT id, symbol, kind, reason, price, confidence, timeframe, provenance,
            generated_at, entry_price, exit_price, stop_loss, stop_loss_value
        FROM signals
        WHERE (symbol = ? OR ? = '')
        ORDER BY generated_at DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, symbol, limit)
	if err != nil {
		s.l.Error("clickhouse recent_signals query error",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("recent signals: %w", err)
	}
	defer rows.Close()

	out := make([]models.Signal, 0, limit)
	for rows.Next() {
		var (
			sig                         models.Signal
			kind, prov                  string
			conf, entry, exit, stopLoss sql.NullFloat64
		)
		if err := rows.Scan(&sig.ID, &sig.Symbol, &kind, &sig.Reason, &sig.Price, &conf,
			&sig.Timeframe, &prov, &sig.GeneratedAt, &entry, &exit, &stopLoss, &sig.StopLossValue); err != nil {
			s.l.Error("clickhouse recent_signals scan error", applogger.Error(err))
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		sig.Kind = models.SignalKind(kind)
		sig.Provenance = models.Provenance(prov)
		sig.Confidence = floatPtr(conf)
		sig.EntryPrice = floatPtr(entry)
		sig.ExitPrice = floatPtr(exit)
		sig.StopLoss = floatPtr(stopLoss)
		out = append(out, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signals: %w", err)
	}
	s.l.Info("clickhouse recent_signals",
		applogger.String("symbol", symbol),
		applogger.Int("rows", len(out)),
		applogger.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return out, nil
}

func (s *CHSignalStore) Health(ctx context.Context) error { return s.ch.Health(ctx) }

func (s *CHSignalStore) Close() error { return s.ch.Close() }

// ClampLimit bounds a history page size.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultRecentLimit
	case limit > maxRecentLimit:
		return maxRecentLimit
	default:
		return limit
	}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return models.Float(v.Float64)
}
