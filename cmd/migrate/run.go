package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/oakridge-cabinets/migrate/internal/migration/source"
	"github.com/oakridge-cabinets/migrate/pkg/composables"
	"github.com/oakridge-cabinets/migrate/pkg/configuration"
)

// runtime bundles everything a migration command needs: config, a run-scoped
// logger, the open workbook and the connection pool (carried in ctx).
type runtime struct {
	cfg   *configuration.Configuration
	log   *logrus.Entry
	wb    source.Workbook
	pool  *pgxpool.Pool
	runID uuid.UUID
	out   *json.Encoder
}

func setup(ctx context.Context, input string) (*runtime, context.Context, error) {
	cfg := configuration.Use()
	if input == "" {
		input = cfg.InputFile
	}

	runID := uuid.New()
	log := cfg.Logger().WithField("run_id", runID)

	wb, err := source.OpenWorkbook(input)
	if err != nil {
		return nil, nil, withCode(exitValidation, err)
	}

	pool, err := pgxpool.New(ctx, cfg.Database.ConnectionString())
	if err != nil {
		_ = wb.Close()
		return nil, nil, withCode(exitDB, fmt.Errorf("connect: %w", err))
	}
	if err := pool.Ping(ctx); err != nil {
		_ = wb.Close()
		pool.Close()
		return nil, nil, withCode(exitDB, fmt.Errorf("ping: %w", err))
	}
	log.WithField("input", input).Info("workbook opened, database connected")

	out := json.NewEncoder(os.Stdout)
	out.SetEscapeHTML(false)

	return &runtime{
		cfg:   cfg,
		log:   log,
		wb:    wb,
		pool:  pool,
		runID: runID,
		out:   out,
	}, composables.WithPool(ctx, pool), nil
}

func (rt *runtime) close() {
	_ = rt.wb.Close()
	rt.pool.Close()
}

// emit writes one JSON line to stdout. Stdout carries only machine-readable
// output; logs go to stderr.
func (rt *runtime) emit(v any) error {
	if err := rt.out.Encode(v); err != nil {
		return errors.Wrap(err, "write summary")
	}
	return nil
}

func (rt *runtime) sheet(name string) (*source.Sheet, error) {
	s, err := rt.wb.Sheet(name)
	if err != nil {
		return nil, withCode(exitValidation, err)
	}
	rt.log.WithFields(logrus.Fields{"sheet": name, "rows": len(s.Rows)}).Debug("sheet loaded")
	return s, nil
}
