package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wifor-platform/statstore/pkg/config"
	"github.com/wifor-platform/statstore/pkg/connector"
	"github.com/wifor-platform/statstore/pkg/eurostat"
	"github.com/wifor-platform/statstore/pkg/geo"
	"github.com/wifor-platform/statstore/pkg/loader"
	"github.com/wifor-platform/statstore/pkg/logging"
	"github.com/wifor-platform/statstore/pkg/schema"

	_ "github.com/wifor-platform/statstore/pkg/backend/mssql"
	_ "github.com/wifor-platform/statstore/pkg/backend/mysql"
	_ "github.com/wifor-platform/statstore/pkg/backend/postgres"
	_ "github.com/wifor-platform/statstore/pkg/backend/sqlite"
)

// datasetSpec names one Eurostat dataset and how to reshape it to long form.
type datasetSpec struct {
	code      string
	idVars    []string
	valueName string
}

// The labour-market datasets tracked by the platform. The geo dimension is
// renamed to nuts_id after the melt so all tables share the region key.
var datasets = []datasetSpec{
	{code: "lfsa_egan2", idVars: []string{"freq", "unit", "sex", "age", "nace_r2", "geo"}, valueName: "employed"},
	{code: "lfsa_egan", idVars: []string{"freq", "unit", "sex", "age", "citizen", "geo"}, valueName: "employed"},
	{code: "lfsa_eisn2", idVars: []string{"freq", "age", "sex", "nace_r2", "isco08", "unit", "geo"}, valueName: "employed"},
	{code: "lfsa_egai2d", idVars: []string{"freq", "isco08", "age", "sex", "unit", "geo"}, valueName: "employed"},
	{code: "lfsa_ugad", idVars: []string{"freq", "unit", "sex", "age", "duration", "geo"}, valueName: "unemployed"},
	{code: "lfsa_ugpis", idVars: []string{"freq", "unit", "sex", "isco08", "geo"}, valueName: "unemployed"},
	{code: "lfst_r_lfe2en2", idVars: []string{"freq", "nace_r2", "age", "sex", "unit", "geo"}, valueName: "employed"},
	{code: "lfsa_egaisedm", idVars: []string{"freq", "isced11", "isco08", "mgstatus", "age", "sex", "unit", "geo"}, valueName: "employed"},
}

// Property renames applied to the NUTS GeoJSON before loading.
var regionRenames = map[string]string{
	"NUTS_ID":    "nuts_id",
	"LEVL_CODE":  "levl_code",
	"CNTR_CODE":  "cntr_code",
	"NAME_LATN":  "name_latin",
	"NUTS_NAME":  "nuts_name",
	"MOUNT_TYPE": "mount_type",
	"URBN_TYPE":  "urban_type",
	"COAST_TYPE": "coast_type",
	"FID":        "fid",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("run_id", uuid.NewString()))

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("import run failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	descriptors, err := schema.LoadDescriptorDir(cfg.SchemaDir)
	if err != nil {
		return err
	}

	conn, err := connector.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	client := eurostat.NewClient(cfg.Eurostat, logger)

	failed := 0

	if cfg.Regions.File != "" {
		if err := importRegions(ctx, conn, descriptors, cfg.Regions.File, logger); err != nil {
			logger.Error("region import failed", zap.Error(err))
			failed++
		}
	} else {
		logger.Info("no regions file configured, skipping region import")
	}

	// Each dataset commits in its own scope; a failing dataset leaves the
	// already committed ones intact.
	for _, d := range datasets {
		if err := importDataset(ctx, conn, client, descriptors, d, logger); err != nil {
			logger.Error("dataset import failed", zap.String("code", d.code), zap.Error(err))
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d import(s) failed", failed)
	}
	return nil
}

func importRegions(ctx context.Context, conn *connector.Connector, descriptors map[string]*schema.Descriptor, file string, logger *zap.Logger) error {
	desc, ok := descriptors["REGIONS"]
	if !ok {
		return fmt.Errorf("no descriptor for table REGIONS")
	}

	et, err := conn.OpenEntityType(ctx, desc)
	if err != nil {
		return err
	}

	ds, err := geo.ReadFile(file, regionRenames)
	if err != nil {
		return err
	}

	candidates, err := loader.Load(et, ds)
	if err != nil {
		return err
	}

	logger.Info("applying regions", zap.Int("candidates", len(candidates)))
	return conn.Run(ctx, func(uow *connector.UnitOfWork) error {
		return uow.Apply(ctx, candidates)
	})
}

func importDataset(ctx context.Context, conn *connector.Connector, client *eurostat.Client, descriptors map[string]*schema.Descriptor, d datasetSpec, logger *zap.Logger) error {
	desc, ok := descriptors[d.code]
	if !ok {
		return fmt.Errorf("no descriptor for table %q", d.code)
	}

	et, err := conn.OpenEntityType(ctx, desc)
	if err != nil {
		return err
	}

	ds, err := client.LongDataset(ctx, d.code, d.idVars, d.valueName)
	if err != nil {
		return err
	}
	if err := ds.Rename("geo", "nuts_id"); err != nil {
		return err
	}

	candidates, err := loader.Load(et, ds)
	if err != nil {
		return err
	}

	logger.Info("applying dataset", zap.String("code", d.code), zap.Int("candidates", len(candidates)))
	return conn.Run(ctx, func(uow *connector.UnitOfWork) error {
		return uow.Apply(ctx, candidates)
	})
}
