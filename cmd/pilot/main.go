package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"voxelpilot.ai/internal/persistence/journal"
	"voxelpilot.ai/internal/persistence/steplog"
	"voxelpilot.ai/internal/pilot/space"
	"voxelpilot.ai/internal/pilot/step"
	"voxelpilot.ai/internal/pilot/tuning"
	"voxelpilot.ai/internal/transport/wsclient"
)

// Give up after this many consecutive no-progress steps.
const maxStalledSteps = 3

func main() {
	var (
		url        = flag.String("url", "ws://localhost:8080/v1/ws", "gateway ws url")
		name       = flag.String("name", "pilot", "agent name")
		targetSpec = flag.String("target", "", "target position x,y,z (required)")
		maxSteps   = flag.Int("max-steps", 256, "step budget for the run")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (optional)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		pillarSpec = flag.String("pillar", "cobblestone,dirt", "comma-separated pillar materials, in preference order")
		digDown    = flag.Bool("dig-down", false, "allow descending by digging straight down")
		guarded    = flag.Bool("guarded-dig-down", true, "require two solid cells beneath before digging down")
		digTimeout = flag.Duration("dig-timeout", 30*time.Second, "per-block excavation budget")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[pilot] ", log.LstdFlags|log.Lmicroseconds)

	target, err := parseTarget(*targetSpec)
	if err != nil {
		logger.Fatalf("bad -target: %v", err)
	}

	cfg := tuning.Default()
	if *tuningPath != "" {
		cfg, err = tuning.Load(*tuningPath)
		if err != nil {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := wsclient.Dial(ctx, *url, *name, logger)
	if err != nil {
		logger.Fatalf("connect: %v", err)
	}
	defer client.Close()
	if err := client.WaitReady(ctx); err != nil {
		logger.Fatalf("waiting for first observation: %v", err)
	}

	db, err := journal.Open(filepath.Join(*dataDir, "journal.db"))
	if err != nil {
		logger.Fatalf("open journal: %v", err)
	}
	defer db.Close()

	runID, err := db.CreateRun(*name, [3]float64{target.X, target.Y, target.Z})
	if err != nil {
		logger.Fatalf("create run: %v", err)
	}
	logger.Printf("run %s: %s -> (%.1f,%.1f,%.1f)", runID, *name, target.X, target.Y, target.Z)

	slog, err := steplog.NewWriter(steplog.PathForRun(filepath.Join(*dataDir, "steplogs"), runID))
	if err != nil {
		logger.Fatalf("open step log: %v", err)
	}
	defer slog.Close()

	req := step.Request{
		Target:          target,
		PillarMaterials: splitList(*pillarSpec),
		AllowDigDown:    *digDown,
		GuardedDigDown:  *guarded,
		DigTimeout:      *digTimeout,
	}

	ctrl := step.NewController(client, client, cfg)
	arrived := drive(ctx, logger, ctrl, client, db, slog, runID, req, cfg, *maxSteps)

	if err := db.FinishRun(runID, arrived); err != nil {
		logger.Printf("finish run: %v", err)
	}
	if sum, err := db.Summary(runID); err == nil {
		logger.Printf("run %s done: arrived=%v steps=%d failures=%d mined=%d pillared=%d",
			runID, arrived, sum.Steps, sum.Failures, sum.Mined, sum.Pillared)
	}
	if !arrived {
		os.Exit(1)
	}
}

func drive(ctx context.Context, logger *log.Logger, ctrl *step.Controller, client *wsclient.Client,
	db *journal.DB, slog *steplog.Writer, runID string, req step.Request, cfg tuning.Tuning, maxSteps int) bool {

	stalled := 0
	for seq := 1; seq <= maxSteps; seq++ {
		if ctx.Err() != nil {
			logger.Printf("interrupted after %d steps", seq-1)
			return false
		}

		pos := client.Position()
		dist := pos.DistanceTo(req.Target)
		if dist <= cfg.ArriveRadius {
			logger.Printf("arrived: distance %.2f", dist)
			return true
		}

		out := ctrl.Step(ctx, req)
		record(logger, db, slog, runID, seq, pos, req.Target, dist, out)

		if out.Success() {
			stalled = 0
			continue
		}
		stalled++
		if stalled >= maxStalledSteps {
			logger.Printf("stuck: %d consecutive failed steps, giving up", stalled)
			return false
		}
	}
	logger.Printf("step budget exhausted")
	return false
}

func record(logger *log.Logger, db *journal.DB, slog *steplog.Writer, runID string, seq int,
	pos, target space.Pos, dist float64, out step.Outcome) {

	code := ""
	if out.Failure != nil {
		code = out.Failure.Code
	}
	logger.Printf("step %d: ok=%v delta=%.2f mined=%d pillared=%d dist=%.2f %s",
		seq, out.Success(), out.ProgressDelta, out.BlocksMined, out.BlocksPillared, dist, out.Narrative)

	now := time.Now()
	if err := slog.Write(steplog.Entry{
		RunID:     runID,
		At:        now,
		Pos:       [3]float64{pos.X, pos.Y, pos.Z},
		Target:    [3]float64{target.X, target.Y, target.Z},
		Distance:  dist,
		Success:   out.Success(),
		Progress:  out.ProgressDelta,
		Mined:     out.BlocksMined,
		Pillared:  out.BlocksPillared,
		Code:      code,
		Narrative: out.Narrative,
	}); err != nil {
		logger.Printf("step log: %v", err)
	}
	if err := db.InsertStep(runID, journal.StepRow{
		Seq:       seq,
		At:        now,
		Success:   out.Success(),
		Progress:  out.ProgressDelta,
		Mined:     out.BlocksMined,
		Pillared:  out.BlocksPillared,
		Code:      code,
		Narrative: out.Narrative,
	}); err != nil {
		logger.Printf("journal: %v", err)
	}
}

func parseTarget(spec string) (space.Pos, error) {
	if spec == "" {
		return space.Pos{}, fmt.Errorf("missing (want x,y,z)")
	}
	parts := strings.Split(spec, ",")
	if len(parts) != 3 {
		return space.Pos{}, fmt.Errorf("%q: want x,y,z", spec)
	}
	var vals [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return space.Pos{}, fmt.Errorf("%q: %w", p, err)
		}
		vals[i] = v
	}
	return space.Pos{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

func splitList(spec string) []string {
	var out []string
	for _, p := range strings.Split(spec, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
