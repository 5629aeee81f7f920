package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"voxelpilot.ai/internal/persistence/journal"
	"voxelpilot.ai/internal/persistence/steplog"
)

func main() {
	var (
		logPath      = flag.String("log", "", "path to steps-<run>.jsonl.zst")
		dataDir      = flag.String("data", "", "data directory (lists recent runs when -log is empty)")
		failuresOnly = flag.Bool("failures", false, "print only failed steps")
	)
	flag.Parse()

	if *logPath == "" {
		if *dataDir == "" {
			fmt.Fprintln(os.Stderr, "missing -log (or -data to list runs)")
			os.Exit(2)
		}
		listRuns(*dataDir)
		return
	}

	entries, err := steplog.ReadAll(*logPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read step log:", err)
		os.Exit(1)
	}
	if len(entries) == 0 {
		fmt.Println("empty step log")
		return
	}

	var failures, mined, pillared int
	for _, e := range entries {
		if !e.Success {
			failures++
		}
		mined += e.Mined
		pillared += e.Pillared
		if *failuresOnly && e.Success {
			continue
		}
		printEntry(e)
	}

	last := entries[len(entries)-1]
	fmt.Printf("run %s: steps=%d failures=%d mined=%d pillared=%d final_distance=%.2f\n",
		last.RunID, len(entries), failures, mined, pillared, last.Distance)
}

func printEntry(e steplog.Entry) {
	status := "ok"
	if !e.Success {
		status = e.Code
	}
	fmt.Printf("%4d %s pos=(%.1f,%.1f,%.1f) dist=%.2f delta=%.2f mined=%d pillared=%d  %s\n",
		e.Seq, status, e.Pos[0], e.Pos[1], e.Pos[2], e.Distance, e.Progress, e.Mined, e.Pillared, e.Narrative)
}

func listRuns(dataDir string) {
	db, err := journal.Open(filepath.Join(dataDir, "journal.db"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "open journal:", err)
		os.Exit(1)
	}
	defer db.Close()

	runs, err := db.RecentRuns(20)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list runs:", err)
		os.Exit(1)
	}
	for _, r := range runs {
		state := "running"
		switch {
		case r.Finished && r.Arrived:
			state = "arrived"
		case r.Finished:
			state = "abandoned"
		}
		fmt.Printf("%s  %-9s %-10s target=(%.1f,%.1f,%.1f)  log=%s\n",
			r.StartedAt.Format("2006-01-02 15:04:05"), state, r.Agent,
			r.Target[0], r.Target[1], r.Target[2],
			steplog.PathForRun(filepath.Join(dataDir, "steplogs"), r.ID))
	}
}
