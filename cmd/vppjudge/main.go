/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package main implements the vppjudge CLI: it reads JSONL rows of VPP
// generation outputs and writes one flat judged record per row.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"chainguard.dev/vppjudge/judge/consensus"
	"chainguard.dev/vppjudge/judge/envelope"
	"chainguard.dev/vppjudge/judge/oracle"
	"chainguard.dev/vppjudge/judge/orchestrator"
	"chainguard.dev/vppjudge/judge/rubric"
	"chainguard.dev/vppjudge/judge/rules"
	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		clog.FatalContextf(ctx, "%v", err)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vppjudge",
		Short:         "Judge VPP clinical notes with LLM consensus and rubric scoring",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(judgeCmd())
	return root
}

func judgeCmd() *cobra.Command {
	var (
		input       string
		output      string
		rulesPath   string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "judge",
		Short: "Judge a JSONL batch of rows",
		Long: `Reads one JSON row per line, each with an "inputs_json" envelope and an
optional "route_hint", and writes one flat record per row in input order.
Judge endpoints are configured through the environment (JUDGE_ENDPOINTS,
SERVING_BASE_URL, ANTHROPIC_API_KEY, ...).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runJudge(cmd.Context(), input, output, rulesPath, concurrency)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "-", "input JSONL file, or - for stdin")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output JSONL file, or - for stdout")
	cmd.Flags().StringVar(&rulesPath, "rules", "", "YAML rule catalog overriding the built-in one")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 1, "rows judged in parallel")
	return cmd
}

func runJudge(ctx context.Context, input, output, rulesPath string, concurrency int) error {
	log := clog.FromContext(ctx)

	cfg, err := oracle.FromEnv(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	pool, err := oracle.Validate(ctx, cfg)
	if err != nil {
		return fmt.Errorf("validating judge endpoints: %w", err)
	}
	log.With("judges", pool.Size()).Info("Judge pool ready")

	// The rubric stages run on a single endpoint. A dedicated one may be
	// configured; otherwise the first live judge serves.
	ro := pool.Oracles()[0]
	if ep := strings.TrimSpace(cfg.RubricEndpoint); ep != "" {
		ro, err = oracle.New(ctx, cfg, ep)
		if err != nil {
			return fmt.Errorf("creating rubric endpoint %q: %w", ep, err)
		}
	}

	var rubricOpts []rubric.Option
	if rulesPath != "" {
		catalog, err := loadCatalog(rulesPath)
		if err != nil {
			return err
		}
		log.With("rules", catalog.Len()).With("path", rulesPath).Info("Loaded rule catalog override")
		rubricOpts = append(rubricOpts, rubric.WithCatalog(catalog))
	}

	orch := orchestrator.New(consensus.New(pool), rubric.New(ro, rubricOpts...),
		orchestrator.WithConcurrency(concurrency))

	rows, err := readRows(input)
	if err != nil {
		return err
	}
	rows, dropped := filterFailedGenerations(rows)
	if dropped > 0 {
		log.With("rows", dropped).Warn("Dropped rows whose candidates are failed generations")
	}
	log.With("rows", len(rows)).Info("Judging batch")

	records := orch.EvaluateBatch(ctx, rows)

	failed := 0
	for _, rec := range records {
		if rec.ErrorCode != nil {
			failed++
		}
	}
	log.With("rows", len(records), "failed", failed).Info("Batch complete")

	return writeRecords(output, records)
}

func loadCatalog(path string) (*rules.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening rule catalog: %w", err)
	}
	defer f.Close()
	catalog, err := rules.Load(f)
	if err != nil {
		return nil, fmt.Errorf("loading rule catalog %q: %w", path, err)
	}
	return catalog, nil
}

func readRows(path string) ([]orchestrator.Row, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var rows []orchestrator.Row
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var row orchestrator.Row
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			// A malformed line still yields a record; the orchestrator
			// folds the parse failure into it.
			row = orchestrator.Row{InputsJSON: line}
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return rows, nil
}

// filterFailedGenerations drops rows whose envelope carries an upstream
// error sentinel instead of a note, the way the batch builder that produced
// the envelopes would have. Unparseable rows are kept; the orchestrator
// folds those failures into their records.
func filterFailedGenerations(rows []orchestrator.Row) ([]orchestrator.Row, int) {
	kept := rows[:0]
	for _, row := range rows {
		if hasFailedGeneration(row) {
			continue
		}
		kept = append(kept, row)
	}
	return kept, len(rows) - len(kept)
}

func hasFailedGeneration(row orchestrator.Row) bool {
	env, err := envelope.Parse(row.InputsJSON)
	if err != nil {
		return false
	}
	for _, text := range []string{env.Generated.Text, env.Compare.A.Text, env.Compare.B.Text} {
		if text != "" && envelope.IsFailedGeneration(text) {
			return true
		}
	}
	return false
}

func writeRecords(path string, records []orchestrator.Record) error {
	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
	}
	return nil
}
